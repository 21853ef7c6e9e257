// Package random fornisce generatori pseudo-casuali condivisibili tra goroutine.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// NewSeed genera un seed con crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// lockedSource serializza l'accesso alla sorgente PCG.
type lockedSource struct {
	mu  sync.Mutex
	src *rand.PCG
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

// New crea un *rand.Rand deterministico per il seed dato e sicuro per uso concorrente.
func New(seed uint64) *rand.Rand {
	return rand.New(&lockedSource{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)})
}

// NewFromEntropy crea un generatore con seed casuale.
func NewFromEntropy() (*rand.Rand, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}
