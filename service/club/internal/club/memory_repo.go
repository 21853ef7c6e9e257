package club

import (
	"context"
	"sort"
	"sync"

	"Futbotchi/service/club/internal/roster"
)

// MemoryRepo tiene le rose in memoria; ogni lettura e scrittura passa da una copia profonda.
type MemoryRepo struct {
	mu      sync.RWMutex
	rosters map[string]*roster.Roster
}

// NewMemoryRepo crea un repository vuoto.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rosters: make(map[string]*roster.Roster)}
}

func (m *MemoryRepo) Load(_ context.Context, userID string) (*roster.Roster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rosters[userID]
	if !ok {
		return nil, ErrRosterNotFound
	}
	return r.Clone(), nil
}

func (m *MemoryRepo) Save(_ context.Context, userID string, r *roster.Roster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosters[userID] = r.Clone()
	return nil
}

func (m *MemoryRepo) ListAll(_ context.Context) ([]roster.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]roster.Entry, 0, len(m.rosters))
	for id, r := range m.rosters {
		entries = append(entries, roster.Entry{UserID: id, Roster: r.Clone()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}
