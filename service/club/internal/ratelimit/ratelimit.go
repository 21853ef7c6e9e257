// Package ratelimit valuta i limiti sulle azioni ripetibili a partire dai timestamp persistiti.
//
// Non c'e' nessun job di scadenza: ogni controllo e' una funzione pura di
// (storico, adesso) eseguita al momento della richiesta.
package ratelimit

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Kind e' il tipo di politica.
type Kind string

const (
	// Window conta le azioni nella finestra scorrevole.
	Window Kind = "window"
	// Cooldown richiede un tempo minimo dall'ultima azione.
	Cooldown Kind = "cooldown"
)

// Policy descrive un limite. Per Window contano Window e Max, per Cooldown solo Cooldown.
type Policy struct {
	Kind     Kind
	Window   time.Duration
	Max      int
	Cooldown time.Duration
}

// Decision e' l'esito di un controllo; Wait e' valorizzato solo se non permesso.
type Decision struct {
	Allowed bool
	Wait    time.Duration
}

// SlidingWindow costruisce una politica a finestra scorrevole.
func SlidingWindow(window time.Duration, max int) Policy {
	return Policy{Kind: Window, Window: window, Max: max}
}

// FixedCooldown costruisce una politica a cooldown fisso.
func FixedCooldown(d time.Duration) Policy {
	return Policy{Kind: Cooldown, Cooldown: d}
}

// Validate controlla la coerenza dei parametri.
func (p Policy) Validate() error {
	switch p.Kind {
	case Window:
		if p.Window <= 0 {
			return errors.New("window must be positive")
		}
		if p.Max <= 0 {
			return errors.New("window max must be positive")
		}
	case Cooldown:
		if p.Cooldown < 0 {
			return errors.New("cooldown cannot be negative")
		}
	default:
		return fmt.Errorf("unknown policy kind %q", p.Kind)
	}
	return nil
}

// Check dice se l'azione e' permessa ora e, se no, quanto manca.
func (p Policy) Check(history []time.Time, now time.Time) Decision {
	switch p.Kind {
	case Window:
		recent := Prune(history, now, p.Window)
		if len(recent) < p.Max {
			return Decision{Allowed: true}
		}
		// La prossima azione e' permessa quando esce dalla finestra la piu' vecchia tra le Max piu' recenti.
		oldest := recent[len(recent)-p.Max]
		return Decision{Wait: oldest.Add(p.Window).Sub(now)}
	case Cooldown:
		last, ok := latest(history)
		if !ok {
			return Decision{Allowed: true}
		}
		next := last.Add(p.Cooldown)
		if !now.Before(next) {
			return Decision{Allowed: true}
		}
		return Decision{Wait: next.Sub(now)}
	}
	return Decision{}
}

// Record registra un'azione eseguita e ritorna il nuovo storico.
func (p Policy) Record(history []time.Time, now time.Time) []time.Time {
	if p.Kind == Cooldown {
		return []time.Time{now}
	}
	return append(Prune(history, now, p.Window), now)
}

// Prune scarta i timestamp piu' vecchi della finestra e ordina il resto.
func Prune(history []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	kept := make([]time.Time, 0, len(history))
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Before(kept[j]) })
	return kept
}

func latest(history []time.Time) (time.Time, bool) {
	if len(history) == 0 {
		return time.Time{}, false
	}
	last := history[0]
	for _, ts := range history[1:] {
		if ts.After(last) {
			last = ts
		}
	}
	return last, true
}
