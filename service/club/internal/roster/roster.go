// Package roster modella lo stato di gioco di un utente: rosa, formazione, economia e registro azioni.
//
// Una Roster non e' sicura per uso concorrente: il chiamante deve serializzare
// le operazioni che la modificano per lo stesso utente.
package roster

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"Futbotchi/service/club/internal/catalog"
)

const (
	// MaxSquad e' il numero massimo di carte possedute.
	MaxSquad = 22
	// MaxActive e' il numero massimo di titolari.
	MaxActive = 3
)

// Roster e' lo stato completo di una squadra.
type Roster struct {
	TeamName  string                 `json:"name"`
	Money     int64                  `json:"money"`
	Points    int64                  `json:"points"`
	Squad     []catalog.Card         `json:"squad"`
	ActiveIDs []int                  `json:"active_ids"`
	Ledger    map[Action][]time.Time `json:"ledger,omitempty"`
	Bonuses   []Action               `json:"bonuses,omitempty"`
	Strategy  string                 `json:"strategy,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// New crea una rosa con le carte iniziali, tutte titolari fino a MaxActive, e tutti i bonus disponibili.
func New(name string, money int64, starters []catalog.Card, now time.Time) (*Roster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validation("team name is required")
	}
	if len(starters) > MaxSquad {
		return nil, fmt.Errorf("%w: %d starters", ErrRosterFull, len(starters))
	}
	r := &Roster{
		TeamName:  name,
		Money:     money,
		Ledger:    make(map[Action][]time.Time),
		Bonuses:   slices.Clone(BonusActions),
		CreatedAt: now,
	}
	for _, card := range starters {
		if r.Has(card.ID) {
			return nil, Validation(fmt.Sprintf("duplicate starter card %d", card.ID))
		}
		r.Squad = append(r.Squad, card)
		if len(r.ActiveIDs) < MaxActive {
			r.ActiveIDs = append(r.ActiveIDs, card.ID)
		}
	}
	return r, nil
}

// Clone ritorna una copia profonda.
func (r *Roster) Clone() *Roster {
	c := *r
	c.Squad = slices.Clone(r.Squad)
	c.ActiveIDs = slices.Clone(r.ActiveIDs)
	c.Bonuses = slices.Clone(r.Bonuses)
	c.Ledger = make(map[Action][]time.Time, len(r.Ledger))
	for k, v := range r.Ledger {
		c.Ledger[k] = slices.Clone(v)
	}
	return &c
}

// Has indica se la carta e' nella rosa.
func (r *Roster) Has(cardID int) bool {
	_, ok := r.Card(cardID)
	return ok
}

// Card cerca una carta della rosa per id.
func (r *Roster) Card(cardID int) (catalog.Card, bool) {
	for _, card := range r.Squad {
		if card.ID == cardID {
			return card, true
		}
	}
	return catalog.Card{}, false
}

// IsActive indica se la carta e' titolare.
func (r *Roster) IsActive(cardID int) bool {
	return slices.Contains(r.ActiveIDs, cardID)
}

// Active ritorna le carte titolari nell'ordine della formazione.
func (r *Roster) Active() []catalog.Card {
	active := make([]catalog.Card, 0, len(r.ActiveIDs))
	for _, id := range r.ActiveIDs {
		if card, ok := r.Card(id); ok {
			active = append(active, card)
		}
	}
	return active
}

// Bench ritorna le carte in panchina nell'ordine di acquisizione.
func (r *Roster) Bench() []catalog.Card {
	var bench []catalog.Card
	for _, card := range r.Squad {
		if !r.IsActive(card.ID) {
			bench = append(bench, card)
		}
	}
	return bench
}

// AddCard aggiunge una carta in coda; con la rosa piena o una carta gia' posseduta non modifica nulla.
func (r *Roster) AddCard(card catalog.Card) error {
	if len(r.Squad) >= MaxSquad {
		return ErrRosterFull
	}
	if r.Has(card.ID) {
		return Validation(fmt.Sprintf("card %d already in the squad", card.ID))
	}
	r.Squad = append(r.Squad, card)
	return nil
}

// RemoveCard toglie la carta dalla rosa e dalla formazione; false se non trovata.
func (r *Roster) RemoveCard(cardID int) bool {
	idx := slices.IndexFunc(r.Squad, func(c catalog.Card) bool { return c.ID == cardID })
	if idx < 0 {
		return false
	}
	r.Squad = slices.Delete(r.Squad, idx, idx+1)
	r.ActiveIDs = slices.DeleteFunc(r.ActiveIDs, func(id int) bool { return id == cardID })
	return true
}

// SetActive sostituisce la formazione in modo atomico: o tutti gli id sono validi o nulla cambia.
func (r *Roster) SetActive(ids []int) error {
	if len(ids) > MaxActive {
		return ErrLineupFull
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return validationUnder(ErrInvalidLineup, fmt.Sprintf("card %d listed twice", id))
		}
		seen[id] = struct{}{}
		if !r.Has(id) {
			return validationUnder(ErrInvalidLineup, fmt.Sprintf("card %d is not in the squad", id))
		}
	}
	r.ActiveIDs = slices.Clone(ids)
	return nil
}

// ToggleActive e' il toggle dell'editor formazione: toglie un titolare o aggiunge una riserva.
// minActive e' il minimo di titolari da mantenere (0 disabilita la regola).
func (r *Roster) ToggleActive(cardID, minActive int) error {
	if !r.Has(cardID) {
		return validationUnder(ErrInvalidLineup, fmt.Sprintf("card %d is not in the squad", cardID))
	}
	if r.IsActive(cardID) {
		if len(r.ActiveIDs) <= minActive {
			return ErrLastActivePlayer
		}
		next := slices.DeleteFunc(slices.Clone(r.ActiveIDs), func(id int) bool { return id == cardID })
		return r.SetActive(next)
	}
	if len(r.ActiveIDs) >= MaxActive {
		return ErrLineupFull
	}
	return r.SetActive(append(slices.Clone(r.ActiveIDs), cardID))
}

// Debit scala denaro dopo la verifica del saldo.
func (r *Roster) Debit(amount int64) error {
	if amount < 0 {
		return Validation("amount cannot be negative")
	}
	if r.Money < amount {
		return ErrInsufficientFunds
	}
	r.Money -= amount
	return nil
}

// Credit aggiunge denaro e punti; nessun tetto sui totali.
func (r *Roster) Credit(money, points int64) {
	r.Money += money
	r.Points += points
}
