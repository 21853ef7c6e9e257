package roster

import (
	"slices"
	"time"

	"Futbotchi/service/club/internal/ratelimit"
)

// Action e' un tipo di azione limitata: a tempo (registro) o a gettone monouso (bonus).
type Action string

const (
	ActionPurchase Action = "purchase"
	ActionMatch    Action = "match"
	ActionSupport  Action = "support"

	BonusPlayer  Action = "bonus-player"
	BonusMatch   Action = "bonus-match"
	BonusNoMoney Action = "bonus-nomoney"
)

// TimedActions sono le azioni regolate da una politica di ratelimit.
var TimedActions = []Action{ActionPurchase, ActionMatch, ActionSupport}

// BonusActions sono i gettoni monouso assegnati alla creazione della rosa.
var BonusActions = []Action{BonusPlayer, BonusMatch, BonusNoMoney}

// Limits associa a ogni azione a tempo la sua politica.
type Limits map[Action]ratelimit.Policy

// ParseAction valida il nome di un'azione.
func ParseAction(value string) (Action, error) {
	a := Action(value)
	if a.timed() || a.bonus() {
		return a, nil
	}
	return "", ErrUnknownAction
}

func (a Action) timed() bool { return slices.Contains(TimedActions, a) }
func (a Action) bonus() bool { return slices.Contains(BonusActions, a) }

// Check ritorna nil se l'azione e' eseguibile ora, altrimenti l'errore che la blocca.
func (r *Roster) Check(action Action, limits Limits, now time.Time) error {
	switch {
	case action.timed():
		policy, ok := limits[action]
		if !ok {
			return nil
		}
		d := policy.Check(r.Ledger[action], now)
		if !d.Allowed {
			return &CooldownError{Action: action, Wait: d.Wait}
		}
		return nil
	case action.bonus():
		if !slices.Contains(r.Bonuses, action) {
			return ErrBonusUsed
		}
		return nil
	}
	return ErrUnknownAction
}

// CanPerform e' la forma booleana di Check.
func (r *Roster) CanPerform(action Action, limits Limits, now time.Time) bool {
	return r.Check(action, limits, now) == nil
}

// RecordPerformed registra l'esecuzione: timestamp per le azioni a tempo, consumo per i bonus.
func (r *Roster) RecordPerformed(action Action, limits Limits, now time.Time) error {
	switch {
	case action.timed():
		policy, ok := limits[action]
		if !ok {
			return nil
		}
		if r.Ledger == nil {
			r.Ledger = make(map[Action][]time.Time)
		}
		r.Ledger[action] = policy.Record(r.Ledger[action], now)
		return nil
	case action.bonus():
		idx := slices.Index(r.Bonuses, action)
		if idx < 0 {
			return ErrBonusUsed
		}
		r.Bonuses = slices.Delete(r.Bonuses, idx, idx+1)
		return nil
	}
	return ErrUnknownAction
}

// ResetTimer azzera lo storico di un'azione a tempo (usato dal bonus partita).
func (r *Roster) ResetTimer(action Action) {
	delete(r.Ledger, action)
}
