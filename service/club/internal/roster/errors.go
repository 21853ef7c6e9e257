package roster

import (
	"errors"
	"fmt"
	"time"
)

// Errori di dominio della rosa. Quelli di validazione soddisfano errors.Is(err, ErrValidation).
var (
	ErrValidation = errors.New("validation failed")
	ErrRosterFull = errors.New("roster is full")
	ErrCooldown   = errors.New("action on cooldown")

	ErrInvalidLineup     = Validation("invalid lineup")
	ErrLineupFull        = validationUnder(ErrInvalidLineup, "at most 3 active players")
	ErrLastActivePlayer  = validationUnder(ErrInvalidLineup, "at least one active player is required")
	ErrUnknownAction     = Validation("unknown action kind")
	ErrInsufficientFunds = Validation("insufficient funds")
	ErrBonusUsed         = Validation("bonus already used")
)

type validationError struct {
	msg    string
	parent error
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.parent != nil && errors.Is(e.parent, target)
}

// Validation crea un errore di validazione con messaggio per l'utente.
func Validation(msg string) error {
	return &validationError{msg: msg}
}

func validationUnder(parent error, msg string) error {
	return &validationError{msg: msg, parent: parent}
}

// CooldownError riporta l'azione limitata e l'attesa residua.
type CooldownError struct {
	Action Action
	Wait   time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown, retry in %s", e.Action, e.Wait.Round(time.Second))
}

// Is fa combaciare CooldownError con ErrCooldown.
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldown
}
