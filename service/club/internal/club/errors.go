package club

import (
	"errors"

	"Futbotchi/service/club/internal/roster"
)

// Errori di dominio usati da service/repo e mappati nel layer gRPC.
var ErrRosterNotFound = errors.New("roster not found")

// ErrRosterExists indica che l'utente ha gia' una squadra.
var ErrRosterExists = errors.New("roster already exists")

// ErrUnauthenticated indica credenziali mancanti o invalide.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrBusy indica che un'altra richiesta sta modificando la stessa rosa.
var ErrBusy = errors.New("roster is busy, retry later")

// ErrUnknownSupport indica un'azione di supporto non prevista.
var ErrUnknownSupport = roster.Validation("unknown support action")

// ErrUnknownStrategy indica una strategia non configurata.
var ErrUnknownStrategy = roster.Validation("unknown strategy")

// ErrRescueNotNeeded indica un bonus "senza soldi" chiesto con fondi sufficienti.
var ErrRescueNotNeeded = roster.Validation("money is enough to buy a player, bonus not needed")
