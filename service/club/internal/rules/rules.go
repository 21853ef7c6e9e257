// Package rules contiene l'unico set di regole di gioco con i default documentati.
//
// Ogni soglia regolabile (costi, cooldown, pesi rarita', premi, starter) vive
// qui; un file TOML puo' sovrascrivere solo le voci che riporta.
//
// Pesi rarita': rarity_weights del file regole, se presente, vince; altrimenti
// si usano le rarity_chances del catalogo caricato (vedi LoadFileOver), e in
// mancanza di entrambi la tabella 60/25/10/5.
package rules

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/match"
	"Futbotchi/service/club/internal/ratelimit"
	"Futbotchi/service/club/internal/roster"
)

// StarterKind sceglie come si compone la rosa iniziale.
type StarterKind string

const (
	// StarterNamed usa una lista fissa di id del catalogo.
	StarterNamed StarterKind = "named"
	// StarterRandom estrae carte casuali per fascia.
	StarterRandom StarterKind = "random"
)

// StarterPolicy descrive la rosa iniziale.
type StarterPolicy struct {
	Kind    StarterKind
	CardIDs []int
	Counts  map[catalog.Rarity]int
}

// Rules e' la configurazione di gioco completa.
type Rules struct {
	StartingMoney int64
	PurchasePrice int64
	// MinActive e' il minimo di titolari imposto dall'editor formazione (0 = nessun minimo).
	MinActive int
	Weights   catalog.Weights
	Limits    roster.Limits
	Match     match.Config

	SupportMoney int64
	Strategies   []string
	// RescueMoney e' l'accredito del bonus "senza soldi".
	RescueMoney int64
	Starter     StarterPolicy
}

// Default ritorna le regole canoniche:
//   - 1000 monete iniziali, giocatore a 1000;
//   - acquisti: massimo 3 ogni 10 minuti; partite: 1 ogni ora; supporto: ogni 12 ore;
//   - pesi rarita' 60/25/10/5;
//   - supporto in denaro +500, bonus "senza soldi" +1000;
//   - starter casuale: 2 common + 1 rare.
func Default() Rules {
	return Rules{
		StartingMoney: 1000,
		PurchasePrice: 1000,
		MinActive:     1,
		Weights:       catalog.DefaultWeights(),
		Limits: roster.Limits{
			roster.ActionPurchase: ratelimit.SlidingWindow(10*time.Minute, 3),
			roster.ActionMatch:    ratelimit.FixedCooldown(time.Hour),
			roster.ActionSupport:  ratelimit.FixedCooldown(12 * time.Hour),
		},
		Match:        match.DefaultConfig(),
		SupportMoney: 500,
		Strategies:   []string{"balanced", "attacking", "defensive"},
		RescueMoney:  1000,
		Starter: StarterPolicy{
			Kind:    StarterRandom,
			CardIDs: []int{1, 2, 3},
			Counts:  map[catalog.Rarity]int{catalog.Common: 2, catalog.Rare: 1},
		},
	}
}

// clone copia le mappe e gli slice che apply puo' modificare.
func (r Rules) clone() Rules {
	c := r
	c.Weights = maps.Clone(r.Weights)
	c.Limits = maps.Clone(r.Limits)
	c.Match.Tiers = maps.Clone(r.Match.Tiers)
	c.Strategies = slices.Clone(r.Strategies)
	c.Starter.CardIDs = slices.Clone(r.Starter.CardIDs)
	c.Starter.Counts = maps.Clone(r.Starter.Counts)
	return c
}

// Validate controlla la coerenza delle regole.
func (r Rules) Validate() error {
	var errs []error
	if r.StartingMoney < 0 {
		errs = append(errs, errors.New("starting_money cannot be negative"))
	}
	if r.PurchasePrice <= 0 {
		errs = append(errs, errors.New("purchase_price must be positive"))
	}
	if r.MinActive < 0 || r.MinActive > roster.MaxActive {
		errs = append(errs, fmt.Errorf("min_active must be in [0,%d]", roster.MaxActive))
	}
	if err := r.Weights.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rarity_weights: %w", err))
	}
	for action, p := range r.Limits {
		if !slices.Contains(roster.TimedActions, action) {
			errs = append(errs, fmt.Errorf("limits: %q is not a rate-limited action", action))
			continue
		}
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("limits.%s: %w", action, err))
		}
	}
	if err := r.Match.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("match: %w", err))
	}
	if r.SupportMoney < 0 || r.RescueMoney < 0 {
		errs = append(errs, errors.New("support and rescue money cannot be negative"))
	}
	if len(r.Strategies) == 0 {
		errs = append(errs, errors.New("at least one strategy is required"))
	}
	switch r.Starter.Kind {
	case StarterNamed:
		if len(r.Starter.CardIDs) == 0 || len(r.Starter.CardIDs) > roster.MaxSquad {
			errs = append(errs, errors.New("starter: named policy needs 1..22 card ids"))
		}
		seen := make(map[int]struct{}, len(r.Starter.CardIDs))
		for _, id := range r.Starter.CardIDs {
			if _, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("starter: duplicate card id %d", id))
				continue
			}
			seen[id] = struct{}{}
		}
	case StarterRandom:
		total := 0
		for rarity, n := range r.Starter.Counts {
			if !rarity.Valid() || n < 0 {
				errs = append(errs, fmt.Errorf("starter: invalid count %s=%d", rarity, n))
			}
			total += n
		}
		if total == 0 || total > roster.MaxSquad {
			errs = append(errs, errors.New("starter: random policy needs 1..22 cards"))
		}
	default:
		errs = append(errs, fmt.Errorf("starter: unknown policy %q", r.Starter.Kind))
	}
	return errors.Join(errs...)
}

// ValidStrategy indica se la strategia e' tra quelle configurate.
func (r Rules) ValidStrategy(name string) bool {
	return slices.Contains(r.Strategies, strings.ToLower(strings.TrimSpace(name)))
}
