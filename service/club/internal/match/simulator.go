// Package match simula una partita contro un avversario sintetico e applica i premi alla rosa.
package match

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/roster"
)

// Simulator esegue: idoneita' -> avversario -> eventi -> esito -> premi.
// Il salvataggio della rosa resta al chiamante.
type Simulator struct {
	cfg    Config
	limits roster.Limits
	rng    *rand.Rand
}

// NewSimulator collega configurazione, limiti e generatore casuale.
func NewSimulator(cfg Config, limits roster.Limits, rng *rand.Rand) *Simulator {
	return &Simulator{cfg: cfg, limits: limits, rng: rng}
}

// WinChance applica il modello: base + max(0, (basePower-required)/100), con tetto MaxWinChance.
func (s *Simulator) WinChance(basePower float64, tier Tier) float64 {
	chance := tier.BaseWinChance + math.Max(0, (basePower-tier.RequiredPower)/100)
	return math.Min(s.cfg.MaxWinChance, chance)
}

// Simulate gioca una partita. Se fallisce l'idoneita' la rosa non viene toccata.
func (s *Simulator) Simulate(r *roster.Roster, d Difficulty, now time.Time) (Result, error) {
	tier, ok := s.cfg.Tiers[d]
	if !ok {
		return Result{}, ErrInvalidDifficulty
	}

	// 1) Idoneita': limite partite e formazione non vuota.
	if err := r.Check(roster.ActionMatch, s.limits, now); err != nil {
		return Result{}, err
	}
	active := r.Active()
	if len(active) == 0 {
		return Result{}, ErrNoActiveLineup
	}
	if len(tier.Opponents) == 0 {
		return Result{}, fmt.Errorf("match tier %s has no opponents", d)
	}

	// 2) Avversario.
	opponent := tier.Opponents[s.rng.IntN(len(tier.Opponents))]

	// 3) Probabilita' di vittoria.
	basePower := roster.TeamPower(r).Mean()
	res := Result{
		MatchID:    uuid.NewString(),
		Difficulty: d,
		Opponent:   opponent,
		BasePower:  basePower,
		WinChance:  s.WinChance(basePower, tier),
	}
	res.Log = append(res.Log, fmt.Sprintf("Kick-off: %s vs %s (%s)", r.TeamName, opponent.Name, d.Label()))

	// 4) Cronaca.
	res.Events = s.events(active)
	for _, ev := range res.Events {
		if ev.Goal {
			res.Goals++
		}
		res.Log = append(res.Log, ev.Text)
	}

	// 5) Esito.
	var won bool
	switch s.cfg.Mode {
	case ModeGoals:
		for i := 0; i < s.cfg.OpponentShots; i++ {
			if s.rng.Float64() < opponent.Strength*s.cfg.OpponentGoalFactor {
				res.OpponentGoals++
			}
		}
		won = res.Goals > res.OpponentGoals
		res.Log = append(res.Log, fmt.Sprintf("Full time: %s %d - %d %s", r.TeamName, res.Goals, res.OpponentGoals, opponent.Name))
	default:
		won = s.rng.Float64() < res.WinChance
		res.Log = append(res.Log, "Full time!")
	}

	// 6) Premi.
	if won {
		res.Outcome = Win
		res.MoneyDelta = tier.MoneyReward
		res.PointsDelta = tier.PointsReward
		if basePower > tier.RequiredPower+s.cfg.BonusMargin {
			res.StrengthBonus = int64(math.Round((basePower - tier.RequiredPower) * s.cfg.BonusFactor))
			res.MoneyDelta += res.StrengthBonus
			if d == Hard {
				res.PointsDelta += s.cfg.HardBonusPoints
			}
		}
		res.Log = append(res.Log, fmt.Sprintf("Victory! +%d coins, +%d points", res.MoneyDelta, res.PointsDelta))
	} else {
		res.Outcome = Loss
		res.MoneyDelta = tier.MoneyReward / s.cfg.LossDivisor
		res.Log = append(res.Log, fmt.Sprintf("Defeat. Consolation +%d coins", res.MoneyDelta))
	}
	r.Credit(res.MoneyDelta, res.PointsDelta)

	// 7) Registro partite.
	if err := r.RecordPerformed(roster.ActionMatch, s.limits, now); err != nil {
		return Result{}, err
	}
	return res, nil
}

// events estrae fino a MaxEventPlayers titolari in ordine casuale e genera un evento ciascuno.
func (s *Simulator) events(active []catalog.Card) []Event {
	players := append([]catalog.Card(nil), active...)
	s.rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	if len(players) > s.cfg.MaxEventPlayers {
		players = players[:s.cfg.MaxEventPlayers]
	}

	events := make([]Event, 0, len(players))
	for _, p := range players {
		positive := s.rng.Float64() < s.cfg.PositiveEventChance
		table := negativeEvents
		if positive {
			table = positiveEvents
		}
		tpl := table[s.rng.IntN(len(table))]
		events = append(events, Event{
			PlayerID: p.ID,
			Player:   p.Name,
			Text:     fmt.Sprintf(tpl.Text, p.Name),
			Positive: positive,
			Goal:     positive && tpl.Goal,
		})
	}
	return events
}
