package match

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/ratelimit"
	"Futbotchi/service/club/internal/roster"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testLimits() roster.Limits {
	return roster.Limits{roster.ActionMatch: ratelimit.FixedCooldown(time.Hour)}
}

func teamWithStats(t *testing.T, s int) *roster.Roster {
	t.Helper()
	cards := make([]catalog.Card, 0, 3)
	for i := 1; i <= 3; i++ {
		cards = append(cards, catalog.Card{
			ID: i, Name: "P" + string(rune('0'+i)), Rarity: catalog.Common,
			Stats: catalog.Stats{Speed: s, Mentality: s, Finishing: s, Defense: s},
		})
	}
	r, err := roster.New("Test FC", 0, cards, now)
	if err != nil {
		t.Fatalf("new roster: %v", err)
	}
	return r
}

func forcedConfig(base float64) Config {
	cfg := DefaultConfig()
	cfg.MaxWinChance = 1
	for d, tier := range cfg.Tiers {
		tier.BaseWinChance = base
		cfg.Tiers[d] = tier
	}
	return cfg
}

// Con winChance=1 si vince sempre.
func TestSimulateAlwaysWins(t *testing.T) {
	sim := NewSimulator(forcedConfig(1), testLimits(), rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 200; i++ {
		r := teamWithStats(t, 100)
		res, err := sim.Simulate(r, Easy, now)
		if err != nil {
			t.Fatalf("simulate: %v", err)
		}
		if res.Outcome != Win || res.WinChance != 1 {
			t.Fatalf("trial %d: expected win with chance 1, got %s (%.2f)", i, res.Outcome, res.WinChance)
		}
	}
}

// Con winChance=0 (squadra sotto soglia, base 0) si perde sempre.
func TestSimulateAlwaysLoses(t *testing.T) {
	sim := NewSimulator(forcedConfig(0), testLimits(), rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 200; i++ {
		r := teamWithStats(t, 10)
		res, err := sim.Simulate(r, Medium, now)
		if err != nil {
			t.Fatalf("simulate: %v", err)
		}
		if res.Outcome != Loss {
			t.Fatalf("trial %d: expected loss, got %s", i, res.Outcome)
		}
		if res.MoneyDelta != 75 || res.PointsDelta != 0 {
			t.Fatalf("expected consolation 75/0, got %d/%d", res.MoneyDelta, res.PointsDelta)
		}
		if r.Money != 75 || r.Points != 0 {
			t.Fatalf("roster not credited: %d/%d", r.Money, r.Points)
		}
	}
}

func TestWinChanceModel(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), nil, rand.New(rand.NewPCG(1, 1)))
	tier := Tier{RequiredPower: 100, BaseWinChance: 0.4}
	cases := []struct {
		power float64
		want  float64
	}{
		{power: 50, want: 0.4},
		{power: 100, want: 0.4},
		{power: 130, want: 0.7},
		{power: 400, want: 0.9},
	}
	for _, c := range cases {
		got := sim.WinChance(c.power, tier)
		if diff := got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("power %.0f: expected %.2f, got %.4f", c.power, c.want, got)
		}
	}
}

func TestStrengthBonus(t *testing.T) {
	sim := NewSimulator(forcedConfig(1), testLimits(), rand.New(rand.NewPCG(5, 6)))

	// basePower = 300*1.25 = 375; easy richiede 150 -> bonus round(225*2) = 450.
	r := teamWithStats(t, 100)
	res, err := sim.Simulate(r, Easy, now)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.BasePower != 375 || res.StrengthBonus != 450 {
		t.Fatalf("unexpected base/bonus %.1f/%d", res.BasePower, res.StrengthBonus)
	}
	if res.MoneyDelta != 550 || res.PointsDelta != 1 {
		t.Fatalf("expected 550/1, got %d/%d", res.MoneyDelta, res.PointsDelta)
	}

	// Hard: bonus round(105*2) = 210 e +1 punto.
	r = teamWithStats(t, 100)
	res, err = sim.Simulate(r, Hard, now)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.MoneyDelta != 710 || res.PointsDelta != 6 {
		t.Fatalf("expected 710/6, got %d/%d", res.MoneyDelta, res.PointsDelta)
	}
	if r.Money != 710 || r.Points != 6 {
		t.Fatalf("roster not credited: %d/%d", r.Money, r.Points)
	}
}

func TestNoBonusBelowMargin(t *testing.T) {
	sim := NewSimulator(forcedConfig(1), testLimits(), rand.New(rand.NewPCG(7, 8)))
	// 3*44*1.25 = 165 < 150+20.
	res, err := sim.Simulate(teamWithStats(t, 44), Easy, now)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.StrengthBonus != 0 || res.MoneyDelta != 100 {
		t.Fatalf("expected no bonus, got bonus %d money %d", res.StrengthBonus, res.MoneyDelta)
	}
}

func TestSimulateCooldownLeavesRosterUntouched(t *testing.T) {
	sim := NewSimulator(forcedConfig(1), testLimits(), rand.New(rand.NewPCG(9, 9)))
	r := teamWithStats(t, 100)
	if _, err := sim.Simulate(r, Easy, now); err != nil {
		t.Fatalf("first match: %v", err)
	}
	money, points := r.Money, r.Points

	_, err := sim.Simulate(r, Easy, now.Add(10*time.Minute))
	var cd *roster.CooldownError
	if !errors.As(err, &cd) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if cd.Wait != 50*time.Minute {
		t.Fatalf("expected 50m wait, got %v", cd.Wait)
	}
	if r.Money != money || r.Points != points {
		t.Fatalf("roster changed on rejected match")
	}

	if _, err := sim.Simulate(r, Easy, now.Add(time.Hour)); err != nil {
		t.Fatalf("match after cooldown: %v", err)
	}
}

func TestSimulateNoActiveLineup(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), testLimits(), rand.New(rand.NewPCG(1, 1)))
	r := teamWithStats(t, 50)
	if err := r.SetActive(nil); err != nil {
		t.Fatalf("clear lineup: %v", err)
	}
	_, err := sim.Simulate(r, Easy, now)
	if !errors.Is(err, ErrNoActiveLineup) {
		t.Fatalf("expected ErrNoActiveLineup, got %v", err)
	}
	if len(r.Ledger[roster.ActionMatch]) != 0 {
		t.Fatalf("rejected match must not be recorded")
	}
}

func TestSimulateUnknownDifficulty(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), testLimits(), rand.New(rand.NewPCG(1, 1)))
	if _, err := sim.Simulate(teamWithStats(t, 50), "legendary", now); !errors.Is(err, roster.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEventsShape(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), nil, rand.New(rand.NewPCG(11, 12)))
	for i := 0; i < 100; i++ {
		r := teamWithStats(t, 60)
		res, err := sim.Simulate(r, Medium, now)
		if err != nil {
			t.Fatalf("simulate: %v", err)
		}
		if len(res.Events) != 3 {
			t.Fatalf("expected one event per active player, got %d", len(res.Events))
		}
		goals := 0
		seen := map[int]bool{}
		for _, ev := range res.Events {
			if ev.Goal {
				goals++
				if !ev.Positive {
					t.Fatalf("negative event marked as goal")
				}
			}
			if seen[ev.PlayerID] {
				t.Fatalf("player %d sampled twice", ev.PlayerID)
			}
			seen[ev.PlayerID] = true
		}
		if goals != res.Goals {
			t.Fatalf("goal tally %d does not match events %d", res.Goals, goals)
		}
		// Kick-off + eventi + fischio finale + premio.
		if len(res.Log) != len(res.Events)+3 {
			t.Fatalf("unexpected log length %d", len(res.Log))
		}
		if res.MatchID == "" {
			t.Fatalf("expected match id")
		}
	}
}

// In modalita' goals l'esito segue il confronto dei gol.
func TestGoalsModeOutcomeFollowsTally(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeGoals
	sim := NewSimulator(cfg, nil, rand.New(rand.NewPCG(21, 22)))
	for i := 0; i < 300; i++ {
		res, err := sim.Simulate(teamWithStats(t, 60), Hard, now)
		if err != nil {
			t.Fatalf("simulate: %v", err)
		}
		wantWin := res.Goals > res.OpponentGoals
		if (res.Outcome == Win) != wantWin {
			t.Fatalf("outcome %s inconsistent with score %d-%d", res.Outcome, res.Goals, res.OpponentGoals)
		}
		if res.OpponentGoals > cfg.OpponentShots {
			t.Fatalf("opponent scored %d with %d shots", res.OpponentGoals, cfg.OpponentShots)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Mode = "coin-flip"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	cfg = DefaultConfig()
	delete(cfg.Tiers, Hard)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing tier")
	}
	cfg = DefaultConfig()
	easy := cfg.Tiers[Easy]
	easy.Opponents = nil
	cfg.Tiers[Easy] = easy
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for tier without opponents")
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Hard ")
	if err != nil || d != Hard {
		t.Fatalf("expected hard, got %q (%v)", d, err)
	}
	if _, err := ParseDifficulty("nightmare"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
	if Medium.Label() != "Medium" {
		t.Fatalf("unexpected label %q", Medium.Label())
	}
}
