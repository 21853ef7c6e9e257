package roster

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/ratelimit"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func card(id int, s int) catalog.Card {
	return catalog.Card{
		ID:     id,
		Name:   "Player",
		Rarity: catalog.Common,
		Stats:  catalog.Stats{Speed: s, Mentality: s, Finishing: s, Defense: s},
	}
}

func newRoster(t *testing.T, cards ...catalog.Card) *Roster {
	t.Helper()
	r, err := New("Dinamo", 1000, cards, now)
	if err != nil {
		t.Fatalf("new roster: %v", err)
	}
	return r
}

func TestNewActivatesStarters(t *testing.T) {
	r := newRoster(t, card(1, 10), card(2, 10), card(3, 10))
	if len(r.Squad) != 3 || len(r.ActiveIDs) != 3 {
		t.Fatalf("expected 3 squad and 3 active, got %d/%d", len(r.Squad), len(r.ActiveIDs))
	}
	if len(r.Bonuses) != len(BonusActions) {
		t.Fatalf("expected all bonuses available, got %v", r.Bonuses)
	}
	if _, err := New("  ", 0, nil, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := New("X", 0, []catalog.Card{card(1, 1), card(1, 1)}, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for duplicate starter, got %v", err)
	}
}

func TestAddCardCapacity(t *testing.T) {
	r := newRoster(t)
	for i := 1; i <= MaxSquad; i++ {
		if err := r.AddCard(card(i, 5)); err != nil {
			t.Fatalf("add card %d: %v", i, err)
		}
	}
	if err := r.AddCard(card(1, 5)); !errors.Is(err, ErrRosterFull) {
		t.Fatalf("expected ErrRosterFull before duplicate check, got %v", err)
	}
	if err := r.AddCard(card(99, 5)); !errors.Is(err, ErrRosterFull) {
		t.Fatalf("expected ErrRosterFull, got %v", err)
	}
	if len(r.Squad) != MaxSquad {
		t.Fatalf("expected squad size %d, got %d", MaxSquad, len(r.Squad))
	}
}

func TestAddCardRejectsOwnedCard(t *testing.T) {
	r := newRoster(t, card(1, 10))
	if err := r.AddCard(card(1, 20)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(r.Squad) != 1 || r.Squad[0].Stats.Speed != 10 {
		t.Fatalf("squad changed on rejected add: %+v", r.Squad)
	}
}

func TestRemoveCardCascadesToActive(t *testing.T) {
	r := newRoster(t, card(1, 10), card(2, 10), card(3, 10))
	if !r.RemoveCard(2) {
		t.Fatalf("expected card 2 removed")
	}
	if r.Has(2) || r.IsActive(2) {
		t.Fatalf("card 2 still present: squad=%v active=%v", r.Squad, r.ActiveIDs)
	}
	if r.RemoveCard(42) {
		t.Fatalf("expected false for missing card")
	}
}

func TestSetActiveIsAtomic(t *testing.T) {
	r := newRoster(t, card(1, 10), card(2, 10), card(3, 10), card(4, 10))
	before := slices.Clone(r.ActiveIDs)

	// Due id su tre risolvono: l'intera operazione deve fallire.
	err := r.SetActive([]int{1, 4, 77})
	if !errors.Is(err, ErrInvalidLineup) || !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrInvalidLineup, got %v", err)
	}
	if !slices.Equal(r.ActiveIDs, before) {
		t.Fatalf("active set changed: %v -> %v", before, r.ActiveIDs)
	}

	if err := r.SetActive([]int{1, 2, 3, 4}); !errors.Is(err, ErrInvalidLineup) {
		t.Fatalf("expected ErrInvalidLineup for 4 ids, got %v", err)
	}
	if err := r.SetActive([]int{4, 4}); !errors.Is(err, ErrInvalidLineup) {
		t.Fatalf("expected ErrInvalidLineup for duplicate ids, got %v", err)
	}
	if err := r.SetActive([]int{4, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(r.ActiveIDs, []int{4, 1}) {
		t.Fatalf("unexpected active ids %v", r.ActiveIDs)
	}
}

func TestToggleActive(t *testing.T) {
	r := newRoster(t, card(1, 10))
	if err := r.ToggleActive(1, 1); !errors.Is(err, ErrLastActivePlayer) {
		t.Fatalf("expected ErrLastActivePlayer, got %v", err)
	}
	for _, id := range []int{2, 3, 4} {
		if err := r.AddCard(card(id, 10)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := r.ToggleActive(2, 1); err != nil {
		t.Fatalf("toggle 2: %v", err)
	}
	if err := r.ToggleActive(3, 1); err != nil {
		t.Fatalf("toggle 3: %v", err)
	}
	if err := r.ToggleActive(4, 1); !errors.Is(err, ErrLineupFull) {
		t.Fatalf("expected ErrLineupFull, got %v", err)
	}
	if err := r.ToggleActive(2, 1); err != nil {
		t.Fatalf("toggle off 2: %v", err)
	}
	if !slices.Equal(r.ActiveIDs, []int{1, 3}) {
		t.Fatalf("unexpected active ids %v", r.ActiveIDs)
	}
	if err := r.ToggleActive(50, 1); !errors.Is(err, ErrInvalidLineup) {
		t.Fatalf("expected ErrInvalidLineup for unknown card, got %v", err)
	}

	// Senza la regola del minimo si puo' svuotare la formazione.
	solo := newRoster(t, card(1, 10))
	if err := solo.ToggleActive(1, 0); err != nil {
		t.Fatalf("unexpected error with minActive=0: %v", err)
	}
	if len(solo.ActiveIDs) != 0 {
		t.Fatalf("expected empty lineup, got %v", solo.ActiveIDs)
	}
}

func TestTeamPower(t *testing.T) {
	empty := newRoster(t)
	if p := TeamPower(empty); p != (catalog.Stats{}) {
		t.Fatalf("expected zero power, got %+v", p)
	}

	r := newRoster(t, card(1, 10), card(2, 10), card(3, 10), card(4, 90))
	// 30 * 1.25 = 37.5 -> 38; la panchina (card 4) non conta.
	want := catalog.Stats{Speed: 38, Mentality: 38, Finishing: 38, Defense: 38}
	if p := TeamPower(r); p != want {
		t.Fatalf("expected %+v, got %+v", want, p)
	}

	if err := r.SetActive([]int{1, 2}); err != nil {
		t.Fatalf("set active: %v", err)
	}
	// 20 * 1.10 = 22
	if p := TeamPower(r); p.Speed != 22 {
		t.Fatalf("expected speed 22 with two players, got %d", p.Speed)
	}
	if err := r.SetActive([]int{4}); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if p := TeamPower(r); p.Finishing != 90 {
		t.Fatalf("expected finishing 90 with one player, got %d", p.Finishing)
	}
}

func TestTeamRating(t *testing.T) {
	p := catalog.Stats{Speed: 10, Mentality: 20, Finishing: 30, Defense: 41}
	// 2.5 + 4 + 10.5 + 8.2 = 25.2
	if got := TeamRating(p); got != 25.2 {
		t.Fatalf("expected 25.2, got %v", got)
	}
	if got := TeamRating(catalog.Stats{Speed: 38, Mentality: 38, Finishing: 38, Defense: 38}); got != 38 {
		t.Fatalf("expected 38, got %v", got)
	}
}

func TestComparePower(t *testing.T) {
	before := catalog.Stats{Speed: 10, Mentality: 10, Finishing: 10, Defense: 10}
	after := catalog.Stats{Speed: 22, Mentality: 8, Finishing: 22, Defense: 10}
	c := ComparePower(before, after)
	if c.Delta.Speed != 12 || c.Delta.Mentality != -2 || c.Delta.Defense != 0 {
		t.Fatalf("unexpected delta %+v", c.Delta)
	}
	if c.RatingDelta != 6.8 {
		t.Fatalf("expected rating delta 6.8, got %v", c.RatingDelta)
	}
}

func TestCheckAndRecord(t *testing.T) {
	limits := Limits{
		ActionPurchase: ratelimit.SlidingWindow(10*time.Minute, 2),
		ActionMatch:    ratelimit.FixedCooldown(time.Hour),
	}
	r := newRoster(t, card(1, 10))

	for i := 0; i < 2; i++ {
		if !r.CanPerform(ActionPurchase, limits, now) {
			t.Fatalf("purchase %d should be allowed", i+1)
		}
		if err := r.RecordPerformed(ActionPurchase, limits, now); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	err := r.Check(ActionPurchase, limits, now.Add(time.Minute))
	var cd *CooldownError
	if !errors.As(err, &cd) || !errors.Is(err, ErrCooldown) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if cd.Wait != 9*time.Minute {
		t.Fatalf("expected wait 9m, got %v", cd.Wait)
	}
	if !r.CanPerform(ActionPurchase, limits, now.Add(11*time.Minute)) {
		t.Fatalf("purchase should be allowed after the window")
	}

	// Nessuna politica configurata: sempre permesso.
	if !r.CanPerform(ActionSupport, limits, now) {
		t.Fatalf("support without policy should be allowed")
	}

	if err := r.Check("teleport", limits, now); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if err := r.RecordPerformed("teleport", limits, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBonusTokensAreOneShot(t *testing.T) {
	r := newRoster(t, card(1, 10))
	if !r.CanPerform(BonusPlayer, nil, now) {
		t.Fatalf("expected bonus available on a new roster")
	}
	if err := r.RecordPerformed(BonusPlayer, nil, now); err != nil {
		t.Fatalf("consume bonus: %v", err)
	}
	if r.CanPerform(BonusPlayer, nil, now) {
		t.Fatalf("bonus should be consumed")
	}
	if err := r.RecordPerformed(BonusPlayer, nil, now); !errors.Is(err, ErrBonusUsed) {
		t.Fatalf("expected ErrBonusUsed, got %v", err)
	}
	if !r.CanPerform(BonusMatch, nil, now) {
		t.Fatalf("other bonuses must stay available")
	}
}

func TestDebitCredit(t *testing.T) {
	r := newRoster(t)
	if err := r.Debit(1500); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if r.Money != 1000 {
		t.Fatalf("failed debit must not change money, got %d", r.Money)
	}
	if err := r.Debit(400); err != nil || r.Money != 600 {
		t.Fatalf("expected money 600, got %d (%v)", r.Money, err)
	}
	r.Credit(50, 3)
	if r.Money != 650 || r.Points != 3 {
		t.Fatalf("unexpected balances %d/%d", r.Money, r.Points)
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := newRoster(t, card(1, 10), card(2, 10))
	r.Ledger[ActionMatch] = []time.Time{now}
	c := r.Clone()
	c.Squad[0].Name = "Changed"
	c.ActiveIDs[0] = 99
	c.Ledger[ActionMatch][0] = now.Add(time.Hour)
	c.Bonuses = nil
	if r.Squad[0].Name == "Changed" || r.ActiveIDs[0] == 99 || !r.Ledger[ActionMatch][0].Equal(now) || len(r.Bonuses) == 0 {
		t.Fatalf("clone shares state with original")
	}
}

// Sequenze casuali di operazioni non violano mai i limiti della rosa.
func TestInvariantsHoldUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	r := newRoster(t, card(1, 10), card(2, 10), card(3, 10))
	for i := 0; i < 5000; i++ {
		id := 1 + rng.IntN(40)
		switch rng.IntN(4) {
		case 0:
			if !r.Has(id) {
				_ = r.AddCard(card(id, 10))
			}
		case 1:
			r.RemoveCard(id)
		case 2:
			n := rng.IntN(5)
			ids := make([]int, 0, n)
			for j := 0; j < n; j++ {
				ids = append(ids, 1+rng.IntN(40))
			}
			_ = r.SetActive(ids)
		case 3:
			_ = r.ToggleActive(id, 1)
		}
		if len(r.Squad) > MaxSquad || len(r.ActiveIDs) > MaxActive {
			t.Fatalf("limits violated: squad=%d active=%d", len(r.Squad), len(r.ActiveIDs))
		}
		for _, a := range r.ActiveIDs {
			if !r.Has(a) {
				t.Fatalf("active id %d not in squad", a)
			}
		}
	}
}

func TestRank(t *testing.T) {
	mk := func(points int64) *Roster { return &Roster{TeamName: "t", Points: points} }
	entries := []Entry{
		{UserID: "300", Roster: mk(5)},
		{UserID: "100", Roster: mk(9)},
		{UserID: "250", Roster: mk(5)},
		{UserID: "200", Roster: mk(5)},
	}
	ranked := Rank(entries)
	got := make([]string, 0, len(ranked))
	for _, e := range ranked {
		got = append(got, e.UserID)
	}
	want := []string{"100", "200", "250", "300"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if entries[0].UserID != "300" {
		t.Fatalf("Rank must not reorder its input")
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range append(slices.Clone(TimedActions), BonusActions...) {
		if _, err := ParseAction(string(a)); err != nil {
			t.Fatalf("parse %s: %v", a, err)
		}
	}
	if _, err := ParseAction("fly"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}
