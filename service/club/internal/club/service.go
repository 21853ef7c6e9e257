package club

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/lock"
	"Futbotchi/service/club/internal/match"
	"Futbotchi/service/club/internal/roster"
	"Futbotchi/service/club/internal/rules"
)

// Service applica la logica di dominio usando il repository.
// Ogni operazione che modifica una rosa e' un singolo ciclo load-mutate-save
// sotto il lock dell'utente; le letture non prendono lock.
type Service struct {
	repo    Repository
	locks   lock.Manager
	catalog *catalog.Catalog
	rules   rules.Rules
	rng     *rand.Rand
	sim     *match.Simulator
	now     func() time.Time
	logger  *slog.Logger
}

var _ Game = (*Service)(nil)

// Option personalizza il servizio (clock e logger nei test).
type Option func(*Service)

// WithClock sostituisce time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger imposta il logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService crea il servizio di dominio per il club.
// Fallisce se regole e catalogo non sono coerenti tra loro.
func NewService(repo Repository, locks lock.Manager, cat *catalog.Catalog, rl rules.Rules, rng *rand.Rand, opts ...Option) (*Service, error) {
	if err := rl.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if err := cat.CheckWeights(rl.Weights); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if rl.Starter.Kind == rules.StarterNamed {
		for _, id := range rl.Starter.CardIDs {
			if _, ok := cat.Card(id); !ok {
				return nil, fmt.Errorf("%w: starter card %d not in catalog", catalog.ErrInvalidCatalog, id)
			}
		}
	}

	s := &Service{
		repo:    repo,
		locks:   locks,
		catalog: cat,
		rules:   rl,
		rng:     rng,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sim = match.NewSimulator(rl.Match, rl.Limits, rng)
	return s, nil
}

// Rules ritorna le regole in uso.
func (s *Service) Rules() rules.Rules {
	return s.rules
}

// Start crea la squadra dell'utente con la rosa iniziale.
func (s *Service) Start(ctx context.Context, userID, teamName string) (*View, error) {
	release, err := s.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 1) Una sola squadra per utente.
	_, err = s.repo.Load(ctx, userID)
	switch {
	case err == nil:
		return nil, ErrRosterExists
	case !errors.Is(err, ErrRosterNotFound):
		return nil, err
	}

	// 2) Rosa iniziale secondo la politica configurata.
	starters, err := s.starters()
	if err != nil {
		return nil, err
	}
	r, err := roster.New(teamName, s.rules.StartingMoney, starters, s.now())
	if err != nil {
		return nil, err
	}

	// 3) Persistenza.
	if err := s.repo.Save(ctx, userID, r); err != nil {
		return nil, err
	}
	s.logger.Info("squadra creata", "user_id", userID, "team", r.TeamName, "cards", len(r.Squad))
	return NewView(userID, r), nil
}

// GetRoster carica la rosa dell'utente.
func (s *Service) GetRoster(ctx context.Context, userID string) (*View, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	r, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewView(userID, r), nil
}

// BuyPlayer acquista una carta casuale al prezzo fisso.
func (s *Service) BuyPlayer(ctx context.Context, userID string) (*PurchaseResult, error) {
	var res PurchaseResult
	err := s.mutate(ctx, userID, func(r *roster.Roster, now time.Time) error {
		// 1) Limite acquisti, fondi, capienza: tutto prima di toccare la rosa.
		if err := r.Check(roster.ActionPurchase, s.rules.Limits, now); err != nil {
			return err
		}
		price := s.rules.PurchasePrice
		if r.Money < price {
			return fmt.Errorf("%w: need %d, have %d", roster.ErrInsufficientFunds, price, r.Money)
		}
		if len(r.Squad) >= roster.MaxSquad {
			return roster.ErrRosterFull
		}

		// 2) Estrazione e addebito.
		card, err := s.draw(r)
		if err != nil {
			return err
		}
		if err := r.AddCard(card); err != nil {
			return err
		}
		if err := r.Debit(price); err != nil {
			return err
		}

		// 3) Registro acquisti.
		if err := r.RecordPerformed(roster.ActionPurchase, s.rules.Limits, now); err != nil {
			return err
		}
		res = PurchaseResult{Card: card, Price: price, Money: r.Money}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("giocatore acquistato", "user_id", userID, "card_id", res.Card.ID, "rarity", res.Card.Rarity)
	return &res, nil
}

// ToggleActive mette o toglie un giocatore dalla formazione.
func (s *Service) ToggleActive(ctx context.Context, userID string, cardID int) (*LineupResult, error) {
	return s.changeLineup(ctx, userID, func(r *roster.Roster) error {
		return r.ToggleActive(cardID, s.rules.MinActive)
	})
}

// SetLineup sostituisce l'intera formazione.
func (s *Service) SetLineup(ctx context.Context, userID string, cardIDs []int) (*LineupResult, error) {
	return s.changeLineup(ctx, userID, func(r *roster.Roster) error {
		if len(cardIDs) < s.rules.MinActive {
			return fmt.Errorf("%w: need at least %d active players", roster.ErrInvalidLineup, s.rules.MinActive)
		}
		return r.SetActive(cardIDs)
	})
}

func (s *Service) changeLineup(ctx context.Context, userID string, apply func(*roster.Roster) error) (*LineupResult, error) {
	var res LineupResult
	err := s.mutate(ctx, userID, func(r *roster.Roster, _ time.Time) error {
		before := roster.TeamPower(r)
		if err := apply(r); err != nil {
			return err
		}
		res = LineupResult{
			Active: r.Active(),
			Change: roster.ComparePower(before, roster.TeamPower(r)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ReleasePlayer svincola una carta dalla rosa (e dalla formazione).
func (s *Service) ReleasePlayer(ctx context.Context, userID string, cardID int) (*View, error) {
	var view *View
	err := s.mutate(ctx, userID, func(r *roster.Roster, _ time.Time) error {
		if !r.RemoveCard(cardID) {
			return roster.Validation(fmt.Sprintf("card %d is not in the squad", cardID))
		}
		view = NewView(userID, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// PlayMatch gioca una partita alla difficolta' scelta e salva premi e registro.
func (s *Service) PlayMatch(ctx context.Context, userID string, d match.Difficulty) (*match.Result, error) {
	var res match.Result
	err := s.mutate(ctx, userID, func(r *roster.Roster, now time.Time) error {
		var err error
		res, err = s.sim.Simulate(r, d, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("partita giocata",
		"user_id", userID,
		"match_id", res.MatchID,
		"difficulty", res.Difficulty,
		"outcome", res.Outcome,
		"money", res.MoneyDelta,
		"points", res.PointsDelta,
	)
	return &res, nil
}

// Support esegue una delle azioni di supporto; ogni successo consuma il cooldown.
func (s *Service) Support(ctx context.Context, userID string, action SupportAction, strategy string) (*SupportResult, error) {
	// 1) Richiesta valida prima di guardare il cooldown.
	name := strings.ToLower(strings.TrimSpace(strategy))
	switch action {
	case SupportMoney, SupportPlayer:
	case SupportStrategy:
		if !s.rules.ValidStrategy(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSupport, action)
	}

	// 2) Cooldown e azione sotto lock.
	var res SupportResult
	err := s.mutate(ctx, userID, func(r *roster.Roster, now time.Time) error {
		if err := r.Check(roster.ActionSupport, s.rules.Limits, now); err != nil {
			return err
		}
		res = SupportResult{Action: action}
		switch action {
		case SupportMoney:
			r.Credit(s.rules.SupportMoney, 0)
		case SupportPlayer:
			card, err := s.grantCard(r)
			if err != nil {
				return err
			}
			res.Card = &card
		case SupportStrategy:
			r.Strategy = name
			res.Strategy = name
		}
		res.Money = r.Money
		return r.RecordPerformed(roster.ActionSupport, s.rules.Limits, now)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ClaimBonus consuma uno dei gettoni monouso della rosa.
func (s *Service) ClaimBonus(ctx context.Context, userID string, bonus roster.Action) (*BonusResult, error) {
	if !slices.Contains(roster.BonusActions, bonus) {
		return nil, fmt.Errorf("%w: %q", roster.ErrUnknownAction, bonus)
	}
	var res BonusResult
	err := s.mutate(ctx, userID, func(r *roster.Roster, now time.Time) error {
		if err := r.Check(bonus, s.rules.Limits, now); err != nil {
			return err
		}
		res = BonusResult{Bonus: bonus}
		switch bonus {
		case roster.BonusPlayer:
			card, err := s.grantCard(r)
			if err != nil {
				return err
			}
			res.Card = &card
		case roster.BonusMatch:
			r.ResetTimer(roster.ActionMatch)
		case roster.BonusNoMoney:
			if r.Money >= s.rules.PurchasePrice {
				return ErrRescueNotNeeded
			}
			r.Credit(s.rules.RescueMoney, 0)
		}
		res.Money = r.Money
		return r.RecordPerformed(bonus, s.rules.Limits, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bonus usato", "user_id", userID, "bonus", bonus)
	return &res, nil
}

// Leaderboard ritorna le prime limit squadre (limit <= 0: tutte).
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ranked := roster.Rank(entries)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]LeaderboardEntry, 0, len(ranked))
	for i, e := range ranked {
		out = append(out, LeaderboardEntry{
			Position: i + 1,
			UserID:   e.UserID,
			TeamName: e.Roster.TeamName,
			Points:   e.Roster.Points,
			Rating:   roster.TeamRating(roster.TeamPower(e.Roster)),
		})
	}
	return out, nil
}

// mutate carica la rosa sotto lock, applica fn e salva solo se fn non fallisce.
func (s *Service) mutate(ctx context.Context, userID string, fn func(r *roster.Roster, now time.Time) error) error {
	release, err := s.lockUser(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	r, err := s.repo.Load(ctx, userID)
	if err != nil {
		return err
	}
	if err := fn(r, s.now()); err != nil {
		return err
	}
	return s.repo.Save(ctx, userID, r)
}

func (s *Service) lockUser(ctx context.Context, userID string) (func(), error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}
	key := lock.RosterKey(userID)
	token, ok, err := s.locks.Acquire(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("acquire roster lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		// Il rilascio non deve saltare se la richiesta e' stata cancellata.
		if err := s.locks.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("rilascio lock fallito", "user_id", userID, "error", err)
		}
	}, nil
}

// grantCard estrae e aggiunge una carta gratuita, controllando prima la capienza.
func (s *Service) grantCard(r *roster.Roster) (catalog.Card, error) {
	if len(r.Squad) >= roster.MaxSquad {
		return catalog.Card{}, roster.ErrRosterFull
	}
	card, err := s.draw(r)
	if err != nil {
		return catalog.Card{}, err
	}
	if err := r.AddCard(card); err != nil {
		return catalog.Card{}, err
	}
	return card, nil
}

func (s *Service) draw(r *roster.Roster) (catalog.Card, error) {
	card, err := s.catalog.DrawExcluding(s.rng, s.rules.Weights, r.Has)
	if err != nil {
		return catalog.Card{}, fmt.Errorf("draw card: %w", err)
	}
	return card, nil
}

func (s *Service) starters() ([]catalog.Card, error) {
	policy := s.rules.Starter
	if policy.Kind == rules.StarterNamed {
		cards := make([]catalog.Card, 0, len(policy.CardIDs))
		for _, id := range policy.CardIDs {
			card, ok := s.catalog.Card(id)
			if !ok {
				return nil, fmt.Errorf("%w: starter card %d not in catalog", catalog.ErrInvalidCatalog, id)
			}
			cards = append(cards, card)
		}
		return cards, nil
	}

	var cards []catalog.Card
	for _, rarity := range catalog.Rarities {
		n := policy.Counts[rarity]
		if n == 0 {
			continue
		}
		pool := s.catalog.ByRarity(rarity)
		if len(pool) < n {
			return nil, fmt.Errorf("%w: %d %s starters requested, %d available", catalog.ErrEmptyPool, n, rarity, len(pool))
		}
		s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		cards = append(cards, pool[:n]...)
	}
	return cards, nil
}
