package rules

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/match"
	"Futbotchi/service/club/internal/ratelimit"
	"Futbotchi/service/club/internal/roster"
)

// Duration si legge da stringa ("10m", "12h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// fileRules e' il formato TOML; i campi assenti restano ai default.
type fileRules struct {
	StartingMoney *int64               `toml:"starting_money"`
	PurchasePrice *int64               `toml:"purchase_price"`
	MinActive     *int                 `toml:"min_active"`
	RarityWeights map[string]float64   `toml:"rarity_weights"`
	Limits        map[string]fileLimit `toml:"limits"`
	Match         *fileMatch           `toml:"match"`
	Support       *fileSupport         `toml:"support"`
	Bonus         *fileBonus           `toml:"bonus"`
	Starter       *fileStarter         `toml:"starter"`
}

type fileLimit struct {
	Kind     string   `toml:"kind"`
	Window   Duration `toml:"window"`
	Max      int      `toml:"max"`
	Cooldown Duration `toml:"cooldown"`
}

type fileMatch struct {
	Mode                *string             `toml:"mode"`
	MaxWinChance        *float64            `toml:"max_win_chance"`
	PositiveEventChance *float64            `toml:"positive_event_chance"`
	MaxEventPlayers     *int                `toml:"max_event_players"`
	BonusMargin         *float64            `toml:"bonus_margin"`
	BonusFactor         *float64            `toml:"bonus_factor"`
	HardBonusPoints     *int64              `toml:"hard_bonus_points"`
	LossDivisor         *int64              `toml:"loss_divisor"`
	OpponentShots       *int                `toml:"opponent_shots"`
	OpponentGoalFactor  *float64            `toml:"opponent_goal_factor"`
	Tiers               map[string]fileTier `toml:"tiers"`
}

type fileTier struct {
	RequiredPower *float64       `toml:"required_power"`
	MoneyReward   *int64         `toml:"money_reward"`
	PointsReward  *int64         `toml:"points_reward"`
	BaseWinChance *float64       `toml:"base_win_chance"`
	Opponents     []fileOpponent `toml:"opponents"`
}

type fileOpponent struct {
	Name     string  `toml:"name"`
	Strength float64 `toml:"strength"`
}

type fileSupport struct {
	Money      *int64   `toml:"money"`
	Strategies []string `toml:"strategies"`
}

type fileBonus struct {
	RescueMoney *int64 `toml:"rescue_money"`
}

type fileStarter struct {
	Policy  *string        `toml:"policy"`
	CardIDs []int          `toml:"card_ids"`
	Counts  map[string]int `toml:"counts"`
}

// LoadFile legge le regole da file TOML; path vuoto ritorna i default.
func LoadFile(path string) (Rules, error) {
	return LoadFileOver(path, Default())
}

// LoadFileOver legge il file TOML sopra base; path vuoto ritorna base validata.
func LoadFileOver(path string, base Rules) (Rules, error) {
	if path == "" {
		if err := base.Validate(); err != nil {
			return Rules{}, fmt.Errorf("invalid rules: %w", err)
		}
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseOver(data, base)
}

// Parse applica un documento TOML sopra i default e valida il risultato.
func Parse(data []byte) (Rules, error) {
	return ParseOver(data, Default())
}

// ParseOver applica un documento TOML sopra base; le voci assenti restano quelle di base.
func ParseOver(data []byte, base Rules) (Rules, error) {
	var f fileRules
	if err := toml.Unmarshal(data, &f); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	r := base.clone()
	if err := f.apply(&r); err != nil {
		return Rules{}, err
	}
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return r, nil
}

func (f fileRules) apply(r *Rules) error {
	setIf(&r.StartingMoney, f.StartingMoney)
	setIf(&r.PurchasePrice, f.PurchasePrice)
	setIf(&r.MinActive, f.MinActive)

	if len(f.RarityWeights) > 0 {
		w := make(catalog.Weights, len(f.RarityWeights))
		for name, weight := range f.RarityWeights {
			rarity, err := catalog.ParseRarity(name)
			if err != nil {
				return fmt.Errorf("rarity_weights: %w", err)
			}
			w[rarity] = weight
		}
		r.Weights = w
	}

	for name, l := range f.Limits {
		action := roster.Action(name)
		switch ratelimit.Kind(l.Kind) {
		case ratelimit.Window:
			r.Limits[action] = ratelimit.SlidingWindow(l.Window.Duration, l.Max)
		case ratelimit.Cooldown:
			r.Limits[action] = ratelimit.FixedCooldown(l.Cooldown.Duration)
		default:
			return fmt.Errorf("limits.%s: unknown kind %q", name, l.Kind)
		}
	}

	if m := f.Match; m != nil {
		if m.Mode != nil {
			r.Match.Mode = match.Mode(*m.Mode)
		}
		setIf(&r.Match.MaxWinChance, m.MaxWinChance)
		setIf(&r.Match.PositiveEventChance, m.PositiveEventChance)
		setIf(&r.Match.MaxEventPlayers, m.MaxEventPlayers)
		setIf(&r.Match.BonusMargin, m.BonusMargin)
		setIf(&r.Match.BonusFactor, m.BonusFactor)
		setIf(&r.Match.HardBonusPoints, m.HardBonusPoints)
		setIf(&r.Match.LossDivisor, m.LossDivisor)
		setIf(&r.Match.OpponentShots, m.OpponentShots)
		setIf(&r.Match.OpponentGoalFactor, m.OpponentGoalFactor)
		for name, ft := range m.Tiers {
			d, err := match.ParseDifficulty(name)
			if err != nil {
				return fmt.Errorf("match.tiers: %q: %w", name, err)
			}
			tier := r.Match.Tiers[d]
			setIf(&tier.RequiredPower, ft.RequiredPower)
			setIf(&tier.MoneyReward, ft.MoneyReward)
			setIf(&tier.PointsReward, ft.PointsReward)
			setIf(&tier.BaseWinChance, ft.BaseWinChance)
			if len(ft.Opponents) > 0 {
				tier.Opponents = make([]match.Opponent, 0, len(ft.Opponents))
				for _, o := range ft.Opponents {
					tier.Opponents = append(tier.Opponents, match.Opponent{Name: o.Name, Strength: o.Strength})
				}
			}
			r.Match.Tiers[d] = tier
		}
	}

	if s := f.Support; s != nil {
		setIf(&r.SupportMoney, s.Money)
		if len(s.Strategies) > 0 {
			r.Strategies = s.Strategies
		}
	}
	if b := f.Bonus; b != nil {
		setIf(&r.RescueMoney, b.RescueMoney)
	}

	if s := f.Starter; s != nil {
		if s.Policy != nil {
			r.Starter.Kind = StarterKind(*s.Policy)
		}
		if len(s.CardIDs) > 0 {
			r.Starter.CardIDs = s.CardIDs
		}
		if len(s.Counts) > 0 {
			counts := make(map[catalog.Rarity]int, len(s.Counts))
			for name, n := range s.Counts {
				rarity, err := catalog.ParseRarity(name)
				if err != nil {
					return fmt.Errorf("starter.counts: %w", err)
				}
				counts[rarity] = n
			}
			r.Starter.Counts = counts
		}
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
