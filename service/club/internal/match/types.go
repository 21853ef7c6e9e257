package match

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"Futbotchi/service/club/internal/roster"
)

// Difficulty e' il livello dell'avversario sintetico.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties in ordine crescente.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ErrInvalidDifficulty e' un errore di validazione.
var ErrInvalidDifficulty = roster.Validation("unknown match difficulty")

// ErrNoActiveLineup blocca la partita senza titolari.
var ErrNoActiveLineup = roster.Validation("select at least one active player before playing")

// ParseDifficulty normalizza e valida il livello.
func ParseDifficulty(value string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(value)))
	switch d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", ErrInvalidDifficulty
}

// Label ritorna il nome leggibile.
func (d Difficulty) Label() string {
	return cases.Title(language.English).String(string(d))
}

// Mode decide come si determina l'esito.
type Mode string

const (
	// ModeProbability: esito da Bernoulli(winChance); la cronaca non riporta il punteggio.
	ModeProbability Mode = "probability"
	// ModeGoals: vince chi segna di piu' tra i gol della cronaca e quelli estratti per l'avversario.
	ModeGoals Mode = "goals"
)

// Outcome e' l'esito della partita.
type Outcome string

const (
	Win  Outcome = "win"
	Loss Outcome = "loss"
)

// Opponent e' un avversario sintetico, non persistito.
type Opponent struct {
	Name     string  `json:"name"`
	Strength float64 `json:"strength"`
}

// Tier e' la tabella premi e soglie di una difficolta'.
type Tier struct {
	RequiredPower float64
	MoneyReward   int64
	PointsReward  int64
	BaseWinChance float64
	Opponents     []Opponent
}

// Config raccoglie i parametri del simulatore.
type Config struct {
	Mode Mode
	// MaxWinChance e' il tetto alla probabilita' di vittoria.
	MaxWinChance float64
	// PositiveEventChance e' la probabilita' che un titolare abbia un evento positivo.
	PositiveEventChance float64
	MaxEventPlayers     int
	// Bonus forza: se basePower > RequiredPower+BonusMargin si aggiunge round((basePower-RequiredPower)*BonusFactor).
	BonusMargin     float64
	BonusFactor     float64
	HardBonusPoints int64
	// LossDivisor divide il premio in denaro per la consolazione in caso di sconfitta.
	LossDivisor int64
	// Solo ModeGoals: tiri dell'avversario, ciascuno a segno con probabilita' Strength*OpponentGoalFactor.
	OpponentShots      int
	OpponentGoalFactor float64
	Tiers              map[Difficulty]Tier
}

// DefaultConfig ritorna la configurazione canonica.
func DefaultConfig() Config {
	return Config{
		Mode:                ModeProbability,
		MaxWinChance:        0.9,
		PositiveEventChance: 0.7,
		MaxEventPlayers:     3,
		BonusMargin:         20,
		BonusFactor:         2,
		HardBonusPoints:     1,
		LossDivisor:         4,
		OpponentShots:       3,
		OpponentGoalFactor:  0.5,
		Tiers: map[Difficulty]Tier{
			Easy: {
				RequiredPower: 150, MoneyReward: 100, PointsReward: 1, BaseWinChance: 0.55,
				Opponents: []Opponent{
					{Name: "Dinamo Dacha", Strength: 0.15},
					{Name: "Spartak Courtyard", Strength: 0.20},
					{Name: "FC Garage", Strength: 0.25},
				},
			},
			Medium: {
				RequiredPower: 210, MoneyReward: 300, PointsReward: 3, BaseWinChance: 0.40,
				Opponents: []Opponent{
					{Name: "Torpedo Riverside", Strength: 0.45},
					{Name: "Lokomotiv Depot", Strength: 0.50},
					{Name: "Atletico Suburbia", Strength: 0.55},
				},
			},
			Hard: {
				RequiredPower: 270, MoneyReward: 500, PointsReward: 5, BaseWinChance: 0.25,
				Opponents: []Opponent{
					{Name: "Real Capital", Strength: 0.75},
					{Name: "Inter Galaxy", Strength: 0.85},
					{Name: "Bayern Alpine", Strength: 0.90},
				},
			},
		},
	}
}

// Validate controlla probabilita', premi e livelli.
func (c Config) Validate() error {
	if c.Mode != ModeProbability && c.Mode != ModeGoals {
		return fmt.Errorf("unknown match mode %q", c.Mode)
	}
	if c.MaxWinChance < 0 || c.MaxWinChance > 1 {
		return errors.New("max_win_chance must be in [0,1]")
	}
	if c.PositiveEventChance < 0 || c.PositiveEventChance > 1 {
		return errors.New("positive_event_chance must be in [0,1]")
	}
	if c.MaxEventPlayers < 0 || c.MaxEventPlayers > roster.MaxActive {
		return fmt.Errorf("max_event_players must be in [0,%d]", roster.MaxActive)
	}
	if c.LossDivisor <= 0 {
		return errors.New("loss_divisor must be positive")
	}
	if c.OpponentShots < 0 || c.OpponentGoalFactor < 0 || c.OpponentGoalFactor > 1 {
		return errors.New("invalid opponent goal settings")
	}
	for _, d := range Difficulties {
		tier, ok := c.Tiers[d]
		if !ok {
			return fmt.Errorf("missing tier %s", d)
		}
		if tier.BaseWinChance < 0 || tier.BaseWinChance > 1 {
			return fmt.Errorf("tier %s: base_win_chance must be in [0,1]", d)
		}
		if tier.MoneyReward < 0 || tier.PointsReward < 0 {
			return fmt.Errorf("tier %s: rewards cannot be negative", d)
		}
		if len(tier.Opponents) == 0 {
			return fmt.Errorf("tier %s: no opponents", d)
		}
		for _, o := range tier.Opponents {
			if strings.TrimSpace(o.Name) == "" || o.Strength < 0 || o.Strength > 1 {
				return fmt.Errorf("tier %s: invalid opponent %+v", d, o)
			}
		}
	}
	return nil
}

// Event e' una riga di cronaca legata a un titolare.
type Event struct {
	PlayerID int    `json:"player_id"`
	Player   string `json:"player"`
	Text     string `json:"text"`
	Positive bool   `json:"positive"`
	Goal     bool   `json:"goal"`
}

// Result e' l'esito completo di una partita simulata.
type Result struct {
	MatchID       string     `json:"match_id"`
	Difficulty    Difficulty `json:"difficulty"`
	Opponent      Opponent   `json:"opponent"`
	Events        []Event    `json:"events"`
	Log           []string   `json:"log"`
	Outcome       Outcome    `json:"outcome"`
	Goals         int        `json:"goals"`
	OpponentGoals int        `json:"opponent_goals"`
	BasePower     float64    `json:"base_power"`
	WinChance     float64    `json:"win_chance"`
	StrengthBonus int64      `json:"strength_bonus"`
	MoneyDelta    int64      `json:"money_delta"`
	PointsDelta   int64      `json:"points_delta"`
}
