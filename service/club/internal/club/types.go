package club

import (
	"context"

	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/match"
	"Futbotchi/service/club/internal/roster"
)

// Contratti e modelli del dominio "club".
// Espongono cosa serve al resto dell'app senza dettagli di DB/gRPC.

// Repository persiste una rosa per utente. Load ritorna ErrRosterNotFound se manca.
type Repository interface {
	Load(ctx context.Context, userID string) (*roster.Roster, error)
	Save(ctx context.Context, userID string, r *roster.Roster) error
	ListAll(ctx context.Context) ([]roster.Entry, error)
}

// Game e' la superficie del servizio usata dai layer di trasporto.
type Game interface {
	Start(ctx context.Context, userID, teamName string) (*View, error)
	GetRoster(ctx context.Context, userID string) (*View, error)
	BuyPlayer(ctx context.Context, userID string) (*PurchaseResult, error)
	ToggleActive(ctx context.Context, userID string, cardID int) (*LineupResult, error)
	SetLineup(ctx context.Context, userID string, cardIDs []int) (*LineupResult, error)
	ReleasePlayer(ctx context.Context, userID string, cardID int) (*View, error)
	PlayMatch(ctx context.Context, userID string, d match.Difficulty) (*match.Result, error)
	Support(ctx context.Context, userID string, action SupportAction, strategy string) (*SupportResult, error)
	ClaimBonus(ctx context.Context, userID string, bonus roster.Action) (*BonusResult, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// View e' la fotografia di una rosa pronta per la presentazione.
type View struct {
	UserID   string          `json:"user_id"`
	TeamName string          `json:"team_name"`
	Money    int64           `json:"money"`
	Points   int64           `json:"points"`
	Strategy string          `json:"strategy,omitempty"`
	Active   []catalog.Card  `json:"active"`
	Bench    []catalog.Card  `json:"bench"`
	Power    catalog.Stats   `json:"power"`
	Rating   float64         `json:"rating"`
	Bonuses  []roster.Action `json:"bonuses"`
}

// NewView costruisce la vista di una rosa.
func NewView(userID string, r *roster.Roster) *View {
	power := roster.TeamPower(r)
	return &View{
		UserID:   userID,
		TeamName: r.TeamName,
		Money:    r.Money,
		Points:   r.Points,
		Strategy: r.Strategy,
		Active:   r.Active(),
		Bench:    r.Bench(),
		Power:    power,
		Rating:   roster.TeamRating(power),
		Bonuses:  append([]roster.Action(nil), r.Bonuses...),
	}
}

// PurchaseResult e' l'esito di un acquisto.
type PurchaseResult struct {
	Card  catalog.Card `json:"card"`
	Price int64        `json:"price"`
	Money int64        `json:"money"`
}

// LineupResult riporta la nuova formazione e la variazione di forza.
type LineupResult struct {
	Active []catalog.Card     `json:"active"`
	Change roster.PowerChange `json:"change"`
}

// SupportAction e' una delle azioni di supporto disponibili con il cooldown.
type SupportAction string

const (
	SupportMoney    SupportAction = "money"
	SupportPlayer   SupportAction = "player"
	SupportStrategy SupportAction = "strategy"
)

// SupportResult e' l'esito di un'azione di supporto.
type SupportResult struct {
	Action   SupportAction `json:"action"`
	Money    int64         `json:"money"`
	Card     *catalog.Card `json:"card,omitempty"`
	Strategy string        `json:"strategy,omitempty"`
}

// BonusResult e' l'esito di un bonus monouso.
type BonusResult struct {
	Bonus roster.Action `json:"bonus"`
	Card  *catalog.Card `json:"card,omitempty"`
	Money int64         `json:"money"`
}

// LeaderboardEntry e' una riga della classifica.
type LeaderboardEntry struct {
	Position int     `json:"position"`
	UserID   string  `json:"user_id"`
	TeamName string  `json:"team_name"`
	Points   int64   `json:"points"`
	Rating   float64 `json:"rating"`
}
