package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"Futbotchi/service/club/internal/app"
	"Futbotchi/service/club/internal/club"
	"Futbotchi/service/club/internal/config"
	"Futbotchi/service/club/internal/match"
)

// Esegue una sessione scriptata contro lo storage configurato e stampa il risultato.
func main() {
	logger := app.NewLogger()

	userID := flag.String("user", "", "user id (vuoto = nuovo id casuale)")
	team := flag.String("team", "Check FC", "nome squadra se va creata")
	difficulty := flag.String("difficulty", "easy", "livello della partita")
	timeout := flag.Duration("timeout", 10*time.Second, "timeout complessivo")
	flag.Parse()

	// 1) Carica env e config.
	app.LoadDotenv(logger, "service/club/.env")
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config non valida", "error", err)
		os.Exit(1)
	}

	// 2) Costruisce il servizio di dominio.
	components, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("avvio fallito", "error", err)
		os.Exit(1)
	}
	defer components.Close()

	if *userID == "" {
		*userID = uuid.NewString()
	}
	d, err := match.ParseDifficulty(*difficulty)
	if err != nil {
		logger.Error("livello non valido", "difficulty", *difficulty)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, components.Service, *userID, *team, d); err != nil {
		logger.Error("check fallito", "user_id", *userID, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *club.Service, userID, team string, d match.Difficulty) error {
	// 3) Rosa esistente o nuova.
	view, err := svc.GetRoster(ctx, userID)
	if errors.Is(err, club.ErrRosterNotFound) {
		view, err = svc.Start(ctx, userID, team)
	}
	if err != nil {
		return fmt.Errorf("roster: %w", err)
	}
	printView(view)

	// 4) Acquisto, partita, classifica; i limiti di gioco non interrompono il check.
	if res, err := svc.BuyPlayer(ctx, userID); err != nil {
		fmt.Printf("buy skipped: %v\n", err)
	} else {
		fmt.Printf("bought id=%d name=%q rarity=%s money=%d\n", res.Card.ID, res.Card.Name, res.Card.Rarity, res.Money)
	}

	if res, err := svc.PlayMatch(ctx, userID, d); err != nil {
		fmt.Printf("match skipped: %v\n", err)
	} else {
		for _, line := range res.Log {
			fmt.Println("  " + line)
		}
		fmt.Printf("match %s vs %s: %s money%+d points%+d\n", res.Difficulty.Label(), res.Opponent.Name, res.Outcome, res.MoneyDelta, res.PointsDelta)
	}

	top, err := svc.Leaderboard(ctx, 10)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	for _, e := range top {
		fmt.Printf("#%d %s (%s) points=%d rating=%.1f\n", e.Position, e.TeamName, e.UserID, e.Points, e.Rating)
	}
	return nil
}

func printView(v *club.View) {
	fmt.Printf("team=%q user=%s money=%d points=%d rating=%.1f\n", v.TeamName, v.UserID, v.Money, v.Points, v.Rating)
	for _, c := range v.Active {
		fmt.Printf("  active id=%d %s [%s]\n", c.ID, c.Name, c.Rarity.Label())
	}
	for _, c := range v.Bench {
		fmt.Printf("  bench  id=%d %s [%s]\n", c.ID, c.Name, c.Rarity.Label())
	}
	if len(v.Bonuses) > 0 {
		fmt.Printf("  bonus disponibili: %v\n", v.Bonuses)
	}
}
