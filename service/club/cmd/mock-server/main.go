package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"Futbotchi/service/club/internal/app"
	"Futbotchi/service/club/internal/club"
	"Futbotchi/service/club/internal/config"
)

// Server locale con storage in memoria e una squadra demo, utile per provare il bot.
func main() {
	logger := app.NewLogger()

	demoUser := flag.String("demo-user", "demo", "user id della squadra demo (vuoto = nessuna)")
	demoTeam := flag.String("demo-team", "Dinamo Demo", "nome della squadra demo")
	flag.Parse()

	app.LoadDotenv(logger, "service/club/.env")
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config non valida", "error", err)
		os.Exit(1)
	}
	// Mai DB o Redis nel mock.
	cfg.DBDriver = config.DriverMemory
	cfg.RedisAddr = ""

	components, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("avvio fallito", "error", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *demoUser != "" {
		seedDemo(ctx, components.Service, *demoUser, *demoTeam, logger)
	}

	if err := app.NewServer(cfg, components.Service, logger).Run(ctx); err != nil {
		logger.Error("mock terminato con errore", "error", err)
		os.Exit(1)
	}
}

// seedDemo crea la squadra demo.
func seedDemo(ctx context.Context, svc *club.Service, userID, team string, logger *slog.Logger) {
	view, err := svc.Start(ctx, userID, team)
	if err != nil {
		logger.Warn("squadra demo non creata", "error", err)
		return
	}
	logger.Info("mock squadra demo", "user_id", userID, "team", view.TeamName, "rating", view.Rating)
}
