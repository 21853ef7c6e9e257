package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"Futbotchi/service/club/internal/app"
	"Futbotchi/service/club/internal/config"
)

func main() {
	logger := app.NewLogger()

	// 1) Carica env dedicato al club-svc.
	app.LoadDotenv(logger, "service/club/.env")

	// 2) Config da env.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config non valida", "error", err)
		os.Exit(1)
	}

	// 3) Storage, lock, regole e servizio.
	components, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("avvio fallito", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logger.Warn("chiusura risorse", "error", err)
		}
	}()

	// 4) Serve fino a SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.NewServer(cfg, components.Service, logger).Run(ctx); err != nil {
		logger.Error("server terminato con errore", "error", err)
		os.Exit(1)
	}
	logger.Info("club-svc fermato")
}
