// Package app collega config, storage, lock e trasporti per i binari del club-svc.
package app

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// NewLogger crea il logger testuale condiviso dai binari.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// LoadDotenv carica GO_DOTENV_PATH (o fallback) sovrascrivendo l'ambiente.
// Se manca il file .env si continua con le env già presenti.
func LoadDotenv(logger *slog.Logger, fallback string) {
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = fallback
	}
	if err := godotenv.Overload(envPath); err != nil {
		logger.Warn("impossibile caricare .env", "path", envPath, "error", err)
		return
	}
	logger.Info(".env caricato", "path", envPath)
}
