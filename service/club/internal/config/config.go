package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Driver di storage supportati.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config contiene le impostazioni runtime per club-svc.
type Config struct {
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":50052"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBDSN      string `env:"DB_DSN"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/club.db"`

	RedisAddr   string        `env:"REDIS_ADDR"`
	LockTTL     time.Duration `env:"LOCK_TTL" envDefault:"5s"`
	LockRetries int           `env:"LOCK_RETRIES" envDefault:"3"`
	LockBackoff time.Duration `env:"LOCK_BACKOFF" envDefault:"100ms"`

	RulesPath   string `env:"RULES_PATH"`
	CatalogPath string `env:"CATALOG_PATH"`

	HTTPRate  float64 `env:"HTTP_RATE" envDefault:"20"`
	HTTPBurst int     `env:"HTTP_BURST" envDefault:"40"`
}

// Load legge le variabili d'ambiente con default minimi.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = cfg.dsn()
	}
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// dsn sceglie la DSN per il driver: sqlite usa il path, postgres le variabili DB_*.
func (c Config) dsn() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	return buildDSN()
}

// getEnv ritorna il fallback quando la variabile non è presente.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func buildDSN() string {
	host := os.Getenv("DB_HOST")
	port := getEnv("DB_PORT", "5432")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	sslmode := getEnv("DB_SSLMODE", "require")
	if host == "" || user == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
}
