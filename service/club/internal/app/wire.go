package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"Futbotchi/service/club/internal/catalog"
	"Futbotchi/service/club/internal/club"
	"Futbotchi/service/club/internal/config"
	"Futbotchi/service/club/internal/db"
	"Futbotchi/service/club/internal/lock"
	"Futbotchi/service/club/internal/random"
	"Futbotchi/service/club/internal/rules"
)

// Components raccoglie le dipendenze costruite da Build e le risorse da chiudere.
type Components struct {
	Service *club.Service
	Repo    club.Repository
	Catalog *catalog.Catalog
	Rules   rules.Rules

	closers []func() error
}

// Close rilascia le risorse in ordine inverso di apertura.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// Build costruisce il servizio di dominio a partire dalla config.
func Build(cfg config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{}

	// 1) Regole e catalogo.
	cat, rl, err := LoadGame(cfg)
	if err != nil {
		return nil, err
	}
	c.Catalog, c.Rules = cat, rl

	// 2) Storage.
	repo, closeRepo, err := OpenRepository(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Repo = repo
	c.closers = append(c.closers, closeRepo)

	// 3) Lock per utente.
	locks, closeLocks, err := NewLockManager(cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.closers = append(c.closers, closeLocks)

	// 4) Servizio.
	rng, err := random.NewFromEntropy()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	svc, err := club.NewService(repo, locks, cat, rl, rng, club.WithLogger(logger))
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Service = svc
	return c, nil
}

// LoadGame legge catalogo (CATALOG_PATH o quello incorporato) e regole (RULES_PATH o default).
func LoadGame(cfg config.Config) (*catalog.Catalog, rules.Rules, error) {
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, rules.Rules{}, fmt.Errorf("load catalog: %w", err)
		}
		cat = loaded
	}
	// rarity_weights del file regole ha la precedenza sulle rarity_chances del catalogo.
	base := rules.Default()
	base.Weights = cat.Weights()
	rl, err := rules.LoadFileOver(cfg.RulesPath, base)
	if err != nil {
		return nil, rules.Rules{}, fmt.Errorf("load rules: %w", err)
	}
	return cat, rl, nil
}

// OpenRepository apre il repository per DB_DRIVER e applica le migrazioni.
func OpenRepository(cfg config.Config, logger *slog.Logger) (club.Repository, func() error, error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("storage in memoria: i dati si perdono al riavvio")
		return club.NewMemoryRepo(), func() error { return nil }, nil
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(conn, cfg.DBDriver); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	logger.Info("database pronto", "driver", cfg.DBDriver)
	return club.NewRepo(conn, db.Dialect(cfg.DBDriver)), conn.Close, nil
}

// NewLockManager usa Redis se REDIS_ADDR e' impostato, altrimenti un lock in-process.
func NewLockManager(cfg config.Config, logger *slog.Logger) (lock.Manager, func() error, error) {
	if cfg.RedisAddr == "" {
		logger.Info("lock in-process (REDIS_ADDR non impostato)")
		return lock.NewLocalLock(cfg.LockRetries, cfg.LockBackoff), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("lock su redis", "addr", cfg.RedisAddr, "ttl", cfg.LockTTL)
	return lock.NewRedisLock(client, cfg.LockTTL, cfg.LockRetries, cfg.LockBackoff), client.Close, nil
}
