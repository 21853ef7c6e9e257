// Package db apre la connessione SQL del servizio e applica le migrazioni.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect descrive le differenze tra i driver supportati.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ErrUnknownDriver indica un driver non supportato.
var ErrUnknownDriver = errors.New("unknown database driver")

// Open crea la connessione per il driver indicato e la valida con un ping.
func Open(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		slog.Error("DB_DSN mancante", "driver", driver)
		return nil, errors.New("DB_DSN is required")
	}

	var (
		db  *sql.DB
		err error
	)
	switch Dialect(driver) {
	case Postgres:
		db, err = sql.Open("postgres", dsn)
	case SQLite:
		db, err = openSQLite(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	// Fallisce subito se il database non è raggiungibile.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		slog.Error("ping database fallito", "driver", driver, "error", err)
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	// Un solo writer alla volta.
	db.SetMaxOpenConns(1)
	return db, nil
}
