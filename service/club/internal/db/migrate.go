package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applica tutte le migrazioni pendenti sul database gia' aperto.
func Migrate(db *sql.DB, driver string) error {
	var (
		target database.Driver
		err    error
	)
	switch Dialect(driver) {
	case Postgres:
		target, err = postgres.WithInstance(db, &postgres.Config{})
	case SQLite:
		target, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
