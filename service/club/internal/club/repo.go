package club

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Futbotchi/service/club/internal/db"
	"Futbotchi/service/club/internal/roster"
)

// Accesso dati delle rose su SQL (persistence layer).
// Una riga per utente: colonne per nome e punti, la rosa completa serializzata in data.

// Repo implementa Repository su Postgres o sqlite.
type Repo struct {
	db      *sql.DB
	dialect db.Dialect
}

// NewRepo collega il repository a una connessione SQL.
func NewRepo(conn *sql.DB, dialect db.Dialect) *Repo {
	return &Repo{db: conn, dialect: dialect}
}

// Load carica la rosa dell'utente.
func (r *Repo) Load(ctx context.Context, userID string) (*roster.Roster, error) {
	const query = `
SELECT data
FROM rosters
WHERE user_id = $1`

	var data string
	err := r.db.QueryRowContext(ctx, r.rebind(query), userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRosterNotFound
	}
	if err != nil {
		slog.Error("errore lettura rosa", "error", err, "user_id", userID)
		return nil, err
	}
	return decodeRoster(userID, data)
}

// Save inserisce o aggiorna la rosa dell'utente.
func (r *Repo) Save(ctx context.Context, userID string, ros *roster.Roster) error {
	const query = `
INSERT INTO rosters (user_id, team_name, points, data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE
SET team_name = excluded.team_name,
    points = excluded.points,
    data = excluded.data,
    updated_at = excluded.updated_at`

	data, err := json.Marshal(ros)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	now := time.Now().UTC()
	created := ros.CreatedAt.UTC()
	if created.IsZero() {
		created = now
	}
	_, err = r.db.ExecContext(ctx, r.rebind(query), userID, ros.TeamName, ros.Points, string(data), created, now)
	if err != nil {
		slog.Error("errore salvataggio rosa", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// ListAll ritorna tutte le rose in ordine di user_id.
func (r *Repo) ListAll(ctx context.Context) ([]roster.Entry, error) {
	const query = `
SELECT user_id, data
FROM rosters
ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("errore lettura classifica", "error", err)
		return nil, err
	}
	defer rows.Close()

	var entries []roster.Entry
	for rows.Next() {
		var userID, data string
		if err := rows.Scan(&userID, &data); err != nil {
			return nil, err
		}
		ros, err := decodeRoster(userID, data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, roster.Entry{UserID: userID, Roster: ros})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// rebind adatta i placeholder $N alla forma numerata ?N di sqlite.
func (r *Repo) rebind(query string) string {
	if r.dialect != db.SQLite {
		return query
	}
	return strings.ReplaceAll(query, "$", "?")
}

func decodeRoster(userID, data string) (*roster.Roster, error) {
	var ros roster.Roster
	if err := json.Unmarshal([]byte(data), &ros); err != nil {
		slog.Error("rosa non decodificabile", "error", err, "user_id", userID)
		return nil, fmt.Errorf("decode roster %s: %w", userID, err)
	}
	return &ros, nil
}
