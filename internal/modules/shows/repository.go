// Package shows provides persistence for tour shows.
// Shows are the primary entity of the dashboard: every booked, pending or
// offered performance with its date, location, fee and status.
package shows

import (
	"database/sql"
	"fmt"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles show database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new show repository and ensures the schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repository", "shows").Logger(),
	}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shows (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		fee REAL NOT NULL DEFAULT 0,
		fee_currency TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_shows_status ON shows(status);
	CREATE INDEX IF NOT EXISTS idx_shows_date ON shows(date);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize shows schema: %w", err)
	}
	return nil
}

// Upsert inserts or updates a show.
func (r *Repository) Upsert(show domain.Show) error {
	_, err := r.db.Exec(`
		INSERT INTO shows (id, date, city, country, fee, fee_currency, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, strftime('%s','now'))
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			city = excluded.city,
			country = excluded.country,
			fee = excluded.fee,
			fee_currency = excluded.fee_currency,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, show.ID, show.Date, show.City, show.Country, show.Fee, show.FeeCurrency, string(show.Status))
	if err != nil {
		return fmt.Errorf("failed to upsert show %s: %w", show.ID, err)
	}
	return nil
}

// GetByID retrieves a show by id. Returns nil if not found (not an error).
func (r *Repository) GetByID(id string) (*domain.Show, error) {
	row := r.db.QueryRow(`
		SELECT id, date, city, country, fee, fee_currency, status
		FROM shows WHERE id = ?
	`, id)

	show, err := scanShow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get show %s: %w", id, err)
	}
	return &show, nil
}

// List returns all shows ordered by date.
func (r *Repository) List() ([]domain.Show, error) {
	rows, err := r.db.Query(`
		SELECT id, date, city, country, fee, fee_currency, status
		FROM shows ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	defer rows.Close()

	return collectShows(rows)
}

// ListByStatus returns all shows with the given status ordered by date.
func (r *Repository) ListByStatus(status domain.ShowStatus) ([]domain.Show, error) {
	rows, err := r.db.Query(`
		SELECT id, date, city, country, fee, fee_currency, status
		FROM shows WHERE status = ? ORDER BY date ASC, id ASC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list shows by status %s: %w", status, err)
	}
	defer rows.Close()

	return collectShows(rows)
}

// Delete removes a show. Deleting a missing id is not an error.
func (r *Repository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM shows WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete show %s: %w", id, err)
	}
	return nil
}

// Count returns the total number of shows.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM shows").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count shows: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShow(row rowScanner) (domain.Show, error) {
	var show domain.Show
	var status string
	err := row.Scan(&show.ID, &show.Date, &show.City, &show.Country, &show.Fee, &show.FeeCurrency, &status)
	if err != nil {
		return domain.Show{}, err
	}
	show.Status = domain.ShowStatus(status)
	return show, nil
}

func collectShows(rows *sql.Rows) ([]domain.Show, error) {
	shows := []domain.Show{}
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan show row: %w", err)
		}
		shows = append(shows, show)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate show rows: %w", err)
	}
	return shows, nil
}
