// Package travel provides persistence for travel itinerary items
// (flights, trains, hotel stays) attached to the tour calendar.
package travel

import (
	"database/sql"
	"fmt"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles travel item database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new travel repository and ensures the schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repository", "travel").Logger(),
	}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS travel_items (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_travel_date ON travel_items(date);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize travel schema: %w", err)
	}
	return nil
}

// Upsert inserts or updates a travel item.
func (r *Repository) Upsert(item domain.TravelItem) error {
	_, err := r.db.Exec(`
		INSERT INTO travel_items (id, date, title, updated_at)
		VALUES (?, ?, ?, strftime('%s','now'))
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			title = excluded.title,
			updated_at = excluded.updated_at
	`, item.ID, item.Date, item.Title)
	if err != nil {
		return fmt.Errorf("failed to upsert travel item %s: %w", item.ID, err)
	}
	return nil
}

// List returns all travel items ordered by date.
func (r *Repository) List() ([]domain.TravelItem, error) {
	rows, err := r.db.Query(`
		SELECT id, date, title FROM travel_items ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list travel items: %w", err)
	}
	defer rows.Close()

	items := []domain.TravelItem{}
	for rows.Next() {
		var item domain.TravelItem
		if err := rows.Scan(&item.ID, &item.Date, &item.Title); err != nil {
			return nil, fmt.Errorf("failed to scan travel row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate travel rows: %w", err)
	}
	return items, nil
}

// Delete removes a travel item. Deleting a missing id is not an error.
func (r *Repository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM travel_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete travel item %s: %w", id, err)
	}
	return nil
}
