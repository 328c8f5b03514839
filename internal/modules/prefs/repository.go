// Package prefs stores per-action user preferences: dismissed and snoozed
// hub actions, keyed by the action's stable dismiss key so a dismissal
// survives recomputation.
package prefs

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Suppression kinds.
const (
	KindDismissed = "dismissed"
	KindSnoozed   = "snoozed"
)

// Suppression is one stored dismiss/snooze entry.
type Suppression struct {
	DismissKey string     `json:"dismiss_key"`
	Kind       string     `json:"kind"`
	Until      *time.Time `json:"until,omitempty"` // nil for plain dismissals
	CreatedAt  time.Time  `json:"created_at"`
}

// Repository handles action preference database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new prefs repository and ensures the schema exists.
func NewRepository(db *sql.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db,
		log: log.With().Str("repository", "prefs").Logger(),
	}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS action_prefs (
		dismiss_key TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		until INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_action_prefs_until ON action_prefs(until);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize prefs schema: %w", err)
	}
	return nil
}

// Dismiss permanently suppresses an action key.
func (r *Repository) Dismiss(dismissKey string) error {
	_, err := r.db.Exec(`
		INSERT INTO action_prefs (dismiss_key, kind, until, created_at)
		VALUES (?, ?, NULL, ?)
		ON CONFLICT(dismiss_key) DO UPDATE SET
			kind = excluded.kind,
			until = excluded.until,
			created_at = excluded.created_at
	`, dismissKey, KindDismissed, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to dismiss %s: %w", dismissKey, err)
	}
	return nil
}

// Snooze suppresses an action key until the given time.
func (r *Repository) Snooze(dismissKey string, until time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO action_prefs (dismiss_key, kind, until, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(dismiss_key) DO UPDATE SET
			kind = excluded.kind,
			until = excluded.until,
			created_at = excluded.created_at
	`, dismissKey, KindSnoozed, until.Unix(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to snooze %s: %w", dismissKey, err)
	}
	return nil
}

// Clear removes a suppression. Clearing a missing key is not an error.
func (r *Repository) Clear(dismissKey string) error {
	if _, err := r.db.Exec("DELETE FROM action_prefs WHERE dismiss_key = ?", dismissKey); err != nil {
		return fmt.Errorf("failed to clear pref %s: %w", dismissKey, err)
	}
	return nil
}

// ActiveKeys returns the set of keys suppressed at the given instant:
// every dismissal plus snoozes whose until is still in the future.
func (r *Repository) ActiveKeys(now time.Time) (map[string]bool, error) {
	rows, err := r.db.Query(`
		SELECT dismiss_key FROM action_prefs
		WHERE until IS NULL OR until > ?
	`, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query active prefs: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan pref row: %w", err)
		}
		keys[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pref rows: %w", err)
	}
	return keys, nil
}

// List returns all stored suppressions.
func (r *Repository) List() ([]Suppression, error) {
	rows, err := r.db.Query(`
		SELECT dismiss_key, kind, until, created_at
		FROM action_prefs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list prefs: %w", err)
	}
	defer rows.Close()

	out := []Suppression{}
	for rows.Next() {
		var s Suppression
		var until sql.NullInt64
		var createdAt int64
		if err := rows.Scan(&s.DismissKey, &s.Kind, &until, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan pref row: %w", err)
		}
		if until.Valid {
			t := time.Unix(until.Int64, 0).UTC()
			s.Until = &t
		}
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pref rows: %w", err)
	}
	return out, nil
}

// DeleteExpired removes lapsed snoozes and dismissals older than maxAge.
// Old dismissals are purged because the underlying show has usually
// moved on; resurfacing after a month is intended behavior.
func (r *Repository) DeleteExpired(now time.Time, maxAge time.Duration) (int64, error) {
	cutoff := now.Add(-maxAge).Unix()

	result, err := r.db.Exec(`
		DELETE FROM action_prefs
		WHERE (until IS NOT NULL AND until <= ?)
		   OR (until IS NULL AND created_at < ?)
	`, now.Unix(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired prefs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
