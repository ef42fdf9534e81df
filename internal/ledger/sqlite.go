package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ginjaninja78/revenue-guard/internal/types"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS billing_records (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	ro_id        TEXT NOT NULL,
	item_id      TEXT NOT NULL,
	item_name    TEXT NOT NULL,
	billed_price TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS mechanic_notes (
	ro_id     TEXT NOT NULL,
	note_text TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ledger_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// savedAtKey marks a database whose billing records were written at least
// once. Until then the ledger does not exist, even though the tables do.
const savedAtKey = "saved_at"

// SQLiteStore keeps the ledger in a SQLite database.
type SQLiteStore struct {
	db   *sqlx.DB
	path string
}

// OpenSQLite opens (and if needed creates) the ledger database at path.
// A new database holds no ledger until the first Save.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, unavailable(path, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, unavailable(path, fmt.Errorf("failed to create schema: %w", err))
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ensureSaved returns an unavailable error when no ledger was ever saved.
func (s *SQLiteStore) ensureSaved(ctx context.Context) error {
	var savedAt string
	err := s.db.GetContext(ctx, &savedAt, `SELECT value FROM ledger_meta WHERE key = ?`, savedAtKey)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return unavailable(s.path, errors.New("no ledger saved"))
	case err != nil:
		return unavailable(s.path, fmt.Errorf("failed to read ledger metadata: %w", err))
	}
	return nil
}

// Load returns every billing record in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]types.BillingRecord, error) {
	if err := s.ensureSaved(ctx); err != nil {
		return nil, err
	}

	var records []types.BillingRecord
	const q = `SELECT ro_id, item_id, item_name, billed_price FROM billing_records ORDER BY id`
	if err := s.db.SelectContext(ctx, &records, q); err != nil {
		return nil, unavailable(s.path, fmt.Errorf("failed to load billing records: %w", err))
	}
	return records, nil
}

// LoadRO returns the records of a single repair order.
func (s *SQLiteStore) LoadRO(ctx context.Context, roID string) ([]types.BillingRecord, error) {
	if err := s.ensureSaved(ctx); err != nil {
		return nil, err
	}

	var records []types.BillingRecord
	const q = `SELECT ro_id, item_id, item_name, billed_price FROM billing_records WHERE ro_id = ? ORDER BY id`
	if err := s.db.SelectContext(ctx, &records, q, roID); err != nil {
		return nil, unavailable(s.path, fmt.Errorf("failed to load billing records for %s: %w", roID, err))
	}
	return records, nil
}

// Save replaces every billing record in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, records []types.BillingRecord) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM billing_records`); err != nil {
		return fmt.Errorf("failed to clear billing records: %w", err)
	}

	if len(records) > 0 {
		const q = `
			INSERT INTO billing_records (ro_id, item_id, item_name, billed_price)
			VALUES (:ro_id, :item_id, :item_name, :billed_price)
		`
		if _, err = tx.NamedExecContext(ctx, q, records); err != nil {
			return fmt.Errorf("failed to insert billing records: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO ledger_meta (key, value) VALUES (?, ?)`,
		savedAtKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to mark ledger saved: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit billing records: %w", err)
	}

	logging.FromContext(ctx).Info().
		Str("path", s.path).
		Int("records", len(records)).
		Msg("Ledger saved")

	return nil
}

// LoadNote returns the stored mechanic note.
func (s *SQLiteStore) LoadNote(ctx context.Context) (*types.MechanicNote, error) {
	var note types.MechanicNote
	const q = `SELECT ro_id, note_text FROM mechanic_notes ORDER BY rowid DESC LIMIT 1`
	if err := s.db.GetContext(ctx, &note, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, unavailable(s.path, errors.New("no note recorded"))
		}
		return nil, unavailable(s.path, fmt.Errorf("failed to load mechanic note: %w", err))
	}
	return &note, nil
}

// SaveNote replaces the stored mechanic note.
func (s *SQLiteStore) SaveNote(ctx context.Context, note types.MechanicNote) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM mechanic_notes`); err != nil {
		return fmt.Errorf("failed to clear mechanic notes: %w", err)
	}
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO mechanic_notes (ro_id, note_text) VALUES (:ro_id, :note_text)`, note); err != nil {
		return fmt.Errorf("failed to insert mechanic note: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mechanic note: %w", err)
	}
	return nil
}
