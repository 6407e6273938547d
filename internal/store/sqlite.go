package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "portfolio-analyzer/internal/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed slot store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One producer at a time; a single connection keeps writes serialised.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the slots table.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put replaces the value held in slot.
func (s *SQLiteStore) Put(ctx context.Context, slot Slot, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO slots (name, value, updated_at)
		VALUES (?, ?, ?)
	`, string(slot), string(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w: %v", slot, apperrors.ErrDatabaseError, err)
	}
	return nil
}

// Get returns the value held in slot.
func (s *SQLiteStore) Get(ctx context.Context, slot Slot) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM slots WHERE name = ?
	`, string(slot)).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w: %v", slot, apperrors.ErrDatabaseError, err)
	}
	return []byte(value), nil
}

// Clear removes the value held in slot.
func (s *SQLiteStore) Clear(ctx context.Context, slot Slot) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, string(slot))
	if err != nil {
		return fmt.Errorf("failed to clear slot %s: %w: %v", slot, apperrors.ErrDatabaseError, err)
	}
	return nil
}

// UpdatedAt returns when slot was last written, or the zero time.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, slot Slot) time.Time {
	var updated time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT updated_at FROM slots WHERE name = ?
	`, string(slot)).Scan(&updated)
	if err != nil {
		return time.Time{}
	}
	return updated
}
