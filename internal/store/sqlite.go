package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const bootstrapSchema = `
CREATE TABLE IF NOT EXISTS records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
`

// SQLiteStore persists records in a single-file SQLite database. It is the
// production implementation of Store.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at dsn and ensures
// the records table exists.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, bootstrapSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: bootstrap schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Read loads and decodes the record stored under key. Missing or unparsable
// records leave out untouched so callers fall back to the empty collection.
func (s *SQLiteStore) Read(ctx context.Context, key string, out any) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store: sqlite store not configured")
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		// Corrupted record: recover with the caller's zero value.
		return nil
	}
	return nil
}

// Write serializes value and stores it under key, replacing any prior record.
func (s *SQLiteStore) Write(ctx context.Context, key string, value any) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store: sqlite store not configured")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, raw, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: write %q: %w", key, err)
	}
	return nil
}

// Delete removes the record stored under key. Deleting an absent key is a
// no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store: sqlite store not configured")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: delete %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
