package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/gridx/internal/shared"
)

// SQLiteStore is a [Store] backed by the cache_entries table, giving cached
// playlist views a lifetime beyond a single grid session.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an open database connection.
// The cache_entries table must exist (see shared.RunMigrations).
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Read(key Key) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM cache_entries WHERE key = ?", string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCacheMiss, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) Patch(key Key, update Updater) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current []byte
	err = tx.QueryRow("SELECT value FROM cache_entries WHERE key = ?", string(key)).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read cache entry: %w", err)
	}

	next, err := update(current)
	if err != nil {
		return fmt.Errorf("failed to patch %s: %w", key, err)
	}

	query := `
		INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.Exec(query, string(key), next, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Invalidate(key Key) error {
	if _, err := s.db.Exec("DELETE FROM cache_entries WHERE key = ?", string(key)); err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}
