// Package storage persists snapshots to a local SQLite database so a
// restart can show the last known state before the remote fetch completes.
// The cache is a convenience mirror, never a source of truth.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"caixa/internal/core"

	_ "modernc.org/sqlite"
)

// CacheKey is the fixed namespace slot snapshots live under.
const CacheKey = "snackcash-storage"

type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// SaveSnapshot upserts the user's snapshot under the fixed cache key.
func (c *SQLiteCache) SaveSnapshot(ctx context.Context, userID string, state core.AppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO app_state (cache_key, user_id, payload, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (cache_key, user_id) DO UPDATE SET
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		CacheKey, userID, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot cached",
		"user_id", userID,
		"bytes", len(payload))
	return nil
}

// LoadSnapshot returns the cached snapshot for the user, reporting false
// when none has been saved yet.
func (c *SQLiteCache) LoadSnapshot(ctx context.Context, userID string) (core.AppState, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM app_state WHERE cache_key = ? AND user_id = ?`,
		CacheKey, userID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AppState{}, false, nil
	}
	if err != nil {
		return core.AppState{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var state core.AppState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return core.AppState{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return state, true, nil
}

// SnapshotAge returns how old the user's cached snapshot is, reporting
// false when none exists.
func (c *SQLiteCache) SnapshotAge(ctx context.Context, userID string) (time.Duration, bool, error) {
	var updatedAt time.Time
	err := c.db.QueryRowContext(ctx,
		`SELECT updated_at FROM app_state WHERE cache_key = ? AND user_id = ?`,
		CacheKey, userID,
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("snapshot age: %w", err)
	}
	return time.Since(updatedAt), true, nil
}
