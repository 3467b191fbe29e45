// Package sqlite persists quiz state in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// StateStore implements app.StateStore on a single SQLite table. Rows are
// scoped by namespace so one file can hold several quizzes.
type StateStore struct {
	db        *sql.DB
	namespace string
	now       func() time.Time
}

// Open creates the database file (and its directory) if needed and ensures the schema.
func Open(ctx context.Context, path, namespace string) (*StateStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY; the machine serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &StateStore{db: db, namespace: namespace, now: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *StateStore) initSchema(ctx context.Context) error {
	const query = `
	CREATE TABLE IF NOT EXISTS quiz_state (
		namespace TEXT NOT NULL,
		state_key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, state_key)
	);`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *StateStore) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM quiz_state WHERE namespace = ? AND state_key = ?`
	var value string
	err := s.db.QueryRowContext(ctx, query, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *StateStore) Set(ctx context.Context, key, value string) error {
	const query = `
	INSERT INTO quiz_state (namespace, state_key, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(namespace, state_key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, s.namespace, key, value, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM quiz_state WHERE namespace = ? AND state_key = ?`
	if _, err := s.db.ExecContext(ctx, query, s.namespace, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *StateStore) Close() error {
	return s.db.Close()
}
