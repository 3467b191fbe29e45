package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type stateRow struct {
	bun.BaseModel `bun:"table:quiz_state"`

	Namespace string    `bun:"namespace,pk"`
	Key       string    `bun:"state_key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// StateStore implements app.StateStore on the quiz_state table.
// Run Migrate before use.
type StateStore struct {
	db        *bun.DB
	namespace string
}

func NewStateStore(db *bun.DB, namespace string) *StateStore {
	return &StateStore{db: db, namespace: namespace}
}

func (s *StateStore) Get(ctx context.Context, key string) (string, bool, error) {
	row := new(stateRow)
	err := s.db.NewSelect().
		Model(row).
		Where("namespace = ?", s.namespace).
		Where("state_key = ?", key).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *StateStore) Set(ctx context.Context, key, value string) error {
	row := &stateRow{Namespace: s.namespace, Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (namespace, state_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*stateRow)(nil)).
		Where("namespace = ?", s.namespace).
		Where("state_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
