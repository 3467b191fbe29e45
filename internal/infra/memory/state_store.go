package memory

import (
	"context"
	"sync"
)

// StateStore is an in-memory implementation of app.StateStore. It does not
// survive restarts and is meant for tests and ephemeral runs.
type StateStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewStateStore() *StateStore {
	return &StateStore{values: make(map[string]string)}
}

// NewStateStoreWith seeds the store, useful for simulating a reload.
func NewStateStoreWith(values map[string]string) *StateStore {
	s := NewStateStore()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *StateStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *StateStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *StateStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Ping always succeeds.
func (s *StateStore) Ping(context.Context) error {
	return nil
}

// Dump returns a copy of every stored entry.
func (s *StateStore) Dump() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
