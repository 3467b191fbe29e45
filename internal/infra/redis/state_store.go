package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StateStore keeps quiz state as plain Redis strings under
// quiz:state:{namespace}:{key}. Keys never expire: the state must outlive restarts.
type StateStore struct {
	client    *redis.Client
	namespace string
}

func NewStateStore(client *redis.Client, namespace string) *StateStore {
	return &StateStore{client: client, namespace: namespace}
}

func (s *StateStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *StateStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *StateStore) key(key string) string {
	return "quiz:state:" + s.namespace + ":" + key
}
