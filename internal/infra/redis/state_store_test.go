package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestStateStoreKeysAndLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	store := NewStateStore(client, "valentine")

	if _, ok, err := store.Get(ctx, "quiz-started"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "quiz-started", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("quiz:state:valentine:quiz-started"); got != "true" {
		t.Fatalf("expected namespaced key, got %q", got)
	}
	if ttl := mr.TTL("quiz:state:valentine:quiz-started"); ttl != 0 {
		t.Fatalf("state keys must not expire, got ttl %v", ttl)
	}
	value, ok, err := store.Get(ctx, "quiz-started")
	if err != nil || !ok || value != "true" {
		t.Fatalf("expected stored flag, got %q ok=%v err=%v", value, ok, err)
	}
	if err := store.Remove(ctx, "quiz-started"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mr.Exists("quiz:state:valentine:quiz-started") {
		t.Fatalf("expected redis key to be removed")
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestStateStoreReportsConnectionErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewStateStore(client, "valentine")
	mr.Close()

	if _, _, err := store.Get(context.Background(), "quiz-started"); err == nil {
		t.Fatalf("expected error once redis is gone")
	}
}
