package app

import (
	"context"

	"valentine-quiz-service/internal/domain"
)

// Durable state keys. Values are plain strings so every backend stores them verbatim.
const (
	KeyLockoutExpiry   = "lockout-expiry"
	KeyCurrentQuestion = "current-question-index"
	KeyQuizCompleted   = "quiz-completed"
	KeyQuizStarted     = "quiz-started"
)

// StateKeys lists every key the machine writes.
var StateKeys = []string{KeyLockoutExpiry, KeyCurrentQuestion, KeyQuizCompleted, KeyQuizStarted}

const flagTrue = "true"

// StateStore abstracts the durable key-value store (SQLite, Redis, Postgres, in-memory).
// Get reports absence with ok=false rather than substituting a default.
type StateStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// QuizRepository loads quiz content (from config, cache or backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResetState removes all durable quiz state.
func ResetState(ctx context.Context, store StateStore) error {
	for _, key := range StateKeys {
		if err := store.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
