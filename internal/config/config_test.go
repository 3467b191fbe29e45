package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"valentine-quiz-service/internal/domain"
)

const minimalYAML = `
quiz:
  id: valentine
  questions:
    - id: 1
      prompt: "Where was our first date?"
      kind: single-choice
      options: ["Pizza Hut", "KFC"]
      correct_answer: "Pizza Hut"
    - id: 2
      prompt: "Be mine?"
      kind: confirmation
reveal:
  target: "2026-02-14T00:00:00Z"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Storage.Backend != BackendSQLite || cfg.Quiz.Source != SourceConfig {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Storage.Namespace != "valentine" {
		t.Fatalf("expected namespace to default to quiz id, got %q", cfg.Storage.Namespace)
	}
	quiz := cfg.QuizContent()
	if len(quiz.Questions) != 2 || quiz.Questions[0].CorrectAnswer != "Pizza Hut" || quiz.Questions[1].Kind != domain.KindConfirmation {
		t.Fatalf("unexpected quiz content: %+v", quiz)
	}
	target, err := cfg.RevealTarget()
	if err != nil || !target.Equal(time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reveal target %v err=%v", target, err)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendRedis || cfg.Redis.Addr != "cache:6379" {
		t.Fatalf("expected env overrides, got %+v", cfg.Storage)
	}
	if level, _ := cfg.LogLevel(); level.String() != "DEBUG" {
		t.Fatalf("expected debug level, got %v", level)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"unknown backend":    minimalYAML + "storage:\n  backend: etcd\n",
		"redis without addr": minimalYAML + "storage:\n  backend: redis\n",
		"bad target":         "quiz:\n  id: q\n  questions:\n    - {id: 1, prompt: p, kind: confirmation}\nreveal:\n  target: tomorrow\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	_, err := Load(writeConfig(t, "quiz:\n  id: q\n  questions: []\n"))
	if !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected ErrInvalidQuiz for empty quiz, got %v", err)
	}
}

func TestPostgresSourceSkipsInlineValidation(t *testing.T) {
	cfg, err := Load(writeConfig(t, "quiz:\n  id: q\n  source: postgres\npostgres:\n  url: postgres://localhost/quiz\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quiz.Source != SourcePostgres {
		t.Fatalf("expected postgres source, got %q", cfg.Quiz.Source)
	}
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if len(cfg.Quiz.Questions) != 6 || TTLDuration(cfg.Quiz.Lockout, 0) != 10*time.Minute {
		t.Fatalf("unexpected sample config: %+v", cfg.Quiz)
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("bogus", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", d)
	}
	if d := TTLDuration("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("expected 90s, got %v", d)
	}
}
