package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/app/apptest"
	"valentine-quiz-service/internal/domain"
	pginfra "valentine-quiz-service/internal/infra/postgres"
	infraredis "valentine-quiz-service/internal/infra/redis"
)

var start = time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := pginfra.OpenBun(pgURL)
	defer db.Close()
	if _, err := pginfra.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pginfra.SeedQuiz(ctx, db, sampleQuiz()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pginfra.NewQuizLoader(pool)
	if _, err := loader.LoadQuiz(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute, nil)

	quiz, err := quizRepo.GetQuiz(ctx, "valentine")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	stores := map[string]app.StateStore{
		"redis":    infraredis.NewStateStore(redisClient, "it"),
		"postgres": pginfra.NewStateStore(db, "it"),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			playThrough(t, ctx, quiz, store)
		})
	}
}

// playThrough locks on a wrong answer, survives a reload, then completes.
func playThrough(t *testing.T, ctx context.Context, quiz domain.Quiz, store app.StateStore) {
	t.Helper()
	clock := apptest.NewClock(start)
	machine := app.NewMachine(quiz, store, app.WithClock(clock))
	machine.Resolve(ctx)
	if _, err := machine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if result, err := machine.SubmitAnswer(ctx, "cluj"); err != nil || result.Correct {
		t.Fatalf("expected wrong answer, got %+v err=%v", result, err)
	}

	reloaded := app.NewMachine(quiz, store, app.WithClock(clock))
	if snap := reloaded.Resolve(ctx); snap.Phase != domain.PhaseLocked {
		t.Fatalf("expected lock to survive reload, got %s", snap.Phase)
	}

	clock.Advance(10 * time.Minute)
	reloaded = app.NewMachine(quiz, store, app.WithClock(clock))
	if snap := reloaded.Resolve(ctx); snap.Phase != domain.PhaseActive {
		t.Fatalf("expected active after expiry, got %s", snap.Phase)
	}
	if _, err := reloaded.SubmitAnswer(ctx, "Brașov"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if result, err := reloaded.Confirm(ctx); err != nil || result.Snapshot.Phase != domain.PhaseCompleted {
		t.Fatalf("expected completion, got %+v err=%v", result, err)
	}

	for _, key := range []string{app.KeyCurrentQuestion, app.KeyQuizStarted, app.KeyLockoutExpiry} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Fatalf("expected %s cleared", key)
		}
	}
	if value, ok, _ := store.Get(ctx, app.KeyQuizCompleted); !ok || value != "true" {
		t.Fatalf("expected completion flag, got %q", value)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "valentine",
		Questions: []domain.Question{
			{ID: 1, Prompt: "Which city?", Kind: domain.KindFreeText, CorrectAnswer: "brasov"},
			{ID: 2, Prompt: "Be my Valentine?", Kind: domain.KindConfirmation},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
