package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/config"
	"valentine-quiz-service/internal/infra/memory"
	pginfra "valentine-quiz-service/internal/infra/postgres"
	redisinfra "valentine-quiz-service/internal/infra/redis"
	"valentine-quiz-service/internal/infra/sqlite"
	transport "valentine-quiz-service/internal/transport/http"
)

// newLogger builds the process logger from the log section of cfg.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// stateStore is what every backend offers: the machine's port plus a health probe.
type stateStore interface {
	app.StateStore
	transport.Checker
}

// deps holds the infrastructure opened for one command run.
type deps struct {
	cfg     config.Config
	logger  *slog.Logger
	store   stateStore
	checks  map[string]transport.Checker
	quizzes app.QuizRepository
	closers []func() error
}

func (d *deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	return errors.Join(errs...)
}

func openDeps(ctx context.Context, cfg config.Config, logger *slog.Logger) (*deps, error) {
	d := &deps{cfg: cfg, logger: logger, checks: map[string]transport.Checker{}}
	if err := d.openStore(ctx); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.openQuizzes(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *deps) redisClient(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     d.cfg.Redis.Addr,
		Password: d.cfg.Redis.Password,
		DB:       d.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	d.closers = append(d.closers, client.Close)
	return client, nil
}

func (d *deps) openStore(ctx context.Context) error {
	cfg := d.cfg.Storage
	switch cfg.Backend {
	case config.BackendMemory:
		d.store = memory.NewStateStore()
	case config.BackendRedis:
		client, err := d.redisClient(ctx)
		if err != nil {
			return err
		}
		d.store = redisinfra.NewStateStore(client, cfg.Namespace)
	case config.BackendPostgres:
		db := pginfra.OpenBun(d.cfg.Postgres.URL)
		d.closers = append(d.closers, db.Close)
		if _, err := pginfra.Migrate(ctx, db); err != nil {
			return err
		}
		d.store = pginfra.NewStateStore(db, cfg.Namespace)
	default:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.Namespace)
		if err != nil {
			return fmt.Errorf("opening sqlite: %w", err)
		}
		d.closers = append(d.closers, store.Close)
		d.store = store
	}
	d.checks[cfg.Backend] = d.store
	d.logger.Info("state store ready", "backend", cfg.Backend, "namespace", cfg.Namespace)
	return nil
}

func (d *deps) openQuizzes(ctx context.Context) error {
	if d.cfg.Quiz.Source != config.SourcePostgres {
		d.quizzes = memory.NewQuizRepository(d.cfg.QuizContent())
		return nil
	}

	pool, err := pgxpool.Connect(ctx, d.cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	d.closers = append(d.closers, func() error { pool.Close(); return nil })
	loader := pginfra.NewQuizLoader(pool)
	d.checks["postgres"] = pingFunc(func(ctx context.Context) error { return pool.Ping(ctx) })

	if d.cfg.Redis.Addr == "" {
		d.quizzes = loader
		return nil
	}
	client, err := d.redisClient(ctx)
	if err != nil {
		return err
	}
	ttl := config.TTLDuration(d.cfg.Quiz.CacheTTL, 10*time.Minute)
	d.quizzes = redisinfra.NewQuizRepository(client, loader, ttl, d.logger)
	d.checks["redis"] = pingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	return nil
}

// newMachine loads the quiz and resolves the starting phase from the store.
func (d *deps) newMachine(ctx context.Context, clock app.Clock) (*app.Machine, error) {
	quiz, err := d.quizzes.GetQuiz(ctx, d.cfg.Quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("loading quiz %s: %w", d.cfg.Quiz.ID, err)
	}
	machine := app.NewMachine(quiz, d.store,
		app.WithClock(clock),
		app.WithLockoutDuration(config.TTLDuration(d.cfg.Quiz.Lockout, app.DefaultLockoutDuration)),
		app.WithTaunts(app.NewTauntPicker(d.cfg.Quiz.Taunts, nil)),
		app.WithLogger(d.logger),
	)
	snap := machine.Resolve(ctx)
	d.logger.Info("quiz resolved", "quiz", quiz.ID, "phase", snap.Phase, "question", snap.Index+1, "total", snap.Total)
	return machine, nil
}

// newGate builds the reveal gate from config.
func (d *deps) newGate(clock app.Clock) (*app.RevealGate, error) {
	target, err := d.cfg.RevealTarget()
	if err != nil {
		return nil, err
	}
	return app.NewRevealGate(target, d.cfg.Reveal.Gift, clock), nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
