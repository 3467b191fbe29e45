package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"valentine-quiz-service/internal/config"
	pginfra "valentine-quiz-service/internal/infra/postgres"
	redisinfra "valentine-quiz-service/internal/infra/redis"
)

// NewSeedCmd writes the quiz from the config file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the configured quiz into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	quiz := cfg.QuizContent()
	if err := quiz.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	db := pginfra.OpenBun(cfg.Postgres.URL)
	defer db.Close()
	if _, err := pginfra.Migrate(ctx, db); err != nil {
		return err
	}
	if err := pginfra.SeedQuiz(ctx, db, quiz); err != nil {
		return err
	}
	logger.Info("quiz seeded", "quiz", quiz.ID, "questions", len(quiz.Questions))

	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()
	cache := redisinfra.NewQuizRepository(client, nil, time.Minute, logger)
	if err := cache.Invalidate(ctx, quiz.ID); err != nil {
		// best-effort: a stale copy expires with its TTL
		logger.Warn("quiz cache invalidation failed", "quiz", quiz.ID, "error", err)
	}
	return nil
}
