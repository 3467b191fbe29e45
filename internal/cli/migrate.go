package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"valentine-quiz-service/internal/config"
	pginfra "valentine-quiz-service/internal/infra/postgres"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	logger := newLogger(cfg, os.Stdout)

	db := pginfra.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	group, err := pginfra.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		logger.Info("no new migrations")
		return nil
	}
	logger.Info("migrations applied", "group", group.String())
	return nil
}
