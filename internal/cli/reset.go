package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/config"
)

// NewResetCmd clears the stored quiz progress.
func NewResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear stored quiz progress, lockout and completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.Context(), *configPath)
		},
	}
}

func runReset(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := app.ResetState(ctx, d.store); err != nil {
		return err
	}
	logger.Info("quiz state cleared", "backend", cfg.Storage.Backend, "namespace", cfg.Storage.Namespace)
	return nil
}
