package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/config"
	transport "valentine-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	clock := app.SystemClock()
	machine, err := d.newMachine(ctx, clock)
	if err != nil {
		return err
	}
	gate, err := d.newGate(clock)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	router := transport.NewRouter(transport.Deps{
		Machine: machine,
		Gate:    gate,
		Clock:   clock,
		Checks:  d.checks,
		Logger:  logger,
	})
	srv := transport.NewServer(":"+finalPort, router, logger, config.TTLDuration(cfg.Server.ShutdownTimeout, 0))
	supervisor := app.NewLockoutSupervisor(machine, app.NewLockoutTimer(clock, app.TickPeriod), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return supervisor.Run(gctx)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}
