package cli

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/config"
	"valentine-quiz-service/internal/ui/play"
)

// NewPlayCmd runs the quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		logFile string
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, logFile, noColor)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (the terminal belongs to the UI)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	return cmd
}

func runPlay(ctx context.Context, configPath, logFile string, noColor bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(cfg, logOut)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

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

	supervisor := app.NewLockoutSupervisor(machine, app.NewLockoutTimer(clock, app.TickPeriod), logger)
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		_ = supervisor.Run(ctx)
	}()
	defer func() {
		cancel()
		<-supervisorDone
	}()

	updates, unsubscribe := machine.Subscribe()
	defer unsubscribe()

	model := play.NewModel(machine, gate, clock, updates, play.Options{NoColor: noColor})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
