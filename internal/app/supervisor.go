package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"valentine-quiz-service/internal/domain"
)

// LockoutSupervisor owns the one timer allowed to end a lockout. It watches the
// machine and runs a LockoutTimer whenever the phase is locked, cancelling it
// when the phase changes or the supervisor stops.
type LockoutSupervisor struct {
	machine *Machine
	timer   *LockoutTimer
	logger  *slog.Logger
}

// NewLockoutSupervisor wires a supervisor for machine.
func NewLockoutSupervisor(machine *Machine, timer *LockoutTimer, logger *slog.Logger) *LockoutSupervisor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LockoutSupervisor{machine: machine, timer: timer, logger: logger}
}

// Run blocks until ctx is cancelled.
func (s *LockoutSupervisor) Run(ctx context.Context) error {
	updates, unsubscribe := s.machine.Subscribe()
	defer unsubscribe()

	var (
		wg       sync.WaitGroup
		stop     = func() {}
		watching time.Time
	)
	defer func() {
		stop()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if snap.Phase != domain.PhaseLocked {
				stop()
				watching = time.Time{}
				continue
			}
			if snap.LockoutExpiry.Equal(watching) {
				continue
			}
			stop()
			watching = snap.LockoutExpiry
			timerCtx, cancel := context.WithCancel(ctx)
			stop = cancel
			wg.Add(1)
			go func(expiry time.Time, total time.Duration) {
				defer wg.Done()
				s.timer.Run(timerCtx, expiry, total, nil, func() {
					s.expire(timerCtx)
				})
			}(snap.LockoutExpiry, snap.LockoutDuration)
		}
	}
}

func (s *LockoutSupervisor) expire(ctx context.Context) {
	if _, err := s.machine.OnLockoutElapsed(context.WithoutCancel(ctx)); err != nil {
		if errors.Is(err, domain.ErrWrongPhase) {
			s.logger.Debug("lockout already ended")
			return
		}
		s.logger.Warn("ending lockout failed", "error", err)
		return
	}
	s.logger.Info("lockout elapsed")
}
