package app

import (
	"context"
	"time"

	"valentine-quiz-service/internal/domain"
)

// LockoutRemaining computes the countdown breakdown for expiry at now.
// total is the full lockout length, used for the progress fraction.
func LockoutRemaining(expiry, now time.Time, total time.Duration) domain.LockoutRemaining {
	left := expiry.Sub(now)
	if left <= 0 {
		return domain.LockoutRemaining{Progress: 1}
	}
	progress := 0.0
	if total > 0 && left < total {
		progress = float64(total-left) / float64(total)
	}
	return domain.LockoutRemaining{
		Remaining: left,
		Millis:    left.Milliseconds(),
		Minutes:   int(left / time.Minute),
		Seconds:   int(left % time.Minute / time.Second),
		Progress:  progress,
	}
}

// LockoutTimer counts down to a lockout expiry on a fixed cadence.
type LockoutTimer struct {
	clock  Clock
	period time.Duration
}

// NewLockoutTimer builds a timer; a non-positive period falls back to TickPeriod.
func NewLockoutTimer(clock Clock, period time.Duration) *LockoutTimer {
	if period <= 0 {
		period = TickPeriod
	}
	return &LockoutTimer{clock: clock, period: period}
}

// Run evaluates the countdown immediately and then on every tick. While time
// remains, onTick receives the breakdown. Once it reaches zero the ticker is
// stopped and onElapsed is called exactly once; Run then returns true.
// Run returns false if ctx is cancelled first. Either callback may be nil.
func (t *LockoutTimer) Run(ctx context.Context, expiry time.Time, total time.Duration, onTick func(domain.LockoutRemaining), onElapsed func()) bool {
	ticker := t.clock.NewTicker(t.period)
	stopped := false
	stop := func() {
		if !stopped {
			stopped = true
			ticker.Stop()
		}
	}
	defer stop()

	check := func() bool {
		remaining := LockoutRemaining(expiry, t.clock.Now(), total)
		if remaining.Elapsed() {
			stop()
			if onElapsed != nil {
				onElapsed()
			}
			return true
		}
		if onTick != nil {
			onTick(remaining)
		}
		return false
	}

	if check() {
		return true
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C():
			if check() {
				return true
			}
		}
	}
}
