package app

import (
	"context"
	"time"

	"valentine-quiz-service/internal/domain"
)

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// RevealGate opens its content once a fixed target time is reached.
// It knows nothing about quiz state; callers only show it after completion.
type RevealGate struct {
	target time.Time
	gift   domain.Gift
	clock  Clock
	period time.Duration
}

// NewRevealGate builds a gate for target that reveals gift when open.
func NewRevealGate(target time.Time, gift domain.Gift, clock Clock) *RevealGate {
	return &RevealGate{target: target, gift: gift, clock: clock, period: TickPeriod}
}

// Target returns the configured reveal time.
func (g *RevealGate) Target() time.Time {
	return g.target
}

// Status evaluates the gate against the clock.
func (g *RevealGate) Status() domain.RevealStatus {
	return g.StatusAt(g.clock.Now())
}

// StatusAt evaluates the gate at now.
func (g *RevealGate) StatusAt(now time.Time) domain.RevealStatus {
	if !now.Before(g.target) {
		gift := g.gift
		return domain.RevealStatus{Open: true, Target: g.target, Gift: &gift}
	}
	diff := g.target.UnixMilli() - now.UnixMilli()
	if diff < 0 {
		diff = 0
	}
	return domain.RevealStatus{
		Target:  g.target,
		Days:    diff / msPerDay,
		Hours:   diff / msPerHour % 24,
		Minutes: diff / msPerMinute % 60,
		Seconds: diff / msPerSecond % 60,
	}
}

// Run emits the status immediately and then every tick until the gate opens
// (the open status is emitted once) or ctx is cancelled. It reports whether
// the gate opened.
func (g *RevealGate) Run(ctx context.Context, onTick func(domain.RevealStatus)) bool {
	ticker := g.clock.NewTicker(g.period)
	defer ticker.Stop()

	emit := func() bool {
		status := g.Status()
		if onTick != nil {
			onTick(status)
		}
		return status.Open
	}

	if emit() {
		return true
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C():
			if emit() {
				return true
			}
		}
	}
}
