// Package apptest provides deterministic clocks for state machine tests.
package apptest

import (
	"sync"
	"time"

	"valentine-quiz-service/internal/app"
)

// Clock is a manually advanced app.Clock.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	tickers map[*Ticker]struct{}
}

// NewClock starts the clock at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now, tickers: make(map[*Ticker]struct{})}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker registers a ticker fired by Advance.
func (c *Clock) NewTicker(time.Duration) app.Ticker {
	t := &Ticker{c: make(chan time.Time, 1), clock: c}
	c.mu.Lock()
	c.tickers[t] = struct{}{}
	c.mu.Unlock()
	return t
}

// Advance moves time forward by d and delivers one tick to every live ticker.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	live := make([]*Ticker, 0, len(c.tickers))
	for t := range c.tickers {
		live = append(live, t)
	}
	c.mu.Unlock()

	for _, t := range live {
		select {
		case t.c <- now:
		default:
		}
	}
}

// ActiveTickers reports how many tickers have not been stopped.
func (c *Clock) ActiveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// WaitForTickers blocks until at least n tickers are live or the deadline passes.
func (c *Clock) WaitForTickers(n int, within time.Duration) bool {
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if c.ActiveTickers() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return c.ActiveTickers() >= n
}

// Ticker is the fake tick source handed out by Clock.
type Ticker struct {
	c     chan time.Time
	clock *Clock
}

func (t *Ticker) C() <-chan time.Time {
	return t.c
}

func (t *Ticker) Stop() {
	t.clock.mu.Lock()
	delete(t.clock.tickers, t)
	t.clock.mu.Unlock()
}
