package app

import "time"

// TickPeriod is the cadence of the lockout and reveal countdowns.
const TickPeriod = time.Second

// Clock supplies wall-clock time and periodic tickers.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is a stoppable periodic tick source.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock returns the real clock.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time {
	return s.t.C
}

func (s *systemTicker) Stop() {
	s.t.Stop()
}
