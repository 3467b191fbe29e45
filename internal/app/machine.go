package app

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"valentine-quiz-service/internal/domain"
)

// DefaultLockoutDuration is the penalty applied after a wrong answer.
const DefaultLockoutDuration = 10 * time.Minute

// Machine is the quiz progression and lockout state machine.
// All mutations go through it and are persisted to the StateStore before
// subscribers are notified. Persistence is best-effort: a failed write is
// logged and the in-memory transition still completes.
type Machine struct {
	quiz    domain.Quiz
	store   StateStore
	lockout time.Duration
	clock   Clock
	taunts  *TauntPicker
	logger  *slog.Logger

	mu          sync.RWMutex
	phase       domain.Phase
	index       int
	expiry      time.Time
	taunt       string
	subscribers map[chan domain.Snapshot]struct{}
}

// MachineOption customizes a Machine.
type MachineOption func(*Machine)

// WithClock overrides the wall clock (tests use a fake).
func WithClock(clock Clock) MachineOption {
	return func(m *Machine) { m.clock = clock }
}

// WithLockoutDuration overrides DefaultLockoutDuration.
func WithLockoutDuration(d time.Duration) MachineOption {
	return func(m *Machine) {
		if d > 0 {
			m.lockout = d
		}
	}
}

// WithTaunts sets the lockout message picker.
func WithTaunts(p *TauntPicker) MachineOption {
	return func(m *Machine) { m.taunts = p }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMachine builds a machine in the loading phase. Call Resolve before use.
// quiz must be non-empty (see domain.Quiz.Validate).
func NewMachine(quiz domain.Quiz, store StateStore, opts ...MachineOption) *Machine {
	m := &Machine{
		quiz:        quiz,
		store:       store,
		lockout:     DefaultLockoutDuration,
		clock:       SystemClock(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		phase:       domain.PhaseLoading,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve determines the starting phase from the durable store. It runs once;
// later calls return the current snapshot unchanged.
func (m *Machine) Resolve(ctx context.Context) domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != domain.PhaseLoading {
		return m.snapshotLocked()
	}

	if m.flagLocked(ctx, KeyQuizCompleted) {
		m.completeLocked()
		return m.broadcastLocked()
	}

	if expiry, ok := m.storedExpiryLocked(ctx); ok {
		if m.clock.Now().Before(expiry) {
			m.index = m.storedIndexLocked(ctx)
			m.lockLocked(expiry)
			return m.broadcastLocked()
		}
		m.removeLocked(ctx, KeyLockoutExpiry)
	}

	m.index = m.storedIndexLocked(ctx)
	if m.flagLocked(ctx, KeyQuizStarted) {
		m.phase = domain.PhaseActive
	} else {
		m.phase = domain.PhaseIntro
	}
	return m.broadcastLocked()
}

// Start leaves the intro and begins the quiz.
func (m *Machine) Start(ctx context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != domain.PhaseIntro {
		return m.snapshotLocked(), domain.ErrWrongPhase
	}
	m.setLocked(ctx, KeyQuizStarted, flagTrue)
	m.phase = domain.PhaseActive
	return m.broadcastLocked(), nil
}

// SubmitAnswer checks raw against the current question and advances, completes or locks.
func (m *Machine) SubmitAnswer(ctx context.Context, raw string) (domain.AnswerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != domain.PhaseActive {
		return domain.AnswerResult{Snapshot: m.snapshotLocked()}, domain.ErrWrongPhase
	}
	return m.submitLocked(ctx, raw), nil
}

// Confirm answers the current confirmation-kind question affirmatively.
func (m *Machine) Confirm(ctx context.Context) (domain.AnswerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != domain.PhaseActive {
		return domain.AnswerResult{Snapshot: m.snapshotLocked()}, domain.ErrWrongPhase
	}
	if m.quiz.Questions[m.index].Kind != domain.KindConfirmation {
		return domain.AnswerResult{Snapshot: m.snapshotLocked()}, domain.ErrNotConfirmation
	}
	return m.submitLocked(ctx, ""), nil
}

// OnLockoutElapsed ends the lockout. Calls outside the locked phase are no-ops.
func (m *Machine) OnLockoutElapsed(ctx context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != domain.PhaseLocked {
		return m.snapshotLocked(), domain.ErrWrongPhase
	}
	m.removeLocked(ctx, KeyLockoutExpiry)
	m.expiry = time.Time{}
	m.taunt = ""
	m.phase = domain.PhaseActive
	return m.broadcastLocked(), nil
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every transition,
// starting with the current one. The caller must invoke cancel to avoid leaks.
func (m *Machine) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	ch <- m.snapshotLocked()
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Machine) submitLocked(ctx context.Context, raw string) domain.AnswerResult {
	question := m.quiz.Questions[m.index]
	if !evaluate(question, raw) {
		expiry := m.clock.Now().Add(m.lockout)
		m.setLocked(ctx, KeyLockoutExpiry, strconv.FormatInt(expiry.UnixMilli(), 10))
		m.lockLocked(expiry)
		m.logger.Info("wrong answer, quiz locked", "question", question.ID, "until", expiry)
		return domain.AnswerResult{Correct: false, Snapshot: m.broadcastLocked()}
	}

	next := m.index + 1
	if next >= len(m.quiz.Questions) {
		m.setLocked(ctx, KeyQuizCompleted, flagTrue)
		m.removeLocked(ctx, KeyCurrentQuestion)
		m.removeLocked(ctx, KeyQuizStarted)
		m.completeLocked()
		m.logger.Info("quiz completed")
		return domain.AnswerResult{Correct: true, Snapshot: m.broadcastLocked()}
	}

	m.setLocked(ctx, KeyCurrentQuestion, strconv.Itoa(next))
	m.index = next
	return domain.AnswerResult{Correct: true, Snapshot: m.broadcastLocked()}
}

func (m *Machine) lockLocked(expiry time.Time) {
	m.phase = domain.PhaseLocked
	m.expiry = expiry
	m.taunt = m.taunts.Pick()
}

func (m *Machine) completeLocked() {
	m.phase = domain.PhaseCompleted
	m.index = len(m.quiz.Questions)
	m.expiry = time.Time{}
	m.taunt = ""
}

// storedIndexLocked treats absent, malformed and out-of-range values as 0.
func (m *Machine) storedIndexLocked(ctx context.Context) int {
	raw, ok := m.getLocked(ctx, KeyCurrentQuestion)
	if !ok {
		return 0
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(m.quiz.Questions) {
		m.logger.Warn("ignoring malformed stored question index", "value", raw)
		return 0
	}
	return idx
}

func (m *Machine) storedExpiryLocked(ctx context.Context) (time.Time, bool) {
	raw, ok := m.getLocked(ctx, KeyLockoutExpiry)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		m.logger.Warn("ignoring malformed stored lockout expiry", "value", raw)
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (m *Machine) flagLocked(ctx context.Context, key string) bool {
	raw, ok := m.getLocked(ctx, key)
	return ok && raw == flagTrue
}

func (m *Machine) getLocked(ctx context.Context, key string) (string, bool) {
	value, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn("state store read failed", "key", key, "error", err)
		return "", false
	}
	return value, ok
}

func (m *Machine) setLocked(ctx context.Context, key, value string) {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.logger.Warn("state store write failed", "key", key, "error", err)
	}
}

func (m *Machine) removeLocked(ctx context.Context, key string) {
	if err := m.store.Remove(ctx, key); err != nil {
		m.logger.Warn("state store remove failed", "key", key, "error", err)
	}
}

func (m *Machine) broadcastLocked() domain.Snapshot {
	snap := m.snapshotLocked()
	for ch := range m.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow subscriber: drop its oldest pending snapshot so the latest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (m *Machine) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Phase:           m.phase,
		Index:           m.index,
		Total:           len(m.quiz.Questions),
		LockoutExpiry:   m.expiry,
		LockoutDuration: m.lockout,
		Taunt:           m.taunt,
	}
	if (m.phase == domain.PhaseActive || m.phase == domain.PhaseLocked) && m.index < len(m.quiz.Questions) {
		question := m.quiz.Questions[m.index]
		snap.Question = &question
	}
	return snap
}
