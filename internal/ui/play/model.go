// Package play is the terminal front-end for the quiz, built on Bubble Tea.
package play

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/domain"
)

// Model renders the quiz phase by phase and forwards key presses to the machine.
type Model struct {
	machine      *app.Machine
	gate         *app.RevealGate
	clock        app.Clock
	updates      <-chan domain.Snapshot
	tickInterval time.Duration

	snap     domain.Snapshot
	input    textinput.Model
	cursor   int
	feedback string
	noColor  bool
}

// Options configures the model.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
}

// NewModel builds a model fed by updates, typically from machine.Subscribe.
func NewModel(machine *app.Machine, gate *app.RevealGate, clock app.Clock, updates <-chan domain.Snapshot, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = app.TickPeriod
	}
	input := textinput.New()
	input.Placeholder = "Type your answer"
	input.CharLimit = 120
	input.Focus()
	return Model{
		machine:      machine,
		gate:         gate,
		clock:        clock,
		updates:      updates,
		tickInterval: tickInterval,
		snap:         machine.Snapshot(),
		input:        input,
		noColor:      opts.NoColor,
	}
}

// Init waits for the first snapshot and starts the display tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.updates), tick(m.tickInterval), textinput.Blink)
}

// Update consumes snapshots, ticks, command results and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case snapshotMsg:
		m = m.applySnapshot(domain.Snapshot(typed))
		return m, waitForSnapshot(m.updates)
	case tickMsg:
		return m, tick(m.tickInterval)
	case resultMsg:
		switch {
		case typed.err != nil && !errors.Is(typed.err, domain.ErrWrongPhase) && !errors.Is(typed.err, domain.ErrNotConfirmation):
			m.feedback = "Something went wrong: " + typed.err.Error()
		case typed.err == nil && typed.correct:
			m.feedback = "Correct!"
		case typed.err == nil:
			m.feedback = "Wrong answer."
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) applySnapshot(snap domain.Snapshot) Model {
	if snap.Index != m.snap.Index || snap.Phase != m.snap.Phase {
		m.cursor = 0
		m.input.SetValue("")
	}
	if snap.Phase == domain.PhaseActive && m.snap.Phase == domain.PhaseLocked {
		m.feedback = ""
	}
	m.snap = snap
	return m
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}

	switch m.snap.Phase {
	case domain.PhaseIntro:
		if key.Type == tea.KeyEnter {
			return m, m.start()
		}
	case domain.PhaseActive:
		return m.handleActiveKey(key)
	case domain.PhaseLocked, domain.PhaseCompleted:
		if key.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleActiveKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	question := m.snap.Question
	if question == nil {
		return m, nil
	}
	switch question.Kind {
	case domain.KindSingleChoice:
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(question.Options)-1 {
				m.cursor++
			}
		case "enter":
			return m, m.submit(question.Options[m.cursor])
		}
		return m, nil
	case domain.KindConfirmation:
		switch key.String() {
		case "enter", "y":
			return m, m.confirm()
		}
		return m, nil
	default:
		if key.Type == tea.KeyEnter {
			answer := m.input.Value()
			if answer == "" {
				return m, nil
			}
			return m, m.submit(answer)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(key)
		return m, cmd
	}
}

// snapshotMsg carries a machine transition.
type snapshotMsg domain.Snapshot

// tickMsg refreshes countdowns.
type tickMsg time.Time

type resultMsg struct {
	correct bool
	err     error
}

func waitForSnapshot(updates <-chan domain.Snapshot) tea.Cmd {
	return func() tea.Msg {
		if updates == nil {
			return nil
		}
		snap, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg(snap)
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		_, err := m.machine.Start(context.Background())
		return resultMsg{correct: true, err: err}
	}
}

func (m Model) submit(answer string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.machine.SubmitAnswer(context.Background(), answer)
		return resultMsg{correct: result.Correct, err: err}
	}
}

func (m Model) confirm() tea.Cmd {
	return func() tea.Msg {
		result, err := m.machine.Confirm(context.Background())
		return resultMsg{correct: result.Correct, err: err}
	}
}
