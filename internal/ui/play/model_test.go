package play

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/app/apptest"
	"valentine-quiz-service/internal/domain"
	"valentine-quiz-service/internal/infra/memory"
)

var now = time.Date(2026, time.February, 13, 23, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *apptest.Clock) {
	t.Helper()
	clock := apptest.NewClock(now)
	machine := app.NewMachine(domain.Quiz{
		ID: "valentine",
		Questions: []domain.Question{
			{ID: 1, Prompt: "First date?", Kind: domain.KindSingleChoice, Options: []string{"KFC", "Pizza Hut"}, CorrectAnswer: "Pizza Hut"},
			{ID: 2, Prompt: "Which city?", Kind: domain.KindFreeText, CorrectAnswer: "brasov", Hint: "Mountains"},
			{ID: 3, Prompt: "Be my Valentine?", Kind: domain.KindConfirmation},
		},
	}, memory.NewStateStore(), app.WithClock(clock), app.WithTaunts(app.NewTauntPicker([]string{"Nope!"}, nil)))
	machine.Resolve(context.Background())
	gate := app.NewRevealGate(now.Add(time.Hour), domain.Gift{Title: "Weekend away"}, clock)
	return NewModel(machine, gate, clock, nil, Options{NoColor: true}), clock
}

// press feeds a key and runs the resulting command, applying the machine's
// new snapshot the way the subscription would.
func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(Model)
	if cmd != nil {
		if msg, ok := cmd().(resultMsg); ok {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	next, _ = m.Update(snapshotMsg(m.machine.Snapshot()))
	return next.(Model)
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestModelPlaysThroughQuiz(t *testing.T) {
	m, clock := newTestModel(t)
	if !strings.Contains(m.View(), "3 questions") {
		t.Fatalf("expected intro, got:\n%s", m.View())
	}

	m = press(t, m, enter)
	if m.snap.Phase != domain.PhaseActive || !strings.Contains(m.View(), "First date?") {
		t.Fatalf("expected first question, got:\n%s", m.View())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if !strings.Contains(m.View(), "> Pizza Hut") {
		t.Fatalf("expected cursor on second option, got:\n%s", m.View())
	}
	m = press(t, m, enter)
	if m.snap.Index != 1 || !strings.Contains(m.View(), "Hint: Mountains") {
		t.Fatalf("expected second question, got:\n%s", m.View())
	}

	m = typeText(t, m, "Brașov")
	m = press(t, m, enter)
	if m.snap.Index != 2 || !strings.Contains(m.View(), "Press enter to say yes") {
		t.Fatalf("expected confirmation, got:\n%s", m.View())
	}

	m = press(t, m, enter)
	view := m.View()
	if m.snap.Phase != domain.PhaseCompleted || !strings.Contains(view, "0d 01h 00m 00s") {
		t.Fatalf("expected reveal countdown, got:\n%s", view)
	}

	clock.Advance(time.Hour)
	if !strings.Contains(m.View(), "Weekend away") {
		t.Fatalf("expected gift once open, got:\n%s", m.View())
	}
}

func TestModelShowsLockout(t *testing.T) {
	m, clock := newTestModel(t)
	m = press(t, m, enter)
	m = press(t, m, enter) // KFC is wrong

	view := m.View()
	if m.snap.Phase != domain.PhaseLocked || !strings.Contains(view, "Nope!") || !strings.Contains(view, "Try again in 10:00") {
		t.Fatalf("expected lockout screen, got:\n%s", view)
	}

	clock.Advance(4*time.Minute + 30*time.Second)
	if !strings.Contains(m.View(), "Try again in 05:30") {
		t.Fatalf("expected countdown to move, got:\n%s", m.View())
	}

	// Keys do nothing while locked.
	m = press(t, m, enter)
	if m.snap.Phase != domain.PhaseLocked {
		t.Fatalf("expected to stay locked")
	}
}

func TestModelQuits(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

func TestRenderProgress(t *testing.T) {
	if got := renderProgress(0.5); strings.Count(got, "#") != progressWidth/2 {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := renderProgress(1.5); strings.Count(got, "-") != 0 {
		t.Fatalf("expected full bar, got %q", got)
	}
}
