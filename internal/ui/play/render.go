package play

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"valentine-quiz-service/internal/app"
	"valentine-quiz-service/internal/domain"
)

const progressWidth = 30

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	warning  lipgloss.Style
	success  lipgloss.Style
	box      lipgloss.Style
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{title: plain.Bold(true), muted: plain, selected: plain.Bold(true), warning: plain, success: plain, box: plain.Padding(1, 2)}
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(1, 2),
	}
}

// View renders the current phase.
func (m Model) View() string {
	st := newStyles(m.noColor)
	var body string
	switch m.snap.Phase {
	case domain.PhaseLoading:
		body = st.muted.Render("Loading...")
	case domain.PhaseIntro:
		body = renderIntro(st, m.snap)
	case domain.PhaseActive:
		body = m.renderQuestion(st)
	case domain.PhaseLocked:
		body = m.renderLocked(st)
	case domain.PhaseCompleted:
		body = m.renderCompleted(st)
	}
	footer := st.muted.Render("esc to quit")
	return lipgloss.JoinVertical(lipgloss.Left, st.box.Render(body), footer)
}

func renderIntro(st styles, snap domain.Snapshot) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		st.title.Render("A little quiz for you"),
		"",
		fmt.Sprintf("%d questions. A wrong answer locks you out for a while.", snap.Total),
		"",
		st.muted.Render("Press enter to begin"),
	)
}

func (m Model) renderQuestion(st styles) string {
	q := m.snap.Question
	if q == nil {
		return ""
	}
	lines := []string{
		st.muted.Render(fmt.Sprintf("Question %d of %d", m.snap.Index+1, m.snap.Total)),
		st.title.Render(q.Prompt),
		"",
	}
	switch q.Kind {
	case domain.KindSingleChoice:
		for i, option := range q.Options {
			if i == m.cursor {
				lines = append(lines, st.selected.Render("> "+option))
				continue
			}
			lines = append(lines, "  "+option)
		}
	case domain.KindConfirmation:
		lines = append(lines, st.selected.Render("Press enter to say yes"))
	default:
		lines = append(lines, m.input.View())
		if q.InputFormat == "date" {
			lines = append(lines, st.muted.Render("Format: DD/MM/YYYY"))
		}
	}
	if q.Hint != "" {
		lines = append(lines, "", st.muted.Render("Hint: "+q.Hint))
	}
	if m.feedback != "" {
		lines = append(lines, "", m.feedback)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderLocked(st styles) string {
	remaining := app.LockoutRemaining(m.snap.LockoutExpiry, m.clock.Now(), m.snap.LockoutDuration)
	lines := []string{st.warning.Render("Locked out!")}
	if m.snap.Taunt != "" {
		lines = append(lines, m.snap.Taunt)
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Try again in %02d:%02d", remaining.Minutes, remaining.Seconds),
		renderProgress(remaining.Progress),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderCompleted(st styles) string {
	lines := []string{st.success.Render("You did it!")}
	if m.gate == nil {
		return lines[0]
	}
	status := m.gate.Status()
	if !status.Open {
		lines = append(lines,
			"",
			"Your present unlocks in",
			st.title.Render(fmt.Sprintf("%dd %02dh %02dm %02ds", status.Days, status.Hours, status.Minutes, status.Seconds)),
		)
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	gift := status.Gift
	lines = append(lines, "")
	if gift.Message != "" {
		lines = append(lines, gift.Message)
	}
	if gift.Title != "" {
		lines = append(lines, st.title.Render(gift.Title))
	}
	if gift.Description != "" {
		lines = append(lines, gift.Description)
	}
	if gift.Location != "" {
		lines = append(lines, st.muted.Render(gift.Location))
	}
	if gift.Link != "" {
		text := gift.LinkText
		if text == "" {
			text = gift.Link
		}
		lines = append(lines, st.selected.Render(text)+" "+st.muted.Render(gift.Link))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProgress(progress float64) string {
	filled := int(progress * progressWidth)
	if filled > progressWidth {
		filled = progressWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}
