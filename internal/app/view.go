package app

import (
	"time"

	"valentine-quiz-service/internal/domain"
)

// BuildView projects a snapshot into the client-safe view at now.
func BuildView(snap domain.Snapshot, now time.Time) domain.StateView {
	view := domain.StateView{
		Phase:          snap.Phase,
		TotalQuestions: snap.Total,
		IsLast:         snap.IsLast(),
	}
	switch snap.Phase {
	case domain.PhaseActive, domain.PhaseLocked:
		view.QuestionNumber = snap.Index + 1
	case domain.PhaseCompleted:
		view.QuestionNumber = snap.Total
	}
	if snap.Phase == domain.PhaseActive && snap.Question != nil {
		q := snap.Question.View()
		view.Question = &q
	}
	if snap.Phase == domain.PhaseLocked {
		view.Lockout = &domain.LockoutView{
			ExpiresAt: snap.LockoutExpiry,
			Taunt:     snap.Taunt,
			Remaining: LockoutRemaining(snap.LockoutExpiry, now, snap.LockoutDuration),
		}
	}
	return view
}
