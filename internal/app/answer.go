package app

import (
	"valentine-quiz-service/internal/domain"
	"valentine-quiz-service/internal/textnorm"
)

// evaluate reports whether raw answers the question.
// Confirmation questions accept any payload; single-choice options must match exactly.
func evaluate(question domain.Question, raw string) bool {
	switch question.Kind {
	case domain.KindConfirmation:
		return true
	case domain.KindFreeText:
		return textnorm.Equal(raw, question.CorrectAnswer)
	default:
		return raw == question.CorrectAnswer
	}
}
