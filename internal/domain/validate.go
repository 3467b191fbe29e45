package domain

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the quiz content rules for every question kind.
func (q Quiz) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	for i, question := range q.Questions {
		if question.Kind != KindSingleChoice {
			continue
		}
		if !slices.Contains(question.Options, question.CorrectAnswer) {
			return fmt.Errorf("%w: question %d: correct answer %q is not one of its options", ErrInvalidQuiz, i, question.CorrectAnswer)
		}
	}
	return nil
}
