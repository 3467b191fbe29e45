package domain

import (
	"errors"
	"testing"
)

func TestQuizValidateAcceptsAllKinds(t *testing.T) {
	quiz := Quiz{
		ID: "valentine",
		Questions: []Question{
			{ID: 1, Prompt: "When?", Kind: KindFreeText, CorrectAnswer: "09/06/2024", InputFormat: "date"},
			{ID: 2, Prompt: "Where?", Kind: KindSingleChoice, Options: []string{"A", "B"}, CorrectAnswer: "B"},
			{ID: 3, Prompt: "Be mine?", Kind: KindConfirmation},
		},
	}
	if err := quiz.Validate(); err != nil {
		t.Fatalf("expected valid quiz, got %v", err)
	}
}

func TestQuizValidateRejectsBadContent(t *testing.T) {
	cases := map[string]Quiz{
		"empty": {ID: "q"},
		"choice without options": {ID: "q", Questions: []Question{
			{ID: 1, Prompt: "?", Kind: KindSingleChoice, CorrectAnswer: "A"},
		}},
		"answer not an option": {ID: "q", Questions: []Question{
			{ID: 1, Prompt: "?", Kind: KindSingleChoice, Options: []string{"A"}, CorrectAnswer: "a"},
		}},
		"free text without answer": {ID: "q", Questions: []Question{
			{ID: 1, Prompt: "?", Kind: KindFreeText},
		}},
		"confirmation with answer": {ID: "q", Questions: []Question{
			{ID: 1, Prompt: "?", Kind: KindConfirmation, CorrectAnswer: "yes"},
		}},
		"unknown kind": {ID: "q", Questions: []Question{
			{ID: 1, Prompt: "?", Kind: "radio", CorrectAnswer: "x"},
		}},
	}
	for name, quiz := range cases {
		t.Run(name, func(t *testing.T) {
			err := quiz.Validate()
			if !errors.Is(err, ErrInvalidQuiz) {
				t.Fatalf("expected ErrInvalidQuiz, got %v", err)
			}
		})
	}
}

func TestQuestionViewHidesAnswer(t *testing.T) {
	q := Question{ID: 1, Prompt: "?", Kind: KindSingleChoice, Options: []string{"A"}, CorrectAnswer: "A", Hint: "h"}
	view := q.View()
	if view.Prompt != "?" || view.Hint != "h" || len(view.Options) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
}
