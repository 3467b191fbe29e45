package domain

import "errors"

var (
	// ErrWrongPhase is returned when an operation is invoked outside the phase it is valid in.
	ErrWrongPhase = errors.New("operation not allowed in current phase")
	// ErrNotConfirmation is returned by the confirmation shortcut on other question kinds.
	ErrNotConfirmation = errors.New("current question is not a confirmation")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz indicates quiz content failed validation.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrGateClosed is returned when reveal content is requested before quiz completion.
	ErrGateClosed = errors.New("reveal gate not available")
)
