package domain

import "time"

// Kind identifies how a question is answered and checked.
type Kind string

const (
	KindSingleChoice Kind = "single-choice"
	KindFreeText     Kind = "free-text"
	KindConfirmation Kind = "confirmation"
)

// Phase is the discrete state of the quiz session.
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhaseIntro     Phase = "intro"
	PhaseActive    Phase = "active"
	PhaseLocked    Phase = "locked"
	PhaseCompleted Phase = "completed"
)

// Question is a single statically configured quiz step.
type Question struct {
	ID            int      `json:"id" yaml:"id" validate:"required"`
	Prompt        string   `json:"prompt" yaml:"prompt" validate:"required"`
	Kind          Kind     `json:"kind" yaml:"kind" validate:"required,oneof=single-choice free-text confirmation"`
	Options       []string `json:"options,omitempty" yaml:"options,omitempty" validate:"required_if=Kind single-choice,excluded_unless=Kind single-choice"`
	CorrectAnswer string   `json:"correctAnswer,omitempty" yaml:"correct_answer,omitempty" validate:"required_unless=Kind confirmation,excluded_if=Kind confirmation"`
	Hint          string   `json:"hint,omitempty" yaml:"hint,omitempty"`
	InputFormat   string   `json:"inputFormat,omitempty" yaml:"input_format,omitempty"`
}

// Quiz is the ordered question sequence played by one session.
type Quiz struct {
	ID        string     `json:"id" yaml:"id" validate:"required"`
	Questions []Question `json:"questions" yaml:"questions" validate:"required,min=1,dive"`
}

// QuestionView is the client-safe projection of a question (no answer).
type QuestionView struct {
	ID          int      `json:"id"`
	Prompt      string   `json:"prompt"`
	Kind        Kind     `json:"kind"`
	Options     []string `json:"options,omitempty"`
	Hint        string   `json:"hint,omitempty"`
	InputFormat string   `json:"inputFormat,omitempty"`
}

// View strips the correct answer.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:          q.ID,
		Prompt:      q.Prompt,
		Kind:        q.Kind,
		Options:     append([]string(nil), q.Options...),
		Hint:        q.Hint,
		InputFormat: q.InputFormat,
	}
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Phase           Phase
	Index           int
	Total           int
	Question        *Question
	LockoutExpiry   time.Time
	LockoutDuration time.Duration
	Taunt           string
}

// IsLast reports whether the current question is the final one.
func (s Snapshot) IsLast() bool {
	return s.Total > 0 && s.Index == s.Total-1
}

// AnswerResult is the outcome of a single submission.
type AnswerResult struct {
	Correct  bool
	Snapshot Snapshot
}

// LockoutRemaining is the countdown breakdown of an active lockout.
type LockoutRemaining struct {
	Remaining time.Duration `json:"-"`
	Millis    int64         `json:"remainingMs"`
	Minutes   int           `json:"minutes"`
	Seconds   int           `json:"seconds"`
	Progress  float64       `json:"progress"`
}

// Elapsed reports whether the lockout is over.
func (r LockoutRemaining) Elapsed() bool {
	return r.Remaining <= 0
}

// Gift is the content unlocked by the reveal gate.
type Gift struct {
	Message     string `json:"message" yaml:"message"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
	Link        string `json:"link,omitempty" yaml:"link,omitempty"`
	LinkText    string `json:"linkText,omitempty" yaml:"link_text,omitempty"`
}

// RevealStatus describes the reveal gate at one instant.
type RevealStatus struct {
	Open    bool      `json:"open"`
	Target  time.Time `json:"target"`
	Days    int64     `json:"days"`
	Hours   int64     `json:"hours"`
	Minutes int64     `json:"minutes"`
	Seconds int64     `json:"seconds"`
	Gift    *Gift     `json:"gift,omitempty"`
}

// LockoutView is the lockout part of a StateView.
type LockoutView struct {
	ExpiresAt time.Time        `json:"expiresAt"`
	Taunt     string           `json:"taunt,omitempty"`
	Remaining LockoutRemaining `json:"remaining"`
}

// StateView is what presentation layers render.
type StateView struct {
	Phase          Phase         `json:"phase"`
	QuestionNumber int           `json:"questionNumber"`
	TotalQuestions int           `json:"totalQuestions"`
	Question       *QuestionView `json:"question,omitempty"`
	IsLast         bool          `json:"isLast"`
	Lockout        *LockoutView  `json:"lockout,omitempty"`
}
