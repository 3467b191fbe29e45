package memory

import (
	"context"

	"valentine-quiz-service/internal/domain"
)

// QuizRepository serves quizzes from a fixed map, typically the YAML config.
// It satisfies both app.QuizRepository and the loader interface of the Redis cache.
type QuizRepository struct {
	quizzes map[string]domain.Quiz
}

func NewQuizRepository(quizzes ...domain.Quiz) *QuizRepository {
	byID := make(map[string]domain.Quiz, len(quizzes))
	for _, quiz := range quizzes {
		byID[quiz.ID] = quiz
	}
	return &QuizRepository{quizzes: byID}
}

func (r *QuizRepository) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	quiz, ok := r.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (r *QuizRepository) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return r.GetQuiz(ctx, quizID)
}
