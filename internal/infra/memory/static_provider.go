package memory

import (
	"context"

	"quiz-engine/internal/domain"
)

// StaticProvider serves quizzes from an in-memory map (tests/demos).
type StaticProvider struct {
	quizzes map[string]domain.Quiz
}

func NewStaticProvider(quizzes map[string]domain.Quiz) *StaticProvider {
	return &StaticProvider{quizzes: quizzes}
}

func (p *StaticProvider) FetchQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := p.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (p *StaticProvider) Ping(context.Context) error { return nil }
