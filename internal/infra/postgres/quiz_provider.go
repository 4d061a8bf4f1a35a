package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-engine/internal/domain"
)

// QuizProvider loads quiz JSONB from Postgres. Used when no upstream
// quiz-content service is configured.
type QuizProvider struct {
	pool *pgxpool.Pool
}

func NewQuizProvider(pool *pgxpool.Pool) *QuizProvider {
	return &QuizProvider{pool: pool}
}

func (p *QuizProvider) FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (p *QuizProvider) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
