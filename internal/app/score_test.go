package app_test

import (
	"testing"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

func TestComputeScore(t *testing.T) {
	scorer := app.ScoreCalculator{}

	answers := func(correct, wrong int) []domain.Answer {
		var out []domain.Answer
		for i := 0; i < correct; i++ {
			out = append(out, domain.Answer{QuestionIndex: i, IsCorrect: true})
		}
		for i := 0; i < wrong; i++ {
			out = append(out, domain.Answer{QuestionIndex: correct + i})
		}
		return out
	}

	if got := scorer.Compute(nil, 10); got != 0 {
		t.Fatalf("expected 0 for no answers, got %v", got)
	}
	if got := scorer.Compute(answers(1, 0), 10); !closeTo(got, 10.0) {
		t.Fatalf("expected 10.0, got %v", got)
	}
	if got := scorer.Compute(answers(2, 1), 10); !closeTo(got, 20.0) {
		t.Fatalf("expected 20.0 with a wrong answer mixed in, got %v", got)
	}
	if got := scorer.Compute(answers(3, 0), 3); !closeTo(got, 100.0) {
		t.Fatalf("expected 100.0, got %v", got)
	}
	// Unanswered questions stay in the denominator.
	if got := scorer.Compute(answers(1, 0), 4); !closeTo(got, 25.0) {
		t.Fatalf("expected 25.0, got %v", got)
	}
	if got := scorer.Compute(answers(1, 0), 0); got != 0 {
		t.Fatalf("expected guard for zero totalQuestions, got %v", got)
	}
}
