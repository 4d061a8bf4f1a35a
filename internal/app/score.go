package app

import "quiz-engine/internal/domain"

// ScoreCalculator derives the running percentage score. The denominator
// is always the full quiz length, so unanswered questions count against
// the score. SessionManager guarantees totalQuestions > 0 at start.
type ScoreCalculator struct{}

func (ScoreCalculator) Compute(answers []domain.Answer, totalQuestions int) float64 {
	if totalQuestions <= 0 {
		return 0
	}
	correct := 0
	for _, answer := range answers {
		if answer.IsCorrect {
			correct++
		}
	}
	return 100 * float64(correct) / float64(totalQuestions)
}
