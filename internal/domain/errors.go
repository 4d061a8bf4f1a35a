package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for an ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuizNotFound indicates the content provider has no such quiz.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuiz indicates the quiz has no questions and cannot back a session.
	ErrInvalidQuiz = errors.New("quiz has no questions")
	// ErrSessionCompleted is returned when a mutation targets a completed session.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrQuestionIndexOutOfRange indicates a question index outside the quiz snapshot.
	ErrQuestionIndexOutOfRange = errors.New("question index out of range")
	// ErrDuplicateAnswer indicates the question index was already answered.
	ErrDuplicateAnswer = errors.New("question already answered")
	// ErrVersionConflict indicates a conditional update lost to a concurrent writer.
	ErrVersionConflict = errors.New("session modified concurrently")
)
