package domain

import "time"

// SessionStatus tracks where a session is in its lifecycle. The only
// transition is in_progress -> completed, and it happens at most once.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// Question is one entry of a quiz: the prompt shown to the user, the
// canonical answer it is judged against, and the explanation returned
// after judging.
type Question struct {
	Prompt        string `json:"prompt"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// Quiz is immutable content supplied by the quiz-content provider.
type Quiz struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Answer is a judged response, embedded in a session. UserAnswer is
// stored verbatim; judging happens before the record is created.
type Answer struct {
	QuestionIndex int       `json:"questionIndex"`
	UserAnswer    string    `json:"userAnswer"`
	IsCorrect     bool      `json:"isCorrect"`
	AnsweredAt    time.Time `json:"answeredAt"`
}

// Session is one user's attempt at one quiz, from start to completion.
// Snapshot holds the quiz questions captured when the session started;
// all judging reads from it, never from the live provider. Version is
// the store's compare-and-swap token and is managed by the stores.
type Session struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	QuizID         string        `json:"quizId"`
	Snapshot       []Question    `json:"snapshot"`
	TotalQuestions int           `json:"totalQuestions"`
	Answers        []Answer      `json:"answers"`
	Score          float64       `json:"score"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"startedAt"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
	Version        int64         `json:"version"`
}

// HasAnswered reports whether the session already holds an answer for
// the given question index.
func (s Session) HasAnswered(index int) bool {
	for _, answer := range s.Answers {
		if answer.QuestionIndex == index {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand across store boundaries.
func (s Session) Clone() Session {
	out := s
	out.Snapshot = append([]Question(nil), s.Snapshot...)
	out.Answers = append([]Answer(nil), s.Answers...)
	if s.CompletedAt != nil {
		completedAt := *s.CompletedAt
		out.CompletedAt = &completedAt
	}
	return out
}

// AnswerResult summarizes the outcome of a submission for the caller.
type AnswerResult struct {
	IsCorrect         bool    `json:"isCorrect"`
	CorrectAnswer     string  `json:"correctAnswer"`
	Explanation       string  `json:"explanation"`
	CurrentScore      float64 `json:"currentScore"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	TotalQuestions    int     `json:"totalQuestions"`
}

// Progress is the watcher-facing view of a session, broadcast after
// every accepted mutation.
type Progress struct {
	SessionID         string        `json:"sessionId"`
	Status            SessionStatus `json:"status"`
	Score             float64       `json:"score"`
	QuestionsAnswered int           `json:"questionsAnswered"`
	TotalQuestions    int           `json:"totalQuestions"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Health reports reachability of the engine's two dependencies.
type Health struct {
	Status          string
	Store           string
	ContentProvider string
}
