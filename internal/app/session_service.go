package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"quiz-engine/internal/domain"
)

// SessionStore persists sessions (in-memory, Redis, Postgres). Update is
// conditional on the version observed at read time, so two concurrent
// read-modify-write cycles cannot both win; the loser gets
// domain.ErrVersionConflict.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Update(ctx context.Context, session domain.Session, expectedVersion int64) error
	Ping(ctx context.Context) error
}

// QuizProvider supplies immutable quiz content keyed by quiz ID.
type QuizProvider interface {
	FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	Ping(ctx context.Context) error
}

// conflictRetries bounds the read-modify-write loop on version conflicts.
// Re-reading re-checks every precondition, so a concurrent duplicate for
// the same index surfaces as ErrDuplicateAnswer rather than a conflict.
const conflictRetries = 3

const (
	depConnected   = "connected"
	depUnreachable = "unreachable"
)

// SessionManager owns the session lifecycle state machine: creation,
// answer submission, status queries, and completion. It is the sole
// mutator of session state; stores only persist what they are handed.
type SessionManager struct {
	store     SessionStore
	quizzes   QuizProvider
	validator AnswerValidator
	scorer    ScoreCalculator
	broker    *ProgressBroker
	now       func() time.Time
	newID     func() string
}

func NewSessionManager(store SessionStore, quizzes QuizProvider, broker *ProgressBroker) *SessionManager {
	return &SessionManager{
		store:   store,
		quizzes: quizzes,
		broker:  broker,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Start fetches the quiz once, snapshots its questions into a new
// in-progress session, and persists it. A quiz with no questions cannot
// back a session.
func (m *SessionManager) Start(ctx context.Context, userID, quizID string) (domain.Session, error) {
	quiz, err := m.quizzes.FetchQuiz(ctx, quizID)
	if err != nil {
		return domain.Session{}, err
	}
	if len(quiz.Questions) == 0 {
		return domain.Session{}, domain.ErrInvalidQuiz
	}

	session := domain.Session{
		ID:             m.newID(),
		UserID:         userID,
		QuizID:         quizID,
		Snapshot:       append([]domain.Question(nil), quiz.Questions...),
		TotalQuestions: len(quiz.Questions),
		Answers:        []domain.Answer{},
		Status:         domain.StatusInProgress,
		StartedAt:      m.now(),
	}
	if err := m.store.Create(ctx, &session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Get reads a session by ID.
func (m *SessionManager) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	return m.store.GetByID(ctx, sessionID)
}

// SubmitAnswer judges one answer against the session's quiz snapshot and
// appends it. Preconditions are checked in order: session exists, session
// in progress, index in range, index not yet answered. The score written
// alongside the answer is recomputed from the answer set being committed,
// and the conditional update guarantees that set is current.
func (m *SessionManager) SubmitAnswer(ctx context.Context, sessionID string, questionIndex int, userAnswer string) (domain.AnswerResult, error) {
	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		session, err := m.store.GetByID(ctx, sessionID)
		if err != nil {
			return domain.AnswerResult{}, err
		}
		if session.Status != domain.StatusInProgress {
			return domain.AnswerResult{}, domain.ErrSessionCompleted
		}
		if questionIndex < 0 || questionIndex >= session.TotalQuestions {
			return domain.AnswerResult{}, domain.ErrQuestionIndexOutOfRange
		}
		if session.HasAnswered(questionIndex) {
			return domain.AnswerResult{}, domain.ErrDuplicateAnswer
		}

		question := session.Snapshot[questionIndex]
		correct := m.validator.Judge(userAnswer, question.CorrectAnswer)
		session.Answers = append(session.Answers, domain.Answer{
			QuestionIndex: questionIndex,
			UserAnswer:    userAnswer,
			IsCorrect:     correct,
			AnsweredAt:    m.now(),
		})
		session.Score = m.scorer.Compute(session.Answers, session.TotalQuestions)

		if err := m.store.Update(ctx, session, session.Version); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return domain.AnswerResult{}, err
		}

		m.publish(session)
		return domain.AnswerResult{
			IsCorrect:         correct,
			CorrectAnswer:     question.CorrectAnswer,
			Explanation:       question.Explanation,
			CurrentScore:      session.Score,
			QuestionsAnswered: len(session.Answers),
			TotalQuestions:    session.TotalQuestions,
		}, nil
	}
	return domain.AnswerResult{}, lastErr
}

// Complete transitions a session to completed. It may be called before
// every question is answered; the score keeps the full quiz length as
// its denominator. A second call fails rather than silently succeeding.
func (m *SessionManager) Complete(ctx context.Context, sessionID string) (domain.Session, error) {
	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		session, err := m.store.GetByID(ctx, sessionID)
		if err != nil {
			return domain.Session{}, err
		}
		if session.Status != domain.StatusInProgress {
			return domain.Session{}, domain.ErrSessionCompleted
		}

		completedAt := m.now()
		session.Status = domain.StatusCompleted
		session.CompletedAt = &completedAt
		session.Score = m.scorer.Compute(session.Answers, session.TotalQuestions)

		if err := m.store.Update(ctx, session, session.Version); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return domain.Session{}, err
		}

		m.publish(session)
		return session, nil
	}
	return domain.Session{}, lastErr
}

// Watch subscribes to progress updates for a session. The first message
// is a snapshot read after the watcher is registered, so an answer
// committed while subscribing still reaches the stream. The caller must
// invoke cancel to avoid leaks.
func (m *SessionManager) Watch(ctx context.Context, sessionID string) (<-chan domain.Progress, func(), error) {
	return m.broker.Subscribe(sessionID, func() (domain.Progress, error) {
		session, err := m.store.GetByID(ctx, sessionID)
		if err != nil {
			return domain.Progress{}, err
		}
		return m.progressOf(session), nil
	})
}

// Health pings both dependencies with the request's deadline.
func (m *SessionManager) Health(ctx context.Context) domain.Health {
	health := domain.Health{Status: "ok", Store: depConnected, ContentProvider: depConnected}
	if err := m.store.Ping(ctx); err != nil {
		health.Store = depUnreachable
		health.Status = "degraded"
	}
	if err := m.quizzes.Ping(ctx); err != nil {
		health.ContentProvider = depUnreachable
		health.Status = "degraded"
	}
	return health
}

func (m *SessionManager) publish(session domain.Session) {
	if m.broker == nil {
		return
	}
	m.broker.Publish(m.progressOf(session))
}

func (m *SessionManager) progressOf(session domain.Session) domain.Progress {
	return domain.Progress{
		SessionID:         session.ID,
		Status:            session.Status,
		Score:             session.Score,
		QuestionsAnswered: len(session.Answers),
		TotalQuestions:    session.TotalQuestions,
		UpdatedAt:         m.now(),
	}
}
