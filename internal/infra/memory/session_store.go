package memory

import (
	"context"
	"fmt"
	"sync"

	"quiz-engine/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. It
// honors the same conditional-update contract as the durable stores so
// the state machine behaves identically against it.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session)}
}

func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	session.Version = 1
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) GetByID(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *SessionStore) Update(_ context.Context, session domain.Session, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[session.ID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	session.Version = expectedVersion + 1
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Ping(context.Context) error { return nil }
