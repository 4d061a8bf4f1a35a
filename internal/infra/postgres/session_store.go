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

// SessionStore persists sessions as JSONB rows. The version column
// backs the conditional update: an UPDATE guarded on the expected
// version touches zero rows when a concurrent writer got there first.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	session.Version = 1
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, data, version) VALUES ($1, $2::jsonb, $3)`,
		session.ID, string(data), session.Version)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SessionStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	var raw []byte
	var version int64
	err := s.pool.QueryRow(ctx, `SELECT data, version FROM sessions WHERE id=$1`, id).Scan(&raw, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	// The column is authoritative over whatever the JSON carries.
	session.Version = version
	return session, nil
}

func (s *SessionStore) Update(ctx context.Context, session domain.Session, expectedVersion int64) error {
	session.Version = expectedVersion + 1
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET data=$2::jsonb, version=$3 WHERE id=$1 AND version=$4`,
		session.ID, string(data), session.Version, expectedVersion)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id=$1)`, session.ID).Scan(&exists); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		if !exists {
			return domain.ErrSessionNotFound
		}
		return domain.ErrVersionConflict
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
