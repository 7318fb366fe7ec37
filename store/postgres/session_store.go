package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medcore/medcore-server/sessions"
	"github.com/rs/zerolog/log"
)

// SessionStore implements sessions.Repo using PostgreSQL.
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a new PostgreSQL-backed refresh session store.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{
		pool: pool,
	}
}

var _ sessions.Repo = (*SessionStore)(nil)

// Store persists a new refresh session.
func (s *SessionStore) Store(ctx context.Context, session *sessions.RefreshSession) error {
	query := `
		INSERT INTO refresh_sessions (
			id, user_id, organization_id, token_hash,
			issued_at, expires_at, revoked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.OrganizationID,
		session.TokenHash,
		session.IssuedAt,
		session.ExpiresAt,
		session.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store refresh session: %w", err)
	}

	return nil
}

// Get retrieves a refresh session by token identifier, revoked or not.
func (s *SessionStore) Get(ctx context.Context, id string) (*sessions.RefreshSession, error) {
	query := `
		SELECT id, user_id, organization_id, token_hash,
		       issued_at, expires_at, revoked_at
		FROM refresh_sessions
		WHERE id = $1
	`

	var sess sessions.RefreshSession
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.OrganizationID,
		&sess.TokenHash,
		&sess.IssuedAt,
		&sess.ExpiresAt,
		&sess.RevokedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sessions.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh session: %w", err)
	}

	return &sess, nil
}

// Revoke marks a session revoked. Unknown or already revoked sessions are a
// no-op, which keeps logout idempotent.
func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	query := `
		UPDATE refresh_sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`

	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to revoke refresh session: %w", err)
	}
	return nil
}

// Rotate revokes the old session and inserts its replacement in one
// transaction. The revoked_at IS NULL guard makes the revoke conditional, so
// of two concurrent rotations exactly one observes sessions.ErrRevoked.
func (s *SessionStore) Rotate(ctx context.Context, oldID string, next *sessions.RefreshSession) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	revokeQuery := `
		UPDATE refresh_sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`
	tag, err := tx.Exec(ctx, revokeQuery, oldID)
	if err != nil {
		return fmt.Errorf("failed to revoke old session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sessions.ErrRevoked
	}

	insertQuery := `
		INSERT INTO refresh_sessions (
			id, user_id, organization_id, token_hash,
			issued_at, expires_at, revoked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, insertQuery,
		next.ID,
		next.UserID,
		next.OrganizationID,
		next.TokenHash,
		next.IssuedAt,
		next.ExpiresAt,
		next.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store rotated session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rotation: %w", err)
	}

	log.Debug().
		Str("old_session_id", oldID).
		Str("new_session_id", next.ID).
		Msg("Rotated refresh session")

	return nil
}

// RevokeAllForUser revokes every active session of the user. Called when
// refresh-token reuse is detected.
func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	query := `
		UPDATE refresh_sessions
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions for user: %w", err)
	}

	log.Debug().
		Str("user_id", userID).
		Int64("revoked", tag.RowsAffected()).
		Msg("Revoked all sessions for user")

	return nil
}
