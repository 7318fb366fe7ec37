package sessions

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no session matches the token identifier.
	ErrNotFound = errors.New("refresh session not found")

	// ErrRevoked is returned by Rotate when the old session has already
	// been revoked or rotated. Two concurrent rotations of the same token
	// must observe this for exactly one of them.
	ErrRevoked = errors.New("refresh session already revoked")
)

// Repo manages server-side storage of refresh sessions, keyed by the token
// identifier (the jti claim of the signed refresh token).
type Repo interface {
	// Store persists a new session.
	Store(ctx context.Context, session *RefreshSession) error

	// Get returns the session with the given token identifier, revoked
	// or not.
	Get(ctx context.Context, id string) (*RefreshSession, error)

	// Revoke marks the session revoked. Revoking an unknown or already
	// revoked session is a no-op.
	Revoke(ctx context.Context, id string) error

	// Rotate atomically revokes the old session and stores the next one.
	// Returns ErrRevoked if the old session was already revoked, so
	// concurrent rotations cannot both mint a replacement.
	Rotate(ctx context.Context, oldID string, next *RefreshSession) error

	// RevokeAllForUser revokes every active session belonging to the user.
	// Used as a countermeasure when refresh-token reuse is detected.
	RevokeAllForUser(ctx context.Context, userID string) error
}
