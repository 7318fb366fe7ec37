package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no user matches the query.
var ErrNotFound = errors.New("user not found")

// Repo manages persistence of users. Queries that take an organization ID
// fail closed: a user is only returned when every provided field matches.
type Repo interface {
	// GetActiveByEmail looks up an active user by email. When
	// organizationID is non-empty the lookup is scoped to that
	// organization.
	GetActiveByEmail(ctx context.Context, organizationID, email string) (*User, error)

	// GetActiveByID looks up an active user by ID within an organization.
	// Both fields are required together; any mismatch returns ErrNotFound.
	GetActiveByID(ctx context.Context, id, organizationID string) (*User, error)
}
