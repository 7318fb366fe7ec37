package organizations

import (
	"context"
	"errors"

	"github.com/medcore/medcore-server/users"
)

var (
	// ErrNotFound is returned when no active organization matches the query.
	ErrNotFound = errors.New("organization not found")

	// ErrConflict is returned when creation violates a uniqueness
	// constraint (e.g. owner email already taken within the organization).
	ErrConflict = errors.New("organization or user already exists")
)

// Repo manages persistence of organizations.
type Repo interface {
	// GetActive returns the active organization with the given ID.
	GetActive(ctx context.Context, id string) (*Organization, error)

	// CreateWithOwner atomically creates an organization together with its
	// first user. Either both records are created or neither is, so an
	// organization can never exist without an owner.
	CreateWithOwner(ctx context.Context, org *Organization, owner *users.User) error
}
