package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medcore/medcore-server/users"
)

// UserStore implements users.Repo using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

var _ users.Repo = (*UserStore)(nil)

const userColumns = `
	id, full_name, email, phone, password_hash,
	role, organization_id, is_active, created_at
`

// GetActiveByEmail retrieves an active user by email, optionally scoped to
// one organization. When the email exists in several organizations and no
// scope is given, the oldest account wins; the ordering keeps org-less login
// deterministic.
func (s *UserStore) GetActiveByEmail(ctx context.Context, organizationID, email string) (*users.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND is_active = TRUE
		  AND ($2 = '' OR organization_id = $2)
		ORDER BY created_at, id
		LIMIT 1
	`

	return s.scanUser(s.pool.QueryRow(ctx, query, email, organizationID))
}

// GetActiveByID retrieves an active user by (id, organization) pair. The
// query fails closed: any mismatch returns users.ErrNotFound.
func (s *UserStore) GetActiveByID(ctx context.Context, id, organizationID string) (*users.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND organization_id = $2 AND is_active = TRUE
	`

	return s.scanUser(s.pool.QueryRow(ctx, query, id, organizationID))
}

func (s *UserStore) scanUser(row pgx.Row) (*users.User, error) {
	var u users.User
	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.Role,
		&u.OrganizationID,
		&u.IsActive,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}
