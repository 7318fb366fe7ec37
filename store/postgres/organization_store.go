package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medcore/medcore-server/organizations"
	"github.com/medcore/medcore-server/users"
	"github.com/rs/zerolog/log"
)

// OrganizationStore implements organizations.Repo using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with the other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

var _ organizations.Repo = (*OrganizationStore)(nil)

// GetActive retrieves an active organization by ID.
func (s *OrganizationStore) GetActive(ctx context.Context, id string) (*organizations.Organization, error) {
	query := `
		SELECT
			id, name, type, default_language, base_currency,
			supported_currencies, timezone, is_active, created_at
		FROM organizations
		WHERE id = $1 AND is_active = TRUE
	`

	var org organizations.Organization
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Type,
		&org.DefaultLanguage,
		&org.BaseCurrency,
		&org.SupportedCurrencies,
		&org.Timezone,
		&org.IsActive,
		&org.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organizations.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return &org, nil
}

// CreateWithOwner creates an organization and its first user in a single
// transaction. Either both rows are committed or neither is.
func (s *OrganizationStore) CreateWithOwner(ctx context.Context, org *organizations.Organization, owner *users.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	orgQuery := `
		INSERT INTO organizations (
			id, name, type, default_language, base_currency,
			supported_currencies, timezone, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, orgQuery,
		org.ID,
		org.Name,
		org.Type,
		org.DefaultLanguage,
		org.BaseCurrency,
		org.SupportedCurrencies,
		org.Timezone,
		org.IsActive,
		org.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return organizations.ErrConflict
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	userQuery := `
		INSERT INTO users (
			id, full_name, email, phone, password_hash,
			role, organization_id, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, userQuery,
		owner.ID,
		owner.FullName,
		owner.Email,
		owner.Phone,
		owner.PasswordHash,
		owner.Role,
		owner.OrganizationID,
		owner.IsActive,
		owner.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return organizations.ErrConflict
		}
		return fmt.Errorf("failed to create owner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug().
		Str("organization_id", org.ID).
		Str("owner_id", owner.ID).
		Msg("Created organization with owner")

	return nil
}
