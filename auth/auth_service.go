package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medcore/medcore-server/organizations"
	"github.com/medcore/medcore-server/sessions"
	"github.com/medcore/medcore-server/token"
	"github.com/medcore/medcore-server/users"
	"github.com/pkg/errors"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users         users.Repo         // Repository for user data
	Organizations organizations.Repo // Repository for organization data
	Sessions      sessions.Repo      // Repository for refresh sessions
}

// Service orchestrates registration, login, token refresh and logout. It has
// no transport concerns; the HTTP layer hands it validated input and maps its
// errors to status codes.
type Service struct {
	repos   Repos
	tokens  *token.Service
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes a new auth Service with required dependencies.
// Optional configuration can be provided via options (e.g., WithNowTime for
// testing).
func NewService(repos Repos, tokens *token.Service, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Organizations == nil {
		return nil, errors.New("[NewService] Organizations repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token service is required")
	}

	s := &Service{
		repos:   repos,
		tokens:  tokens,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// TokenPair is a freshly minted access/refresh token pair.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// RegisterResult is returned by RegisterOrganization.
type RegisterResult struct {
	Organization *organizations.Organization `json:"organization"`
	User         *users.User                 `json:"user"`
	Tokens       TokenPair                   `json:"tokens"`
}

// LoginResult is returned by Login.
type LoginResult struct {
	User         *users.User                 `json:"user"`
	Organization *organizations.Organization `json:"organization"`
	Tokens       TokenPair                   `json:"tokens"`
}

// RegisterOrganization creates a new organization together with its first
// user (the owner) and signs them in. The two records are created atomically
// so an organization can never exist without an owner.
func (s *Service) RegisterOrganization(ctx context.Context, input RegisterOrganizationInput) (*RegisterResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := users.HashPassword(input.Owner.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.RegisterOrganization] HashPassword")
	}

	now := s.nowTime()

	org := &organizations.Organization{
		ID:                  uuid.New().String(),
		Name:                input.Organization.Name,
		Type:                input.Organization.Type,
		DefaultLanguage:     input.Organization.DefaultLanguage,
		BaseCurrency:        input.Organization.BaseCurrency,
		SupportedCurrencies: input.Organization.SupportedCurrencies,
		Timezone:            input.Organization.Timezone,
		IsActive:            true,
		CreatedAt:           now,
	}

	owner := &users.User{
		ID:             uuid.New().String(),
		FullName:       input.Owner.FullName,
		Email:          input.Owner.Email,
		Phone:          input.Owner.Phone,
		PasswordHash:   passwordHash,
		Role:           users.RoleOwner,
		OrganizationID: org.ID,
		IsActive:       true,
		CreatedAt:      now,
	}

	if err := s.repos.Organizations.CreateWithOwner(ctx, org, owner); err != nil {
		if errors.Is(err, organizations.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, errors.Wrap(err, "[Service.RegisterOrganization] CreateWithOwner")
	}

	tokens, err := s.issueTokenPair(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.RegisterOrganization] issueTokenPair")
	}

	return &RegisterResult{
		Organization: org,
		User:         sanitize(owner),
		Tokens:       *tokens,
	}, nil
}

// Login verifies the credentials and issues a fresh token pair. Unknown user
// and wrong password produce the same ErrInvalidCredentials so the response
// leaks nothing about which part failed.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetActiveByEmail(ctx, input.OrganizationID, input.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Service.Login] GetActiveByEmail")
	}

	ok, err := users.CheckPasswordHash(input.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] CheckPasswordHash")
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	org, err := s.repos.Organizations.GetActive(ctx, user.OrganizationID)
	if err != nil {
		if errors.Is(err, organizations.ErrNotFound) {
			// Organization deactivated since the user was created.
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Service.Login] GetActive")
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] issueTokenPair")
	}

	return &LoginResult{
		User:         sanitize(user),
		Organization: org,
		Tokens:       *tokens,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued, with the role read from the stored user record. The user
// and organization must both still be active. Presenting an already rotated
// or revoked token fails with ErrTokenReuse and, as a hardening measure,
// revokes every session of the affected user.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.repos.Sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, ErrTokenReuse
		}
		return nil, errors.Wrap(err, "[Service.Refresh] Sessions.Get")
	}

	if session.Revoked() {
		// Replay of a consumed token. Assume theft and drop every
		// session for this user.
		if err := s.repos.Sessions.RevokeAllForUser(ctx, session.UserID); err != nil {
			return nil, errors.Wrap(err, "[Service.Refresh] RevokeAllForUser")
		}
		return nil, ErrTokenReuse
	}

	if sessions.HashToken(refreshToken) != session.TokenHash {
		// Valid signature and known jti but a different token body.
		return nil, token.ErrTokenInvalid
	}

	// Re-resolve the user: refresh tokens carry no role claim, and a user
	// or organization deactivated since login must stop refreshing here
	// rather than ride out the refresh lifetime.
	user, err := s.repos.Users.GetActiveByID(ctx, session.UserID, session.OrganizationID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Service.Refresh] GetActiveByID")
	}

	if _, err := s.repos.Organizations.GetActive(ctx, session.OrganizationID); err != nil {
		if errors.Is(err, organizations.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Service.Refresh] Organizations.GetActive")
	}

	access, err := s.tokens.IssueAccessToken(session.UserID, session.OrganizationID, user.Role)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] IssueAccessToken")
	}

	refresh, err := s.tokens.IssueRefreshToken(session.UserID, session.OrganizationID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] IssueRefreshToken")
	}

	next := &sessions.RefreshSession{
		ID:             refresh.ID,
		UserID:         session.UserID,
		OrganizationID: session.OrganizationID,
		TokenHash:      sessions.HashToken(refresh.Token),
		IssuedAt:       refresh.IssuedAt,
		ExpiresAt:      refresh.ExpiresAt,
	}

	if err := s.repos.Sessions.Rotate(ctx, session.ID, next); err != nil {
		if errors.Is(err, sessions.ErrRevoked) {
			// A concurrent refresh won the rotation.
			return nil, ErrTokenReuse
		}
		return nil, errors.Wrap(err, "[Service.Refresh] Sessions.Rotate")
	}

	return &TokenPair{
		AccessToken:      access.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// Logout revokes the session behind the refresh token. It is idempotent:
// revoking an unknown, expired or already revoked token succeeds silently so
// nothing is disclosed about which tokens exist.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			// An expired token cannot be refreshed anyway.
			return nil
		}
		return err
	}

	if err := s.repos.Sessions.Revoke(ctx, claims.ID); err != nil {
		return errors.Wrap(err, "[Service.Logout] Sessions.Revoke")
	}
	return nil
}

// CurrentUser resolves the authenticated identity to its user and
// organization records. Both must be active; either one missing or inactive
// yields ErrNotFound, even when the access token is still valid.
func (s *Service) CurrentUser(ctx context.Context, userID, organizationID string) (*users.User, *organizations.Organization, error) {
	user, err := s.repos.Users.GetActiveByID(ctx, userID, organizationID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "[Service.CurrentUser] GetActiveByID")
	}

	org, err := s.repos.Organizations.GetActive(ctx, organizationID)
	if err != nil {
		if errors.Is(err, organizations.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "[Service.CurrentUser] GetActive")
	}

	return sanitize(user), org, nil
}

// sanitize strips the password hash from a user record before it crosses the
// service boundary.
func sanitize(user *users.User) *users.User {
	clone := *user
	clone.PasswordHash = ""
	return &clone
}

func (s *Service) issueTokenPair(ctx context.Context, user *users.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.OrganizationID, user.Role)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.issueTokenPair] IssueAccessToken")
	}

	refresh, err := s.tokens.IssueRefreshToken(user.ID, user.OrganizationID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.issueTokenPair] IssueRefreshToken")
	}

	session := &sessions.RefreshSession{
		ID:             refresh.ID,
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		TokenHash:      sessions.HashToken(refresh.Token),
		IssuedAt:       refresh.IssuedAt,
		ExpiresAt:      refresh.ExpiresAt,
	}
	if err := s.repos.Sessions.Store(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[Service.issueTokenPair] Sessions.Store")
	}

	return &TokenPair{
		AccessToken:      access.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}
