package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/medcore/medcore-server/users"
	"github.com/pkg/errors"
)

// Claims are the verified contents of an access or refresh token. The subject
// is the user ID; OrganizationID scopes every authorization decision to the
// user's tenant. Role is only present on access tokens.
type Claims struct {
	OrganizationID string         `json:"orgId"`
	Role           users.RoleType `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed token together with its metadata. ID is the
// jti claim; for refresh tokens it doubles as the persisted session key.
type IssuedToken struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service issues and verifies the two token types. Access and refresh tokens
// are signed with distinct secrets so that compromise of one cannot mint the
// other. Verification is pure CPU work, no I/O.
type Service struct {
	accessSigner  Signer
	refreshSigner Signer
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	nowFunc       func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithExpiry sets the access and refresh token lifetimes.
func WithExpiry(accessExpiry, refreshExpiry time.Duration) ServiceOption {
	return func(s *Service) {
		s.accessExpiry = accessExpiry
		s.refreshExpiry = refreshExpiry
	}
}

// WithIssuer sets the iss claim written into every token.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// New creates a token Service. The two signers must not share a secret;
// secret separation is a hard invariant of the design.
func New(accessSigner, refreshSigner Signer, options ...ServiceOption) (*Service, error) {
	if accessSigner == nil {
		return nil, errors.New("[token.New] access signer is required")
	}
	if refreshSigner == nil {
		return nil, errors.New("[token.New] refresh signer is required")
	}
	if a, ok := accessSigner.(*HMACsigner); ok {
		if r, ok := refreshSigner.(*HMACsigner); ok && a.sameSecret(r) {
			return nil, errors.New("[token.New] access and refresh signing secrets must differ")
		}
	}

	s := &Service{
		accessSigner:  accessSigner,
		refreshSigner: refreshSigner,
		issuer:        "medcore",
		nowFunc:       time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.accessExpiry == 0 {
		s.accessExpiry = 15 * time.Minute
	}
	if s.refreshExpiry == 0 {
		s.refreshExpiry = 7 * 24 * time.Hour
	}

	return s, nil
}

// IssueAccessToken signs a short-lived token carrying the user's identity,
// organization and role.
func (s *Service) IssueAccessToken(userID, organizationID string, role users.RoleType) (*IssuedToken, error) {
	return s.issue(s.accessSigner, userID, organizationID, role, s.accessExpiry)
}

// IssueRefreshToken signs a longer-lived token carrying identity and
// organization only. The returned ID must be persisted as the session key so
// rotation and revocation can be enforced server side.
func (s *Service) IssueRefreshToken(userID, organizationID string) (*IssuedToken, error) {
	return s.issue(s.refreshSigner, userID, organizationID, "", s.refreshExpiry)
}

func (s *Service) issue(signer Signer, userID, organizationID string, role users.RoleType, expiry time.Duration) (*IssuedToken, error) {
	now := s.nowFunc()
	expiresAt := now.Add(expiry)
	jti := uuid.New().String()

	claims := Claims{
		OrganizationID: organizationID,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	signed, err := signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.issue] signer.Sign")
	}

	return &IssuedToken{
		Token:     signed,
		ID:        jti,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyAccessToken checks signature and expiry of an access token and
// returns its claims. Fails with ErrTokenExpired or ErrTokenInvalid.
func (s *Service) VerifyAccessToken(rawToken string) (*Claims, error) {
	return s.verify(s.accessSigner, rawToken)
}

// VerifyRefreshToken checks signature and expiry of a refresh token. The
// caller must additionally check the persisted session for the returned jti;
// rotation and revocation cannot be detected by signature alone.
func (s *Service) VerifyRefreshToken(rawToken string) (*Claims, error) {
	return s.verify(s.refreshSigner, rawToken)
}

func (s *Service) verify(signer Signer, rawToken string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, signer.GetVerificationKey,
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(s.nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid || claims.Subject == "" || claims.OrganizationID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
