package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RefreshSession is the server-side record backing a single refresh token.
// The client only ever holds the signed token; this record stores the token's
// ID (the JWT jti claim) and a hash of the full token for replay detection.
// One logical session exists per active refresh token; rotation revokes the
// old record and inserts a new one.
type RefreshSession struct {
	ID             string     // Token identifier (jti claim of the refresh token)
	UserID         string     // Subject user
	OrganizationID string     // Tenant the session belongs to
	TokenHash      string     // SHA-256 of the signed token string
	IssuedAt       time.Time  // When the refresh token was minted
	ExpiresAt      time.Time  // When the refresh token expires
	RevokedAt      *time.Time // Set on logout or rotation; nil while active
}

// Revoked reports whether the session has been revoked or rotated.
func (s *RefreshSession) Revoked() bool {
	return s.RevokedAt != nil
}

// HashToken returns the hex-encoded SHA-256 digest of a signed token string.
// Stored instead of the raw token so a leaked sessions table cannot be used
// to replay refresh tokens.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
