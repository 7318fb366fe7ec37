package token_test

import (
	"testing"
	"time"

	"github.com/medcore/medcore-server/token"
	"github.com/medcore/medcore-server/users"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-1234"
	refreshSecret = "refresh-secret-5678"
	testUserID    = "user-1"
	testOrgID     = "org-1"
)

func newService(t *testing.T, options ...token.ServiceOption) *token.Service {
	t.Helper()

	svc, err := token.New(
		token.NewHMACSigner(accessSecret),
		token.NewHMACSigner(refreshSecret),
		options...,
	)
	require.NoError(t, err)
	return svc
}

func TestNewRejectsSharedSecret(t *testing.T) {
	_, err := token.New(
		token.NewHMACSigner(accessSecret),
		token.NewHMACSigner(accessSecret),
	)
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newService(t)

	issued, err := svc.IssueAccessToken(testUserID, testOrgID, users.RoleOwner)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.ID)

	claims, err := svc.VerifyAccessToken(issued.Token)
	require.NoError(t, err)
	require.Equal(t, testUserID, claims.Subject)
	require.Equal(t, testOrgID, claims.OrganizationID)
	require.Equal(t, users.RoleOwner, claims.Role)
	require.Equal(t, issued.ID, claims.ID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := newService(t)

	issued, err := svc.IssueRefreshToken(testUserID, testOrgID)
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(issued.Token)
	require.NoError(t, err)
	require.Equal(t, testUserID, claims.Subject)
	require.Equal(t, testOrgID, claims.OrganizationID)
	require.Empty(t, claims.Role)
}

func TestSecretSeparation(t *testing.T) {
	svc := newService(t)

	access, err := svc.IssueAccessToken(testUserID, testOrgID, users.RoleMember)
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken(testUserID, testOrgID)
	require.NoError(t, err)

	// A refresh token must not verify as an access token and vice versa.
	_, err = svc.VerifyAccessToken(refresh.Token)
	require.ErrorIs(t, err, token.ErrTokenInvalid)

	_, err = svc.VerifyRefreshToken(access.Token)
	require.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Now()
	svc := newService(t,
		token.WithExpiry(15*time.Minute, 24*time.Hour),
		token.WithNowFunc(func() time.Time { return now }),
	)

	issued, err := svc.IssueAccessToken(testUserID, testOrgID, users.RoleMember)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(issued.Token)
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = svc.VerifyAccessToken(issued.Token)
	require.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestVerifyGarbage(t *testing.T) {
	svc := newService(t)

	for _, raw := range []string{"", "garbage", "a.b.c", "ey.ey.ey"} {
		_, err := svc.VerifyAccessToken(raw)
		require.ErrorIs(t, err, token.ErrTokenInvalid, "token %q", raw)
	}
}

func TestVerifyTokenFromDifferentSecret(t *testing.T) {
	svc := newService(t)

	other, err := token.New(
		token.NewHMACSigner("other-access-secret"),
		token.NewHMACSigner("other-refresh-secret"),
	)
	require.NoError(t, err)

	issued, err := other.IssueAccessToken(testUserID, testOrgID, users.RoleMember)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(issued.Token)
	require.ErrorIs(t, err, token.ErrTokenInvalid)
}
