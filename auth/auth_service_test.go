package auth_test

import (
	"context"
	"testing"

	"github.com/medcore/medcore-server/auth"
	"github.com/medcore/medcore-server/organizations"
	"github.com/medcore/medcore-server/store/memory"
	"github.com/medcore/medcore-server/token"
	"github.com/medcore/medcore-server/users"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-1234"
	refreshSecret = "refresh-secret-5678"
	testOrgName   = "Acme Clinic"
	testOwnerName = "Alice Smith"
	testEmail     = "a@acme.test"
	testPassword  = "Secret123!"
)

// testFixture holds all test dependencies
type testFixture struct {
	store   *memory.Store
	tokens  *token.Service
	service *auth.Service
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	store := memory.New()

	tokens, err := token.New(
		token.NewHMACSigner(accessSecret),
		token.NewHMACSigner(refreshSecret),
	)
	require.NoError(t, err)

	repos := auth.Repos{
		Users:         store.Users(),
		Organizations: store.Organizations(),
		Sessions:      store.Sessions(),
	}

	service, err := auth.NewService(repos, tokens)
	require.NoError(t, err)

	return &testFixture{
		store:   store,
		tokens:  tokens,
		service: service,
	}
}

func registerInput(orgName, email string) auth.RegisterOrganizationInput {
	return auth.RegisterOrganizationInput{
		Organization: auth.OrganizationInput{
			Name:                orgName,
			Type:                "clinic",
			DefaultLanguage:     "en",
			BaseCurrency:        "USD",
			SupportedCurrencies: []string{"USD", "EUR"},
			Timezone:            "UTC",
		},
		Owner: auth.OwnerInput{
			FullName: testOwnerName,
			Email:    email,
			Phone:    "+15550100",
			Password: testPassword,
		},
	}
}

func (f *testFixture) register(t *testing.T, orgName, email string) *auth.RegisterResult {
	t.Helper()
	result, err := f.service.RegisterOrganization(context.Background(), registerInput(orgName, email))
	require.NoError(t, err)
	return result
}

func TestRegisterOrganization(t *testing.T) {
	f := setupTestFixture(t)

	result := f.register(t, testOrgName, testEmail)

	require.Equal(t, testOrgName, result.Organization.Name)
	require.True(t, result.Organization.IsActive)
	require.Equal(t, users.RoleOwner, result.User.Role)
	require.Equal(t, result.Organization.ID, result.User.OrganizationID)
	require.Empty(t, result.User.PasswordHash)

	claims, err := f.tokens.VerifyAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, claims.Subject)
	require.Equal(t, result.Organization.ID, claims.OrganizationID)
	require.Equal(t, users.RoleOwner, claims.Role)
}

func TestRegisterOrganizationValidation(t *testing.T) {
	f := setupTestFixture(t)

	input := auth.RegisterOrganizationInput{} // everything missing

	_, err := f.service.RegisterOrganization(context.Background(), input)
	var validationErr *auth.ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Every failing field must be reported, not just the first.
	fields := make(map[string]bool)
	for _, fe := range validationErr.Fields {
		fields[fe.Field] = true
	}
	require.True(t, fields["organization.name"])
	require.True(t, fields["owner.fullName"])
	require.True(t, fields["owner.email"])
	require.True(t, fields["owner.password"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	first := f.register(t, testOrgName, testEmail)

	// The same email inside the same organization violates the
	// (organization, email) uniqueness constraint.
	dupOrg := &organizations.Organization{ID: "org-dup", Name: "Dup", IsActive: true}
	dupOwner := &users.User{
		ID:             "user-dup",
		Email:          testEmail,
		OrganizationID: first.Organization.ID,
		Role:           users.RoleOwner,
		IsActive:       true,
	}
	err := f.store.Organizations().CreateWithOwner(ctx, dupOrg, dupOwner)
	require.ErrorIs(t, err, organizations.ErrConflict)

	// A fresh registration creates a fresh organization, so the same
	// email in a different organization succeeds.
	second, err := f.service.RegisterOrganization(ctx, registerInput("Beta Clinic", testEmail))
	require.NoError(t, err)
	require.NotEqual(t, first.Organization.ID, second.Organization.ID)
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)

	result, err := f.service.Login(context.Background(), auth.LoginInput{
		Email:    testEmail,
		Password: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, result.User.ID)
	require.Equal(t, registered.Organization.ID, result.Organization.ID)

	claims, err := f.tokens.VerifyAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, claims.Subject)
	require.Equal(t, registered.Organization.ID, claims.OrganizationID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t, testOrgName, testEmail)

	_, err := f.service.Login(context.Background(), auth.LoginInput{
		Email:    testEmail,
		Password: "Wrong123!",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t, testOrgName, testEmail)

	_, errUnknown := f.service.Login(context.Background(), auth.LoginInput{
		Email:    "nobody@acme.test",
		Password: testPassword,
	})
	_, errWrongPassword := f.service.Login(context.Background(), auth.LoginInput{
		Email:    testEmail,
		Password: "Wrong123!",
	})

	// Unknown user and wrong password must be indistinguishable.
	require.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
	require.Equal(t, errUnknown, errWrongPassword)
}

func TestLoginScopedToOrganization(t *testing.T) {
	f := setupTestFixture(t)
	first := f.register(t, testOrgName, testEmail)
	second := f.register(t, "Beta Clinic", testEmail)

	result, err := f.service.Login(context.Background(), auth.LoginInput{
		Email:          testEmail,
		Password:       testPassword,
		OrganizationID: second.Organization.ID,
	})
	require.NoError(t, err)
	require.Equal(t, second.User.ID, result.User.ID)
	require.NotEqual(t, first.User.ID, result.User.ID)
}

func TestLoginDeactivatedOrganization(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)

	f.store.SetOrganizationActive(registered.Organization.ID, false)

	_, err := f.service.Login(context.Background(), auth.LoginInput{
		Email:    testEmail,
		Password: testPassword,
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRefreshRotation(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)
	ctx := context.Background()

	first := registered.Tokens.RefreshToken

	pair, err := f.service.Refresh(ctx, first)
	require.NoError(t, err)
	require.NotEqual(t, first, pair.RefreshToken)

	// The new access token must verify.
	claims, err := f.tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, claims.Subject)

	// Replaying the rotated token fails and revokes everything.
	_, err = f.service.Refresh(ctx, first)
	require.ErrorIs(t, err, auth.ErrTokenReuse)
	require.Zero(t, f.store.ActiveSessionCount(registered.User.ID))

	// The pair minted by the rotation is dead too.
	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, auth.ErrTokenReuse)
}

func TestRefreshKeepsRole(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)

	pair, err := f.service.Refresh(context.Background(), registered.Tokens.RefreshToken)
	require.NoError(t, err)

	// Refresh tokens carry no role claim; the rotated access token must
	// get it from the stored user record.
	claims, err := f.tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, users.RoleOwner, claims.Role)
}

func TestRefreshDeactivatedUser(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)

	f.store.SetUserActive(registered.User.ID, false)

	_, err := f.service.Refresh(context.Background(), registered.Tokens.RefreshToken)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRefreshDeactivatedOrganization(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)

	f.store.SetOrganizationActive(registered.Organization.ID, false)

	_, err := f.service.Refresh(context.Background(), registered.Tokens.RefreshToken)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRefreshGarbageToken(t *testing.T) {
	f := setupTestFixture(t)
	f.register(t, testOrgName, testEmail)

	_, err := f.service.Refresh(context.Background(), "not-a-token")
	require.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestLogoutThenRefresh(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)
	ctx := context.Background()

	refreshToken := registered.Tokens.RefreshToken

	require.NoError(t, f.service.Logout(ctx, refreshToken))

	_, err := f.service.Refresh(ctx, refreshToken)
	require.ErrorIs(t, err, auth.ErrTokenReuse)
}

func TestLogoutIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)
	ctx := context.Background()

	refreshToken := registered.Tokens.RefreshToken

	require.NoError(t, f.service.Logout(ctx, refreshToken))
	require.NoError(t, f.service.Logout(ctx, refreshToken))
}

func TestCurrentUser(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)
	ctx := context.Background()

	user, org, err := f.service.CurrentUser(ctx, registered.User.ID, registered.Organization.ID)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, user.ID)
	require.Equal(t, testOrgName, org.Name)
}

func TestCurrentUserDeactivatedOrganization(t *testing.T) {
	f := setupTestFixture(t)
	registered := f.register(t, testOrgName, testEmail)
	ctx := context.Background()

	f.store.SetOrganizationActive(registered.Organization.ID, false)

	_, _, err := f.service.CurrentUser(ctx, registered.User.ID, registered.Organization.ID)
	require.ErrorIs(t, err, auth.ErrNotFound)
}

func TestCurrentUserCrossTenantMismatch(t *testing.T) {
	f := setupTestFixture(t)
	first := f.register(t, testOrgName, testEmail)
	second := f.register(t, "Beta Clinic", "b@beta.test")

	// Valid user ID with the wrong organization fails closed.
	_, _, err := f.service.CurrentUser(context.Background(), first.User.ID, second.Organization.ID)
	require.ErrorIs(t, err, auth.ErrNotFound)
}
