package auth_test

import (
	"testing"

	"github.com/medcore/medcore-server/auth"
	"github.com/stretchr/testify/require"
)

func TestLoginInputValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      auth.LoginInput
		wantFields []string
	}{
		{
			name:  "valid",
			input: auth.LoginInput{Email: "a@acme.test", Password: "Secret123!"},
		},
		{
			name:  "valid with organization",
			input: auth.LoginInput{Email: "a@acme.test", Password: "x", OrganizationID: "org-1"},
		},
		{
			name:       "missing email",
			input:      auth.LoginInput{Password: "Secret123!"},
			wantFields: []string{"email"},
		},
		{
			name:       "bad email format",
			input:      auth.LoginInput{Email: "not-an-email", Password: "Secret123!"},
			wantFields: []string{"email"},
		},
		{
			name:       "everything missing",
			input:      auth.LoginInput{},
			wantFields: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			var validationErr *auth.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Len(t, validationErr.Fields, len(tt.wantFields))
			for i, field := range tt.wantFields {
				require.Equal(t, field, validationErr.Fields[i].Field)
			}
		})
	}
}

func TestRegisterInputReportsAllFailures(t *testing.T) {
	input := auth.RegisterOrganizationInput{
		Organization: auth.OrganizationInput{Name: "  "},
		Owner: auth.OwnerInput{
			FullName: "Alice",
			Email:    "alice@missing-tld",
			Password: "weak",
		},
	}

	err := input.Validate()
	var validationErr *auth.ValidationError
	require.ErrorAs(t, err, &validationErr)

	fields := make([]string, 0, len(validationErr.Fields))
	for _, fe := range validationErr.Fields {
		fields = append(fields, fe.Field)
	}
	require.ElementsMatch(t, []string{"organization.name", "owner.email", "owner.password"}, fields)
}

func TestRefreshInputValidate(t *testing.T) {
	require.NoError(t, (&auth.RefreshInput{RefreshToken: "some-token"}).Validate())

	err := (&auth.RefreshInput{}).Validate()
	var validationErr *auth.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "refreshToken", validationErr.Fields[0].Field)
}
