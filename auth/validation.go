package auth

import (
	"fmt"
	"strings"

	"github.com/medcore/medcore-server/users"
)

// FieldError describes a single failing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every failing field of a request, not just the
// first one.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// fieldErrors accumulates field failures and builds the final error.
type fieldErrors struct {
	fields []FieldError
}

func (fe *fieldErrors) add(field, message string) {
	fe.fields = append(fe.fields, FieldError{Field: field, Message: message})
}

func (fe *fieldErrors) err() error {
	if len(fe.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe.fields}
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at:], ".")
}

// OrganizationInput carries the organization fields of a registration
// request.
type OrganizationInput struct {
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	DefaultLanguage     string   `json:"defaultLanguage"`
	BaseCurrency        string   `json:"baseCurrency"`
	SupportedCurrencies []string `json:"supportedCurrencies"`
	Timezone            string   `json:"timezone"`
}

// OwnerInput carries the first-user fields of a registration request.
type OwnerInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RegisterOrganizationInput is the request body for organization
// registration.
type RegisterOrganizationInput struct {
	Organization OrganizationInput `json:"organization"`
	Owner        OwnerInput        `json:"owner"`
}

// Validate checks every field and reports all failures together.
func (in *RegisterOrganizationInput) Validate() error {
	fe := &fieldErrors{}

	if strings.TrimSpace(in.Organization.Name) == "" {
		fe.add("organization.name", "must not be empty")
	}
	if strings.TrimSpace(in.Owner.FullName) == "" {
		fe.add("owner.fullName", "must not be empty")
	}
	if !validEmail(in.Owner.Email) {
		fe.add("owner.email", "must be a valid email address")
	}
	if err := users.ValidatePasswordStrength(in.Owner.Password); err != nil {
		fe.add("owner.password", err.Error())
	}

	return fe.err()
}

// LoginInput is the request body for login. OrganizationID optionally narrows
// the user lookup to a single tenant.
type LoginInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	OrganizationID string `json:"organizationId,omitempty"`
}

// Validate checks every field and reports all failures together.
func (in *LoginInput) Validate() error {
	fe := &fieldErrors{}

	if !validEmail(in.Email) {
		fe.add("email", "must be a valid email address")
	}
	if in.Password == "" {
		fe.add("password", "must not be empty")
	}

	return fe.err()
}

// RefreshInput is the request body for token refresh and logout.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate checks every field and reports all failures together.
func (in *RefreshInput) Validate() error {
	fe := &fieldErrors{}

	if strings.TrimSpace(in.RefreshToken) == "" {
		fe.add("refreshToken", "must not be empty")
	}

	return fe.err()
}
