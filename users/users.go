package users

import (
	"time"
)

// RoleType represents a user's role within their organization
type RoleType string

const (
	RoleOwner  RoleType = "owner"  // First user of an organization, full control
	RoleAdmin  RoleType = "admin"  // Can manage users and settings within the organization
	RoleMember RoleType = "member" // Regular user within the organization
)

// Valid reports whether the role is one of the known role values
func (r RoleType) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// User represents an account that belongs to exactly one organization.
// Authorization decisions are always made on the (ID, OrganizationID) pair,
// never on the ID alone - two organizations may reuse the same email.
type User struct {
	ID             string    `json:"id,omitempty"`             // Unique identifier for the user
	FullName       string    `json:"fullName,omitempty"`       // Display name of the user
	Email          string    `json:"email,omitempty"`          // Email address, unique within the organization
	Phone          string    `json:"phone,omitempty"`          // Contact phone number
	PasswordHash   string    `json:"-"`                        // Hashed version of the user's password - never serialize
	Role           RoleType  `json:"role,omitempty"`           // Role within the organization
	OrganizationID string    `json:"organizationId,omitempty"` // Owning organization, never empty
	IsActive       bool      `json:"isActive,omitempty"`       // Inactive users cannot authenticate
	CreatedAt      time.Time `json:"createdAt,omitempty"`      // Date and time when the user was created
}
