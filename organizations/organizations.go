package organizations

import (
	"time"
)

// Organization is the tenant boundary of the system. Every user, session and
// token is scoped to exactly one organization. Organizations are never hard
// deleted; IsActive is flipped off instead.
type Organization struct {
	ID                  string    `json:"id,omitempty"`                  // Unique identifier for the organization
	Name                string    `json:"name,omitempty"`                // Display name
	Type                string    `json:"type,omitempty"`                // Kind of organization (e.g. "clinic", "pharmacy")
	DefaultLanguage     string    `json:"defaultLanguage,omitempty"`     // BCP 47 language tag used as the UI default
	BaseCurrency        string    `json:"baseCurrency,omitempty"`        // ISO 4217 currency code used for accounting
	SupportedCurrencies []string  `json:"supportedCurrencies,omitempty"` // Currencies the organization accepts
	Timezone            string    `json:"timezone,omitempty"`            // IANA timezone name
	IsActive            bool      `json:"isActive,omitempty"`            // Inactive organizations reject all authentication
	CreatedAt           time.Time `json:"createdAt,omitempty"`           // Date and time when the organization was created
}
