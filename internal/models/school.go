package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SchoolStatus is the tenant lifecycle state.
type SchoolStatus string

const (
	SchoolActive    SchoolStatus = "active"
	SchoolSuspended SchoolStatus = "suspended"
	SchoolTrial     SchoolStatus = "trial"
)

// TrialPeriod is the subscription window granted to a newly onboarded school.
const TrialPeriod = 30 * 24 * time.Hour

// School represents a tenant. All non-platform data is scoped to one school.
type School struct {
	ID                    uuid.UUID       `json:"id"`
	Name                  string          `json:"name"`
	ContactEmail          string          `json:"contact_email"`
	Status                SchoolStatus    `json:"status"`
	SubscriptionExpiresAt time.Time       `json:"subscription_expires_at"`
	LogoURL               *string         `json:"logo_url,omitempty"`
	PrimaryColor          *string         `json:"primary_color,omitempty"`
	Settings              json.RawMessage `json:"settings"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
