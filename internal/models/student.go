package models

import (
	"time"

	"github.com/google/uuid"
)

// StudentProfile wraps exactly one student user with attachment details.
// SchoolName is a snapshot taken at creation so roster exports survive renames.
type StudentProfile struct {
	ID                     uuid.UUID  `json:"id"`
	UserID                 uuid.UUID  `json:"user_id"`
	SchoolID               uuid.UUID  `json:"school_id"`
	SchoolName             string     `json:"school_name"`
	AdmissionNo            string     `json:"admission_no"`
	Department             string     `json:"department"`
	AttachmentOrg          *string    `json:"attachment_org,omitempty"`
	IndustrySupervisorID   *uuid.UUID `json:"industry_supervisor_id"`
	UniversitySupervisorID *uuid.UUID `json:"university_supervisor_id"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// StudentWithUser joins a profile with its owning user for list responses.
type StudentWithUser struct {
	Profile StudentProfile `json:"profile"`
	User    UserPublic     `json:"user"`
}
