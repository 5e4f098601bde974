package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit action labels.
const (
	ActionLogin              = "LOGIN"
	ActionAccountLocked      = "ACCOUNT_LOCKED"
	ActionPasswordReset      = "PASSWORD_RESET"
	ActionSchoolCreated      = "SCHOOL_CREATED"
	ActionSchoolStatusChange = "SCHOOL_STATUS_CHANGED"
	ActionStudentCreated     = "STUDENT_CREATED"
	ActionBulkImport         = "STUDENTS_BULK_IMPORTED"
	ActionSupervisorCreated  = "SUPERVISOR_CREATED"
	ActionSupervisorAssigned = "SUPERVISOR_ASSIGNED"
	ActionMeetingCreated     = "MEETING_CREATED"
	ActionMeetingConfirmed   = "MEETING_CONFIRMED"
	ActionMeetingResponse    = "MEETING_RESPONSE_" // suffixed with the response type
	ActionLogbookReviewed    = "LOGBOOK_REVIEWED"
)

// AuditLog is an immutable record of a platform action. UserID is nil for
// system-originated actions. Rows are never updated or deleted.
type AuditLog struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id"`
	Action     string          `json:"action"`
	EntityType *string         `json:"entity_type,omitempty"`
	EntityID   *string         `json:"entity_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	IP         string          `json:"ip"`
	UserAgent  string          `json:"user_agent"`
	CreatedAt  time.Time       `json:"created_at"`
}
