package models

import (
	"time"

	"github.com/google/uuid"
)

// LogbookStatus is the review state of a logbook entry.
type LogbookStatus string

const (
	LogbookSubmitted LogbookStatus = "submitted"
	LogbookReviewed  LogbookStatus = "reviewed"
)

// LogbookEntry is one day's activity record kept by a student on attachment.
type LogbookEntry struct {
	ID                uuid.UUID     `json:"id"`
	StudentProfileID  uuid.UUID     `json:"student_profile_id"`
	SchoolID          uuid.UUID     `json:"school_id"`
	EntryDate         time.Time     `json:"entry_date"`
	Activity          string        `json:"activity"`
	RefinedActivity   *string       `json:"refined_activity,omitempty"`
	EvidenceURL       *string       `json:"evidence_url,omitempty"`
	Status            LogbookStatus `json:"status"`
	SupervisorComment *string       `json:"supervisor_comment,omitempty"`
	ReviewedBy        *uuid.UUID    `json:"reviewed_by,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
