package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingKind is the meeting format.
type MeetingKind string

const (
	MeetingPhysical MeetingKind = "physical"
	MeetingRemote   MeetingKind = "remote"
)

// ResponseState is one participant's answer to a proposed meeting.
// A participant may respond more than once; the latest answer wins.
type ResponseState string

const (
	ResponsePending      ResponseState = "pending"
	ResponseAccepted     ResponseState = "accepted"
	ResponseDeclined     ResponseState = "declined"
	ResponseRescheduling ResponseState = "rescheduling"
)

// Valid reports whether s is a state a participant may submit.
func (s ResponseState) Valid() bool {
	switch s {
	case ResponseAccepted, ResponseDeclined, ResponseRescheduling:
		return true
	}
	return false
}

// MeetingStatus is the aggregate status, derived from the participant states.
type MeetingStatus string

const (
	MeetingPending   MeetingStatus = "pending"
	MeetingConfirmed MeetingStatus = "confirmed"
	MeetingCancelled MeetingStatus = "cancelled"
)

// Meeting is a bilateral scheduling proposal from a university supervisor to
// a student and/or an industry supervisor. At least one slot is set.
type Meeting struct {
	ID                   uuid.UUID     `json:"id"`
	SchoolID             uuid.UUID     `json:"school_id"`
	InitiatorID          uuid.UUID     `json:"initiator_id"`
	StudentProfileID     *uuid.UUID    `json:"student_profile_id"`
	IndustrySupervisorID *uuid.UUID    `json:"industry_supervisor_id"`
	Kind                 MeetingKind   `json:"kind"`
	ScheduledAt          time.Time     `json:"scheduled_at"`
	Purpose              string        `json:"purpose"`
	StudentResponse      ResponseState `json:"student_response"`
	StudentNote          *string       `json:"student_note,omitempty"`
	StudentProposedAt    *time.Time    `json:"student_proposed_at,omitempty"`
	IndustryResponse     ResponseState `json:"industry_response"`
	IndustryNote         *string       `json:"industry_note,omitempty"`
	IndustryProposedAt   *time.Time    `json:"industry_proposed_at,omitempty"`
	Status               MeetingStatus `json:"status"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}
