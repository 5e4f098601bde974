package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord is one day's check-in (and optional check-out) for a
// student on attachment. One record per student per day.
type AttendanceRecord struct {
	ID               uuid.UUID  `json:"id"`
	StudentProfileID uuid.UUID  `json:"student_profile_id"`
	SchoolID         uuid.UUID  `json:"school_id"`
	Day              time.Time  `json:"day"`
	CheckInAt        time.Time  `json:"check_in_at"`
	CheckOutAt       *time.Time `json:"check_out_at,omitempty"`
}
