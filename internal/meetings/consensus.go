package meetings

import (
	"github.com/google/uuid"

	"github.com/attachpro/backend/internal/models"
)

// Slot identifies which participant seat a responder occupies.
type Slot int

const (
	SlotNone Slot = iota
	SlotStudent
	SlotIndustry
)

// slotSatisfied reports whether a participant seat no longer blocks
// confirmation: an absent seat is satisfied by definition, a present one
// only once its holder has accepted.
func slotSatisfied(present bool, r models.ResponseState) bool {
	return !present || r == models.ResponseAccepted
}

// DeriveStatus computes the aggregate status from the participant states.
// Confirmed iff every present seat has accepted. Cancelled is terminal and
// never recomputed.
func DeriveStatus(m *models.Meeting) models.MeetingStatus {
	if m.Status == models.MeetingCancelled {
		return models.MeetingCancelled
	}
	if slotSatisfied(m.StudentProfileID != nil, m.StudentResponse) &&
		slotSatisfied(m.IndustrySupervisorID != nil, m.IndustryResponse) {
		return models.MeetingConfirmed
	}
	return models.MeetingPending
}

// ParticipantSlot returns the seat the caller holds on this meeting, or
// SlotNone. callerProfileID is the caller's student profile, nil if they
// have none.
func ParticipantSlot(m *models.Meeting, callerID uuid.UUID, callerProfileID *uuid.UUID) Slot {
	if m.StudentProfileID != nil && callerProfileID != nil && *m.StudentProfileID == *callerProfileID {
		return SlotStudent
	}
	if m.IndustrySupervisorID != nil && *m.IndustrySupervisorID == callerID {
		return SlotIndustry
	}
	return SlotNone
}
