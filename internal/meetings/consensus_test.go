package meetings

import (
	"testing"

	"github.com/google/uuid"

	"github.com/attachpro/backend/internal/models"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestDeriveStatus(t *testing.T) {
	student := uuid.New()
	industry := uuid.New()

	cases := []struct {
		name string
		m    models.Meeting
		want models.MeetingStatus
	}{
		{
			name: "both pending stays pending",
			m: models.Meeting{
				StudentProfileID:     ptr(student),
				IndustrySupervisorID: ptr(industry),
				StudentResponse:      models.ResponsePending,
				IndustryResponse:     models.ResponsePending,
				Status:               models.MeetingPending,
			},
			want: models.MeetingPending,
		},
		{
			name: "one accepted one pending stays pending",
			m: models.Meeting{
				StudentProfileID:     ptr(student),
				IndustrySupervisorID: ptr(industry),
				StudentResponse:      models.ResponseAccepted,
				IndustryResponse:     models.ResponsePending,
				Status:               models.MeetingPending,
			},
			want: models.MeetingPending,
		},
		{
			name: "all present seats accepted confirms",
			m: models.Meeting{
				StudentProfileID:     ptr(student),
				IndustrySupervisorID: ptr(industry),
				StudentResponse:      models.ResponseAccepted,
				IndustryResponse:     models.ResponseAccepted,
				Status:               models.MeetingPending,
			},
			want: models.MeetingConfirmed,
		},
		{
			name: "declined blocks confirmation",
			m: models.Meeting{
				StudentProfileID:     ptr(student),
				IndustrySupervisorID: ptr(industry),
				StudentResponse:      models.ResponseAccepted,
				IndustryResponse:     models.ResponseDeclined,
				Status:               models.MeetingPending,
			},
			want: models.MeetingPending,
		},
		{
			name: "rescheduling blocks confirmation",
			m: models.Meeting{
				StudentProfileID: ptr(student),
				StudentResponse:  models.ResponseRescheduling,
				Status:           models.MeetingPending,
			},
			want: models.MeetingPending,
		},
		{
			name: "single seat meeting confirms on its acceptance alone",
			m: models.Meeting{
				StudentProfileID: ptr(student),
				StudentResponse:  models.ResponseAccepted,
				IndustryResponse: models.ResponsePending,
				Status:           models.MeetingPending,
			},
			want: models.MeetingConfirmed,
		},
		{
			name: "cancelled is terminal even with acceptances",
			m: models.Meeting{
				StudentProfileID:     ptr(student),
				IndustrySupervisorID: ptr(industry),
				StudentResponse:      models.ResponseAccepted,
				IndustryResponse:     models.ResponseAccepted,
				Status:               models.MeetingCancelled,
			},
			want: models.MeetingCancelled,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(&tc.m); got != tc.want {
				t.Fatalf("DeriveStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParticipantSlot(t *testing.T) {
	profileID := uuid.New()
	supervisorID := uuid.New()
	m := &models.Meeting{
		StudentProfileID:     ptr(profileID),
		IndustrySupervisorID: ptr(supervisorID),
	}

	if got := ParticipantSlot(m, uuid.New(), ptr(profileID)); got != SlotStudent {
		t.Fatalf("student profile holder: got slot %d, want %d", got, SlotStudent)
	}
	if got := ParticipantSlot(m, supervisorID, nil); got != SlotIndustry {
		t.Fatalf("industry supervisor: got slot %d, want %d", got, SlotIndustry)
	}
	if got := ParticipantSlot(m, uuid.New(), nil); got != SlotNone {
		t.Fatalf("outsider: got slot %d, want %d", got, SlotNone)
	}

	// A caller with a profile that is not on the meeting holds no seat.
	other := uuid.New()
	if got := ParticipantSlot(m, uuid.New(), &other); got != SlotNone {
		t.Fatalf("unrelated profile: got slot %d, want %d", got, SlotNone)
	}
}
