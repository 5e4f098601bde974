package meetings

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/audit"
	"github.com/attachpro/backend/internal/auth"
	"github.com/attachpro/backend/internal/middleware"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/internal/students"
	"github.com/attachpro/backend/pkg/response"
)

// CreateMeetingRequest is the body for POST /meetings. At least one of the
// two participant references must be set.
type CreateMeetingRequest struct {
	StudentProfileID     *uuid.UUID `json:"student_profile_id"`
	IndustrySupervisorID *uuid.UUID `json:"industry_supervisor_id"`
	Kind                 string     `json:"kind" binding:"required,oneof=physical remote"`
	ScheduledAt          time.Time  `json:"scheduled_at" binding:"required"`
	Purpose              string     `json:"purpose" binding:"required"`
}

// RespondRequest is the body for POST /meetings/:id/respond.
type RespondRequest struct {
	Response     string     `json:"response" binding:"required,oneof=accepted declined rescheduling"`
	Note         *string    `json:"note"`
	ProposedTime *time.Time `json:"proposed_time"`
}

// Handler handles meeting HTTP endpoints.
type Handler struct {
	repo     *Repository
	users    *auth.Repository
	students *students.Repository
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewHandler creates a meetings handler.
func NewHandler(repo *Repository, users *auth.Repository, studentRepo *students.Repository, recorder *audit.Recorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, users: users, students: studentRepo, recorder: recorder, logger: logger}
}

// Create handles POST /meetings (university supervisor only, via policy).
func (h *Handler) Create(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.StudentProfileID == nil && req.IndustrySupervisorID == nil {
		response.BadRequest(c, models.ErrInvalidParticipantSet.Error())
		return
	}

	if req.StudentProfileID != nil {
		if _, err := h.students.GetByID(c.Request.Context(), schoolID, *req.StudentProfileID); err != nil {
			response.NotFound(c, "student not found")
			return
		}
	}
	if req.IndustrySupervisorID != nil {
		u, err := h.users.GetByID(c.Request.Context(), *req.IndustrySupervisorID)
		if err != nil || u.Role != models.RoleIndustrySupervisor || u.SchoolID == nil || *u.SchoolID != schoolID {
			response.NotFound(c, "industry supervisor not found")
			return
		}
	}

	m := &models.Meeting{
		SchoolID:             schoolID,
		InitiatorID:          middleware.UserID(c),
		StudentProfileID:     req.StudentProfileID,
		IndustrySupervisorID: req.IndustrySupervisorID,
		Kind:                 models.MeetingKind(req.Kind),
		ScheduledAt:          req.ScheduledAt,
		Purpose:              req.Purpose,
	}
	if err := h.repo.Create(c.Request.Context(), m); err != nil {
		h.logger.Error("create meeting", zap.Error(err))
		response.Internal(c, "failed to create meeting")
		return
	}

	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &m.InitiatorID,
		Action:     models.ActionMeetingCreated,
		EntityType: "meeting",
		EntityID:   m.ID.String(),
	}))
	response.Created(c, m)
}

// Respond handles POST /meetings/:id/respond. Only a present participant may
// respond; the response and the re-derived aggregate status are persisted in
// one transaction.
func (h *Handler) Respond(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	state := models.ResponseState(req.Response)
	if state == models.ResponseRescheduling && req.ProposedTime == nil {
		response.BadRequest(c, "rescheduling requires a proposed_time")
		return
	}

	m, err := h.repo.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		response.NotFound(c, "meeting not found")
		return
	}

	callerID := middleware.UserID(c)
	var callerProfileID *uuid.UUID
	if middleware.UserRole(c) == models.RoleStudent {
		profile, err := h.students.GetByUserID(c.Request.Context(), callerID)
		if err != nil {
			response.NotFound(c, "student profile not found")
			return
		}
		callerProfileID = &profile.ID
	}

	slot := ParticipantSlot(m, callerID, callerProfileID)
	if slot == SlotNone {
		response.Forbidden(c, "not a participant of this meeting")
		return
	}

	updated, confirmed, err := h.repo.Respond(c.Request.Context(), schoolID, id, slot, state, req.Note, req.ProposedTime)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "meeting not found")
			return
		}
		h.logger.Error("meeting respond", zap.Error(err))
		response.Internal(c, "failed to record response")
		return
	}

	action := models.ActionMeetingResponse + strings.ToUpper(string(state))
	if confirmed {
		action = models.ActionMeetingConfirmed
	}
	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &callerID,
		Action:     action,
		EntityType: "meeting",
		EntityID:   updated.ID.String(),
		Metadata:   map[string]any{"response": string(state)},
	}))
	response.OK(c, updated)
}

// List handles GET /meetings with per-role visibility: initiators see their
// own meetings, participants their seat, school admins confirmed ones only.
func (h *Handler) List(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	ctx := c.Request.Context()
	callerID := middleware.UserID(c)

	var (
		list []*models.Meeting
		err  error
	)
	switch middleware.UserRole(c) {
	case models.RoleUniversitySupervisor:
		list, err = h.repo.ListForInitiator(ctx, schoolID, callerID)
	case models.RoleIndustrySupervisor:
		list, err = h.repo.ListForIndustrySupervisor(ctx, schoolID, callerID)
	case models.RoleStudent:
		var profile *models.StudentProfile
		profile, err = h.students.GetByUserID(ctx, callerID)
		if err != nil {
			response.NotFound(c, "student profile not found")
			return
		}
		list, err = h.repo.ListForStudentProfile(ctx, schoolID, profile.ID)
	case models.RoleSchoolAdmin:
		list, err = h.repo.ListConfirmed(ctx, schoolID)
	default:
		response.Forbidden(c, "insufficient permissions")
		return
	}
	if err != nil {
		response.Internal(c, "failed to list meetings")
		return
	}
	response.OK(c, list)
}

// Get handles GET /meetings/:id with the same visibility rules as List.
func (h *Handler) Get(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid meeting id")
		return
	}
	m, err := h.repo.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		response.NotFound(c, "meeting not found")
		return
	}

	callerID := middleware.UserID(c)
	switch middleware.UserRole(c) {
	case models.RoleUniversitySupervisor:
		if m.InitiatorID != callerID {
			response.Forbidden(c, "not your meeting")
			return
		}
	case models.RoleIndustrySupervisor:
		if m.IndustrySupervisorID == nil || *m.IndustrySupervisorID != callerID {
			response.Forbidden(c, "not a participant of this meeting")
			return
		}
	case models.RoleStudent:
		profile, err := h.students.GetByUserID(c.Request.Context(), callerID)
		if err != nil || m.StudentProfileID == nil || *m.StudentProfileID != profile.ID {
			response.Forbidden(c, "not a participant of this meeting")
			return
		}
	case models.RoleSchoolAdmin:
		if m.Status != models.MeetingConfirmed {
			response.NotFound(c, "meeting not found")
			return
		}
	default:
		response.Forbidden(c, "insufficient permissions")
		return
	}
	response.OK(c, m)
}
