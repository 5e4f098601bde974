package attendance

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/middleware"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/internal/students"
	"github.com/attachpro/backend/pkg/response"
)

// Handler handles attendance HTTP endpoints.
type Handler struct {
	repo     *Repository
	students *students.Repository
	logger   *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(repo *Repository, studentRepo *students.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, students: studentRepo, logger: logger}
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// CheckIn handles POST /attendance/check-in (student).
func (h *Handler) CheckIn(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	profile, err := h.students.GetByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.NotFound(c, "student profile not found")
		return
	}
	rec, err := h.repo.CheckIn(c.Request.Context(), schoolID, profile.ID, today())
	if err != nil {
		if errors.Is(err, models.ErrDuplicateCheckIn) {
			response.Conflict(c, err.Error())
			return
		}
		h.logger.Error("check in", zap.Error(err))
		response.Internal(c, "failed to check in")
		return
	}
	response.Created(c, rec)
}

// CheckOut handles POST /attendance/check-out (student). Requires a check-in
// earlier the same day.
func (h *Handler) CheckOut(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	profile, err := h.students.GetByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.NotFound(c, "student profile not found")
		return
	}
	rec, err := h.repo.CheckOut(c.Request.Context(), schoolID, profile.ID, today())
	if err != nil {
		response.NotFound(c, "no check-in recorded today")
		return
	}
	response.OK(c, rec)
}

// List handles GET /attendance. Students see their own records; supervisors
// and admins pass ?student_id= to inspect one student.
func (h *Handler) List(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	ctx := c.Request.Context()

	profileID, err := h.resolveProfileID(c, schoolID)
	if err != nil {
		return // response written
	}
	list, err := h.repo.ListForStudent(ctx, schoolID, profileID)
	if err != nil {
		response.Internal(c, "failed to list attendance")
		return
	}
	response.OK(c, list)
}

// Summary handles GET /attendance/summary. With ?student_id= it returns one
// student's aggregate; for admins without the filter it returns the whole
// school grouped per student.
func (h *Handler) Summary(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	ctx := c.Request.Context()

	if c.Query("student_id") == "" && middleware.UserRole(c) == models.RoleSchoolAdmin {
		summaries, err := h.repo.SummaryBySchool(ctx, schoolID)
		if err != nil {
			response.Internal(c, "failed to summarize attendance")
			return
		}
		response.OK(c, summaries)
		return
	}

	profileID, err := h.resolveProfileID(c, schoolID)
	if err != nil {
		return
	}
	summary, err := h.repo.SummaryForStudent(ctx, schoolID, profileID)
	if err != nil {
		response.Internal(c, "failed to summarize attendance")
		return
	}
	response.OK(c, summary)
}

// resolveProfileID picks the target student: callers with the student role
// always resolve to themselves, everyone else must name a student in the same
// school. Writes the error response itself on failure.
func (h *Handler) resolveProfileID(c *gin.Context, schoolID uuid.UUID) (uuid.UUID, error) {
	ctx := c.Request.Context()
	if middleware.UserRole(c) == models.RoleStudent {
		profile, err := h.students.GetByUserID(ctx, middleware.UserID(c))
		if err != nil {
			response.NotFound(c, "student profile not found")
			return uuid.Nil, err
		}
		return profile.ID, nil
	}
	id, err := uuid.Parse(c.Query("student_id"))
	if err != nil {
		response.BadRequest(c, "student_id is required")
		return uuid.Nil, err
	}
	if _, err := h.students.GetByID(ctx, schoolID, id); err != nil {
		response.NotFound(c, "student not found")
		return uuid.Nil, err
	}
	return id, nil
}
