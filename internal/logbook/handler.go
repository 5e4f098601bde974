package logbook

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/audit"
	"github.com/attachpro/backend/internal/middleware"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/internal/refine"
	"github.com/attachpro/backend/internal/students"
	"github.com/attachpro/backend/pkg/response"
	"github.com/attachpro/backend/pkg/storage"
)

// refineTimeout bounds the background refinement call.
const refineTimeout = 30 * time.Second

// CreateEntryRequest is the multipart form for POST /logbook. Evidence is an
// optional file part named "evidence".
type CreateEntryRequest struct {
	EntryDate string `form:"entry_date" binding:"required"` // YYYY-MM-DD
	Activity  string `form:"activity" binding:"required"`
	Refine    bool   `form:"refine"`
}

// ReviewRequest is the body for PATCH /logbook/:id/review.
type ReviewRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// Handler handles logbook HTTP endpoints.
type Handler struct {
	repo     *Repository
	students *students.Repository
	refiner  *refine.Client
	s3       *storage.S3
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewHandler creates a logbook handler.
func NewHandler(repo *Repository, studentRepo *students.Repository, refiner *refine.Client, s3 *storage.S3, recorder *audit.Recorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, students: studentRepo, refiner: refiner, s3: s3, recorder: recorder, logger: logger}
}

// Create handles POST /logbook (student). Optional evidence upload and
// optional asynchronous text refinement; the response never waits on the
// refiner.
func (h *Handler) Create(c *gin.Context) {
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

	var req CreateEntryRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		response.BadRequest(c, "entry_date must be YYYY-MM-DD")
		return
	}

	var evidenceURL *string
	if file, ferr := c.FormFile("evidence"); ferr == nil {
		if h.s3 == nil {
			response.Internal(c, "file storage not configured")
			return
		}
		src, oerr := file.Open()
		if oerr != nil {
			response.Internal(c, "failed to read upload")
			return
		}
		defer src.Close()
		key := storage.ObjectKey(storage.CategoryEvidence, schoolID.String(), uuid.New().String()+"_"+file.Filename)
		url, uerr := h.s3.Upload(c.Request.Context(), storage.CategoryEvidence, key,
			file.Header.Get("Content-Type"), file.Filename, src, file.Size)
		if uerr != nil {
			response.BadRequest(c, uerr.Error())
			return
		}
		evidenceURL = &url
	}

	entry := &models.LogbookEntry{
		StudentProfileID: profile.ID,
		SchoolID:         schoolID,
		EntryDate:        entryDate,
		Activity:         req.Activity,
		EvidenceURL:      evidenceURL,
	}
	if err := h.repo.Create(c.Request.Context(), entry); err != nil {
		h.logger.Error("create logbook entry", zap.Error(err))
		response.Internal(c, "failed to create entry")
		return
	}

	if req.Refine && h.refiner != nil {
		go h.refineEntry(entry.ID, req.Activity, profile.Department)
	}
	response.Created(c, entry)
}

// refineEntry runs the refinement call off the request path and stores the
// result. Failures are logged only; the entry keeps its original text.
func (h *Handler) refineEntry(entryID uuid.UUID, activity, department string) {
	ctx, cancel := context.WithTimeout(context.Background(), refineTimeout)
	defer cancel()
	refined, err := h.refiner.Refine(ctx, activity, department)
	if err != nil {
		h.logger.Warn("refine activity", zap.Error(err), zap.String("entry_id", entryID.String()))
		return
	}
	if err := h.repo.SetRefinedActivity(ctx, entryID, refined); err != nil {
		h.logger.Warn("store refined activity", zap.Error(err), zap.String("entry_id", entryID.String()))
	}
}

// Review handles PATCH /logbook/:id/review (supervisors). Only a supervisor
// assigned to the entry's student may review it.
func (h *Handler) Review(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid entry id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	entry, err := h.repo.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		response.NotFound(c, "entry not found")
		return
	}
	profile, err := h.students.GetByID(c.Request.Context(), schoolID, entry.StudentProfileID)
	if err != nil {
		response.NotFound(c, "student not found")
		return
	}
	callerID := middleware.UserID(c)
	assigned := (profile.IndustrySupervisorID != nil && *profile.IndustrySupervisorID == callerID) ||
		(profile.UniversitySupervisorID != nil && *profile.UniversitySupervisorID == callerID)
	if !assigned {
		response.Forbidden(c, "not assigned to this student")
		return
	}

	updated, err := h.repo.Review(c.Request.Context(), schoolID, id, callerID, req.Comment)
	if err != nil {
		response.Internal(c, "failed to review entry")
		return
	}

	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &callerID,
		Action:     models.ActionLogbookReviewed,
		EntityType: "logbook_entry",
		EntityID:   updated.ID.String(),
	}))
	response.OK(c, updated)
}

// List handles GET /logbook with per-role visibility.
func (h *Handler) List(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	ctx := c.Request.Context()
	callerID := middleware.UserID(c)

	var (
		list []*models.LogbookEntry
		err  error
	)
	switch middleware.UserRole(c) {
	case models.RoleStudent:
		var profile *models.StudentProfile
		profile, err = h.students.GetByUserID(ctx, callerID)
		if err != nil {
			response.NotFound(c, "student profile not found")
			return
		}
		list, err = h.repo.ListForStudentProfile(ctx, schoolID, profile.ID)
	case models.RoleIndustrySupervisor, models.RoleUniversitySupervisor:
		list, err = h.repo.ListForSupervisor(ctx, schoolID, callerID)
	case models.RoleSchoolAdmin:
		list, err = h.repo.ListBySchool(ctx, schoolID)
	default:
		response.Forbidden(c, "insufficient permissions")
		return
	}
	if err != nil {
		response.Internal(c, "failed to list entries")
		return
	}
	response.OK(c, list)
}
