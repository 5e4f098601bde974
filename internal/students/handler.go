package students

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/audit"
	"github.com/attachpro/backend/internal/auth"
	"github.com/attachpro/backend/internal/middleware"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/internal/roster"
	"github.com/attachpro/backend/internal/schools"
	"github.com/attachpro/backend/pkg/response"
	"github.com/attachpro/backend/pkg/storage"
	"github.com/attachpro/backend/pkg/utils"
)

// CreateStudentRequest is the body for POST /students.
type CreateStudentRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	AdmissionNo string `json:"admission_no" binding:"required"`
	Department  string `json:"department" binding:"required"`
}

// CreateSupervisorRequest is the body for POST /supervisors.
type CreateSupervisorRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=industry_supervisor university_supervisor"`
}

// AssignSupervisorsRequest is the body for PATCH /students/:id/supervisors.
type AssignSupervisorsRequest struct {
	IndustrySupervisorID   *uuid.UUID `json:"industry_supervisor_id"`
	UniversitySupervisorID *uuid.UUID `json:"university_supervisor_id"`
}

// UpdateMeRequest is the body for PATCH /students/me.
type UpdateMeRequest struct {
	AttachmentOrg *string `json:"attachment_org"`
	Department    *string `json:"department"`
}

// Handler handles student onboarding and profile HTTP endpoints.
type Handler struct {
	repo        *Repository
	users       *auth.Repository
	schools     *schools.Repository
	recorder    *audit.Recorder
	defaultHash string // bcrypt hash of the bulk-import placeholder password
	logger      *zap.Logger
}

// NewHandler creates a students handler. defaultHash is the pre-hashed
// placeholder credential assigned to bulk-imported students.
func NewHandler(repo *Repository, users *auth.Repository, schoolRepo *schools.Repository, recorder *audit.Recorder, defaultHash string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, users: users, schools: schoolRepo, recorder: recorder, defaultHash: defaultHash, logger: logger}
}

// Create handles POST /students (school admin). User and profile are
// created in one transaction; a failure leaves neither behind.
func (h *Handler) Create(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	school, err := h.schools.GetByID(c.Request.Context(), schoolID)
	if err != nil {
		response.NotFound(c, "school not found")
		return
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user := &models.User{
		SchoolID: &schoolID,
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
	}
	profile := &models.StudentProfile{
		SchoolID:    schoolID,
		SchoolName:  school.Name,
		AdmissionNo: req.AdmissionNo,
		Department:  req.Department,
	}
	if err := h.repo.CreateWithUser(c.Request.Context(), user, profile); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateEmail):
			response.Conflict(c, "email already registered")
		case errors.Is(err, models.ErrDuplicateAdmissionNo):
			response.Conflict(c, "admission number already registered")
		default:
			h.logger.Error("create student", zap.Error(err))
			response.Internal(c, "failed to create student")
		}
		return
	}

	actorID := middleware.UserID(c)
	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &actorID,
		Action:     models.ActionStudentCreated,
		EntityType: "student_profile",
		EntityID:   profile.ID.String(),
	}))
	response.Created(c, models.StudentWithUser{Profile: *profile, User: user.ToPublic()})
}

// BulkImport handles POST /students/bulk (school admin, multipart CSV).
// Rows are onboarded independently: a bad row is reported and skipped.
func (h *Handler) BulkImport(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	file, err := c.FormFile("roster")
	if err != nil {
		response.BadRequest(c, "roster file required")
		return
	}
	if err := storage.ValidateUpload(storage.CategoryRoster, file.Header.Get("Content-Type"), file.Filename, file.Size); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	school, err := h.schools.GetByID(c.Request.Context(), schoolID)
	if err != nil {
		response.NotFound(c, "school not found")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	rows, err := roster.Parse(src)
	if err != nil {
		response.BadRequest(c, "invalid roster: "+err.Error())
		return
	}
	if len(rows) == 0 {
		response.BadRequest(c, "roster has no data rows")
		return
	}

	result := h.repo.BulkCreate(c.Request.Context(), schoolID, school.Name, h.defaultHash, rows)

	actorID := middleware.UserID(c)
	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &actorID,
		Action:     models.ActionBulkImport,
		EntityType: "school",
		EntityID:   schoolID.String(),
		Metadata:   map[string]any{"successful": result.Successful, "failed": result.Failed},
	}))
	response.OK(c, result)
}

// List handles GET /students (school-scoped).
func (h *Handler) List(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	list, err := h.repo.ListBySchool(c.Request.Context(), schoolID)
	if err != nil {
		response.Internal(c, "failed to list students")
		return
	}
	response.OK(c, list)
}

// Get handles GET /students/:id (school-scoped).
func (h *Handler) Get(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid student id")
		return
	}
	profile, err := h.repo.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		response.NotFound(c, "student not found")
		return
	}
	response.OK(c, profile)
}

// CreateSupervisor handles POST /supervisors (school admin).
func (h *Handler) CreateSupervisor(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	var req CreateSupervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	user := &models.User{
		SchoolID: &schoolID,
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
		Role:     models.Role(req.Role),
		Status:   models.UserActive,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			response.Conflict(c, "email already registered")
			return
		}
		h.logger.Error("create supervisor", zap.Error(err))
		response.Internal(c, "failed to create supervisor")
		return
	}

	actorID := middleware.UserID(c)
	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &actorID,
		Action:     models.ActionSupervisorCreated,
		EntityType: "user",
		EntityID:   user.ID.String(),
		Metadata:   map[string]any{"role": req.Role},
	}))
	response.Created(c, user.ToPublic())
}

// ListSupervisors handles GET /supervisors?role= (school admin).
func (h *Handler) ListSupervisors(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	role := models.Role(c.Query("role"))
	if role != "" && role != models.RoleIndustrySupervisor && role != models.RoleUniversitySupervisor {
		response.BadRequest(c, "invalid role filter")
		return
	}
	if role == "" {
		industry, err := h.users.ListBySchool(c.Request.Context(), schoolID, models.RoleIndustrySupervisor)
		if err != nil {
			response.Internal(c, "failed to list supervisors")
			return
		}
		university, err := h.users.ListBySchool(c.Request.Context(), schoolID, models.RoleUniversitySupervisor)
		if err != nil {
			response.Internal(c, "failed to list supervisors")
			return
		}
		response.OK(c, append(industry, university...))
		return
	}
	list, err := h.users.ListBySchool(c.Request.Context(), schoolID, role)
	if err != nil {
		response.Internal(c, "failed to list supervisors")
		return
	}
	response.OK(c, list)
}

// AssignSupervisors handles PATCH /students/:id/supervisors (school admin).
// Both supervisors must belong to the same school as the student.
func (h *Handler) AssignSupervisors(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid student id")
		return
	}
	var req AssignSupervisorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.IndustrySupervisorID == nil && req.UniversitySupervisorID == nil {
		response.BadRequest(c, "no supervisor specified")
		return
	}

	if err := h.checkSupervisor(c, schoolID, req.IndustrySupervisorID, models.RoleIndustrySupervisor); err != nil {
		return
	}
	if err := h.checkSupervisor(c, schoolID, req.UniversitySupervisorID, models.RoleUniversitySupervisor); err != nil {
		return
	}

	profile, err := h.repo.AssignSupervisors(c.Request.Context(), schoolID, id,
		req.IndustrySupervisorID, req.UniversitySupervisorID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "student not found")
			return
		}
		response.Internal(c, "failed to assign supervisors")
		return
	}

	actorID := middleware.UserID(c)
	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &actorID,
		Action:     models.ActionSupervisorAssigned,
		EntityType: "student_profile",
		EntityID:   profile.ID.String(),
	}))
	response.OK(c, profile)
}

// checkSupervisor validates one supervisor reference and writes the error
// response itself; a non-nil return just signals the caller to stop.
func (h *Handler) checkSupervisor(c *gin.Context, schoolID uuid.UUID, supervisorID *uuid.UUID, want models.Role) error {
	if supervisorID == nil {
		return nil
	}
	u, err := h.users.GetByID(c.Request.Context(), *supervisorID)
	if err != nil {
		response.NotFound(c, "supervisor not found")
		return err
	}
	if u.Role != want || u.SchoolID == nil || *u.SchoolID != schoolID {
		response.BadRequest(c, "supervisor must be a "+string(want)+" in the same school")
		return models.ErrValidation
	}
	return nil
}

// UpdateMe handles PATCH /students/me (student self-service).
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	profile, err := h.repo.UpdateSelf(c.Request.Context(), middleware.UserID(c), req.AttachmentOrg, req.Department)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "profile not found")
			return
		}
		response.Internal(c, "failed to update profile")
		return
	}
	response.OK(c, profile)
}

// Me handles GET /students/me (student self-service).
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.repo.GetByUserID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.NotFound(c, "profile not found")
		return
	}
	response.OK(c, profile)
}
