package schools

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/audit"
	"github.com/attachpro/backend/internal/middleware"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/pkg/queue"
	"github.com/attachpro/backend/pkg/response"
	"github.com/attachpro/backend/pkg/storage"
	"github.com/attachpro/backend/pkg/utils"
)

// CreateSchoolRequest is the body for POST /schools.
type CreateSchoolRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactEmail  string `json:"contact_email" binding:"required,email"`
	AdminName     string `json:"admin_name" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"omitempty,min=6"`
}

// UpdateStatusRequest is the body for PATCH /schools/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended trial"`
}

// UpdateSelfRequest is the body for PATCH /schools/me.
type UpdateSelfRequest struct {
	Name         *string         `json:"name"`
	PrimaryColor *string         `json:"primary_color"`
	Settings     json.RawMessage `json:"settings"`
}

// Handler handles school HTTP endpoints.
type Handler struct {
	repo     *Repository
	queue    *queue.Queue
	recorder *audit.Recorder
	s3       *storage.S3
	logger   *zap.Logger
}

// NewHandler creates a schools handler.
func NewHandler(repo *Repository, q *queue.Queue, recorder *audit.Recorder, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, queue: q, recorder: recorder, s3: s3, logger: logger}
}

// Create handles POST /schools (super admin). Creates the school and its
// first admin in one transaction, then records the action and queues the
// welcome email. The email is best-effort: the transaction has committed.
func (h *Handler) Create(c *gin.Context) {
	var req CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	password := req.AdminPassword
	if password == "" {
		token, err := utils.RandomToken()
		if err != nil {
			response.Internal(c, "failed to generate credentials")
			return
		}
		password = token[:10]
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	school := &models.School{Name: req.Name, ContactEmail: req.ContactEmail}
	admin := &models.User{FullName: req.AdminName, Email: req.AdminEmail, Password: hash}
	if err := h.repo.CreateWithAdmin(c.Request.Context(), school, admin); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateContactEmail):
			response.Conflict(c, "contact email already in use")
		case errors.Is(err, models.ErrDuplicateEmail):
			response.Conflict(c, "admin email already in use")
		default:
			h.logger.Error("create school", zap.Error(err))
			response.Internal(c, "failed to create school")
		}
		return
	}

	actorID := middleware.UserID(c)
	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &actorID,
		Action:     models.ActionSchoolCreated,
		EntityType: "school",
		EntityID:   school.ID.String(),
		Metadata:   map[string]any{"name": school.Name, "admin_email": admin.Email},
	}))

	if err := h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		Kind:           queue.EmailKindWelcome,
		RecipientEmail: admin.Email,
		RecipientName:  admin.FullName,
		SchoolName:     school.Name,
		TempPassword:   password,
	}); err != nil {
		h.logger.Warn("enqueue welcome email", zap.Error(err))
	}

	response.Created(c, gin.H{"school": school, "admin": admin.ToPublic()})
}

// List handles GET /schools (super admin).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list schools")
		return
	}
	response.OK(c, list)
}

// UpdateStatus handles PATCH /schools/:id/status (super admin).
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid school id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), id, models.SchoolStatus(req.Status)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "school not found")
			return
		}
		response.Internal(c, "failed to update school")
		return
	}

	actorID := middleware.UserID(c)
	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID:    &actorID,
		Action:     models.ActionSchoolStatusChange,
		EntityType: "school",
		EntityID:   id.String(),
		Metadata:   map[string]any{"status": req.Status},
	}))
	response.OK(c, gin.H{"status": req.Status})
}

// GetMine handles GET /schools/me (school admin).
func (h *Handler) GetMine(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	school, err := h.repo.GetByID(c.Request.Context(), schoolID)
	if err != nil {
		response.NotFound(c, "school not found")
		return
	}
	response.OK(c, school)
}

// UpdateMine handles PATCH /schools/me (school admin).
func (h *Handler) UpdateMine(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	var req UpdateSelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	school, err := h.repo.UpdateSelf(c.Request.Context(), schoolID, SelfUpdate{
		Name:         req.Name,
		PrimaryColor: req.PrimaryColor,
		Settings:     req.Settings,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "school not found")
			return
		}
		response.Internal(c, "failed to update school")
		return
	}
	response.OK(c, school)
}

// UploadLogo handles POST /schools/me/logo (school admin, multipart).
func (h *Handler) UploadLogo(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	if h.s3 == nil {
		response.Internal(c, "file storage not configured")
		return
	}
	file, err := c.FormFile("logo")
	if err != nil {
		response.BadRequest(c, "logo file required")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer src.Close()

	key := storage.ObjectKey(storage.CategoryLogo, schoolID.String(), file.Filename)
	url, err := h.s3.Upload(c.Request.Context(), storage.CategoryLogo, key,
		file.Header.Get("Content-Type"), file.Filename, src, file.Size)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	school, err := h.repo.UpdateSelf(c.Request.Context(), schoolID, SelfUpdate{LogoURL: &url})
	if err != nil {
		response.Internal(c, "failed to save logo")
		return
	}
	response.OK(c, school)
}
