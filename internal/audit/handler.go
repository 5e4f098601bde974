package audit

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/pkg/response"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Handler exposes the audit trail read endpoint.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an audit handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /audit-logs. School admins see their own school's trail;
// super admins see the whole platform.
func (h *Handler) List(c *gin.Context) {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}

	ctx := c.Request.Context()
	var (
		list []*models.AuditLog
		err  error
	)
	// Context keys are read directly here: this package sits below the
	// middleware package in the import graph.
	if c.MustGet(models.ContextUserRole).(models.Role) == models.RoleSuperAdmin {
		list, err = h.repo.ListAll(ctx, limit)
	} else {
		v, ok := c.Get(models.ContextSchoolID)
		if !ok {
			response.Forbidden(c, "no school context")
			return
		}
		list, err = h.repo.ListBySchool(ctx, v.(uuid.UUID), limit)
	}
	if err != nil {
		h.logger.Error("list audit logs", zap.Error(err))
		response.Internal(c, "failed to list audit logs")
		return
	}
	response.OK(c, list)
}
