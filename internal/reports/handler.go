package reports

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/middleware"
	"github.com/attachpro/backend/internal/students"
	"github.com/attachpro/backend/pkg/response"
)

// Handler handles the reporting endpoints.
type Handler struct {
	repo     *Repository
	students *students.Repository
	logger   *zap.Logger
}

// NewHandler creates a reports handler.
func NewHandler(repo *Repository, studentRepo *students.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, students: studentRepo, logger: logger}
}

// Overview handles GET /reports/overview.
func (h *Handler) Overview(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	overview, err := h.repo.Overview(c.Request.Context(), schoolID)
	if err != nil {
		h.logger.Error("reports overview", zap.Error(err))
		response.Internal(c, "failed to build overview")
		return
	}
	response.OK(c, overview)
}

// ExportStudents handles GET /reports/students.csv and streams the school's
// roster as a CSV attachment.
func (h *Handler) ExportStudents(c *gin.Context) {
	schoolID, ok := middleware.SchoolID(c)
	if !ok {
		response.Forbidden(c, "no school context")
		return
	}
	list, err := h.students.ListBySchool(c.Request.Context(), schoolID)
	if err != nil {
		h.logger.Error("export students", zap.Error(err))
		response.Internal(c, "failed to export students")
		return
	}

	filename := fmt.Sprintf("students_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"name", "email", "admission_no", "department", "attachment_org", "status"})
	for _, s := range list {
		org := ""
		if s.Profile.AttachmentOrg != nil {
			org = *s.Profile.AttachmentOrg
		}
		_ = w.Write([]string{
			s.User.FullName,
			s.User.Email,
			s.Profile.AdmissionNo,
			s.Profile.Department,
			org,
			string(s.User.Status),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.logger.Warn("flush csv export", zap.Error(err))
	}
}
