package students

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/attachpro/backend/internal/middleware"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/pkg/storage"
)

func newBulkImportRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, nil, "", nil)
	r := gin.New()
	r.POST("/students/bulk", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uuid.New())
		c.Set(middleware.ContextUserRole, models.RoleSchoolAdmin)
		c.Set(middleware.ContextSchoolID, uuid.New())
	}, h.BulkImport)
	return r
}

func rosterRequest(t *testing.T, filename string, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("roster", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte("a"), size)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/students/bulk", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestBulkImportRejectsOversizedRoster(t *testing.T) {
	r := newBulkImportRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, rosterRequest(t, "students.csv", storage.MaxRosterSize+1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBulkImportRejectsWrongFileType(t *testing.T) {
	r := newBulkImportRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, rosterRequest(t, "students.exe", 64))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestBulkImportRequiresRosterFile(t *testing.T) {
	r := newBulkImportRouter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/bulk", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
