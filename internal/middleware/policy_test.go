package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/attachpro/backend/internal/models"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		op   Operation
		role models.Role
		want bool
	}{
		{OpSchoolManage, models.RoleSuperAdmin, true},
		{OpSchoolManage, models.RoleSchoolAdmin, false},
		{OpStudentManage, models.RoleSchoolAdmin, true},
		{OpStudentManage, models.RoleUniversitySupervisor, false},
		{OpMeetingCreate, models.RoleUniversitySupervisor, true},
		{OpMeetingCreate, models.RoleStudent, false},
		{OpMeetingRespond, models.RoleStudent, true},
		{OpMeetingRespond, models.RoleIndustrySupervisor, true},
		{OpMeetingRespond, models.RoleUniversitySupervisor, false},
		{OpLogbookWrite, models.RoleStudent, true},
		{OpLogbookReview, models.RoleIndustrySupervisor, true},
		{OpLogbookReview, models.RoleStudent, false},
		{OpAttendanceWrite, models.RoleStudent, true},
		{OpAttendanceWrite, models.RoleSchoolAdmin, false},
		{OpAttendanceRead, models.RoleSchoolAdmin, true},
		{OpReportsView, models.RoleSchoolAdmin, true},
		{OpAuditView, models.RoleSuperAdmin, true},
		{OpAuditView, models.RoleStudent, false},
		// Super admin carries no implicit grant on tenant operations.
		{OpStudentManage, models.RoleSuperAdmin, false},
		{OpReportsView, models.RoleSuperAdmin, false},
		{OpAttendanceRead, models.RoleSuperAdmin, false},
	}
	for _, tc := range cases {
		if got := Allowed(tc.op, tc.role); got != tc.want {
			t.Fatalf("Allowed(%q, %q) = %v, want %v", tc.op, tc.role, got, tc.want)
		}
	}
}

func performWithRole(handler gin.HandlerFunc, role models.Role, setRole bool) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	router := gin.New()
	router.GET("/t", func(c *gin.Context) {
		if setRole {
			c.Set(ContextUserRole, role)
		}
	}, handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequirePermission(t *testing.T) {
	if w := performWithRole(RequirePermission(OpStudentManage), models.RoleSchoolAdmin, true); w.Code != http.StatusOK {
		t.Fatalf("allowed role: got status %d, want %d", w.Code, http.StatusOK)
	}
	if w := performWithRole(RequirePermission(OpStudentManage), models.RoleStudent, true); w.Code != http.StatusForbidden {
		t.Fatalf("denied role: got status %d, want %d", w.Code, http.StatusForbidden)
	}
	if w := performWithRole(RequirePermission(OpStudentManage), "", false); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing context: got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	if w := performWithRole(RequireSuperAdmin(), models.RoleSuperAdmin, true); w.Code != http.StatusOK {
		t.Fatalf("super admin: got status %d, want %d", w.Code, http.StatusOK)
	}
	if w := performWithRole(RequireSuperAdmin(), models.RoleSchoolAdmin, true); w.Code != http.StatusForbidden {
		t.Fatalf("school admin: got status %d, want %d", w.Code, http.StatusForbidden)
	}
}
