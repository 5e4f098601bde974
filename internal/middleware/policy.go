package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/pkg/response"
)

// Operation names an authorizable action. The policy table below is the
// single place role access is decided; handlers do not branch on role.
type Operation string

const (
	OpSchoolManage      Operation = "schools:manage"       // platform-level school administration
	OpSchoolSelf        Operation = "schools:self"         // tenant self-service settings/branding
	OpStudentManage     Operation = "students:manage"      // create/import/assign students
	OpSupervisorManage  Operation = "supervisors:manage"   // create supervisor accounts
	OpMeetingCreate     Operation = "meetings:create"      // initiate a meeting
	OpMeetingRespond    Operation = "meetings:respond"     // respond to a meeting slot
	OpMeetingList       Operation = "meetings:list"        // read meetings (per-role visibility)
	OpLogbookWrite      Operation = "logbook:write"        // student logbook entries
	OpLogbookReview     Operation = "logbook:review"       // supervisor review
	OpLogbookList       Operation = "logbook:list"         // read logbooks (per-role visibility)
	OpAttendanceWrite   Operation = "attendance:write"     // student check-in/out
	OpAttendanceRead    Operation = "attendance:read"      // attendance summaries
	OpReportsView       Operation = "reports:view"         // tenant analytics and exports
	OpAuditView         Operation = "audit:view"           // audit trail
)

// policy maps operation to the roles allowed to perform it.
var policy = map[Operation][]models.Role{
	OpSchoolManage:     {models.RoleSuperAdmin},
	OpSchoolSelf:       {models.RoleSchoolAdmin},
	OpStudentManage:    {models.RoleSchoolAdmin},
	OpSupervisorManage: {models.RoleSchoolAdmin},
	OpMeetingCreate:    {models.RoleUniversitySupervisor},
	OpMeetingRespond:   {models.RoleStudent, models.RoleIndustrySupervisor},
	OpMeetingList:      {models.RoleStudent, models.RoleIndustrySupervisor, models.RoleUniversitySupervisor, models.RoleSchoolAdmin},
	OpLogbookWrite:     {models.RoleStudent},
	OpLogbookReview:    {models.RoleIndustrySupervisor, models.RoleUniversitySupervisor},
	OpLogbookList:      {models.RoleStudent, models.RoleIndustrySupervisor, models.RoleUniversitySupervisor, models.RoleSchoolAdmin},
	OpAttendanceWrite:  {models.RoleStudent},
	OpAttendanceRead:   {models.RoleStudent, models.RoleIndustrySupervisor, models.RoleUniversitySupervisor, models.RoleSchoolAdmin},
	OpReportsView:      {models.RoleSchoolAdmin},
	OpAuditView:        {models.RoleSchoolAdmin, models.RoleSuperAdmin},
}

// Allowed reports whether role may perform op.
func Allowed(op Operation, role models.Role) bool {
	for _, r := range policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// RequirePermission gates a route on the policy table. Call after Authenticate.
func RequirePermission(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(models.Role)
		if !Allowed(op, role) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin rejects anyone whose role is not exactly super_admin.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if role, _ := roleVal.(models.Role); role != models.RoleSuperAdmin {
			response.Forbidden(c, "super admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}
