package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/attachpro/backend/internal/auth"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/pkg/response"
)

// Context keys set by Authenticate; defined in models so handler packages
// can read them without importing this one.
const (
	ContextUserID   = models.ContextUserID
	ContextUserRole = models.ContextUserRole
	ContextSchoolID = models.ContextSchoolID
)

// IdentitySource resolves a token's user ID to the current user row.
// Satisfied by *auth.Repository.
type IdentitySource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate validates the bearer token, resolves the identity and rejects
// locked accounts. On success the gin context carries the user ID, role and
// the token's school context.
func Authenticate(jwtService *auth.JWTService, users IdentitySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		// Locked is a distinct rejection: the credential itself is fine.
		if user.Status == models.UserLocked {
			response.Forbidden(c, "account locked")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		if claims.SchoolID != nil {
			c.Set(ContextSchoolID, *claims.SchoolID)
		}
		c.Next()
	}
}

// SchoolID returns the tenant context set by Authenticate, or false for
// platform-level (super admin) requests.
func SchoolID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextSchoolID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// UserID returns the authenticated user ID set by Authenticate.
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextUserID).(uuid.UUID)
}

// UserRole returns the authenticated role set by Authenticate.
func UserRole(c *gin.Context) models.Role {
	return c.MustGet(ContextUserRole).(models.Role)
}
