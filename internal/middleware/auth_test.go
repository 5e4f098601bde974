package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/attachpro/backend/internal/auth"
	"github.com/attachpro/backend/internal/models"
)

type stubIdentity struct {
	users map[uuid.UUID]*models.User
}

func (s *stubIdentity) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func newAuthRouter(jwt *auth.JWTService, users IdentitySource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/t", Authenticate(jwt, users), func(c *gin.Context) {
		schoolID, hasSchool := SchoolID(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":    UserID(c).String(),
			"role":       UserRole(c),
			"school_id":  schoolID.String(),
			"has_school": hasSchool,
		})
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	schoolID := uuid.New()
	user := &models.User{
		ID:       uuid.New(),
		SchoolID: &schoolID,
		Email:    "student@example.com",
		Role:     models.RoleStudent,
		Status:   models.UserActive,
	}
	ids := &stubIdentity{users: map[uuid.UUID]*models.User{user.ID: user}}
	router := newAuthRouter(jwtService, ids)

	token, err := jwtService.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/t", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestAuthenticateLockedAccount(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	schoolID := uuid.New()
	user := &models.User{
		ID:       uuid.New(),
		SchoolID: &schoolID,
		Role:     models.RoleStudent,
		Status:   models.UserActive,
	}
	ids := &stubIdentity{users: map[uuid.UUID]*models.User{user.ID: user}}
	router := newAuthRouter(jwtService, ids)

	token, err := jwtService.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	// Lock after issue: the still-valid token must now be rejected as
	// forbidden, not unauthorized.
	user.Status = models.UserLocked
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("locked account status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAuthenticateDeletedUser(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	user := &models.User{ID: uuid.New(), Role: models.RoleSuperAdmin, Status: models.UserActive}
	router := newAuthRouter(jwtService, &stubIdentity{users: map[uuid.UUID]*models.User{}})

	token, err := jwtService.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
