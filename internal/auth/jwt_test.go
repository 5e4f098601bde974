package auth

import (
	"testing"

	"github.com/google/uuid"

	"github.com/attachpro/backend/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	schoolID := uuid.New()
	user := &models.User{
		ID:       uuid.New(),
		SchoolID: &schoolID,
		Email:    "admin@example.com",
		Role:     models.RoleSchoolAdmin,
	}

	token, err := svc.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("user ID: got %s, want %s", claims.UserID, user.ID)
	}
	if claims.Role != models.RoleSchoolAdmin {
		t.Fatalf("role: got %s, want %s", claims.Role, models.RoleSchoolAdmin)
	}
	if claims.SchoolID == nil || *claims.SchoolID != schoolID {
		t.Fatalf("school ID not carried in claims: %v", claims.SchoolID)
	}
}

func TestJWTSuperAdminHasNoSchool(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	user := &models.User{
		ID:    uuid.New(),
		Email: "root@example.com",
		Role:  models.RoleSuperAdmin,
	}

	token, err := svc.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.SchoolID != nil {
		t.Fatalf("expected nil school ID for super admin, got %s", claims.SchoolID)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(&models.User{ID: uuid.New(), Role: models.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := NewJWTService("secret-b", 1).Validate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -1)
	token, err := svc.Generate(&models.User{ID: uuid.New(), Role: models.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if _, err := svc.Validate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := NewJWTService("test-secret", 1).Validate("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
