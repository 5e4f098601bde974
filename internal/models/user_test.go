package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleStudent, RoleIndustrySupervisor, RoleUniversitySupervisor, RoleSchoolAdmin, RoleSuperAdmin} {
		if !r.Valid() {
			t.Fatalf("role %q should be valid", r)
		}
	}
	if Role("admin").Valid() {
		t.Fatal(`role "admin" should be invalid`)
	}
	if Role("").Valid() {
		t.Fatal("empty role should be invalid")
	}
}

func TestValidateTenancy(t *testing.T) {
	schoolID := uuid.New()
	cases := []struct {
		name     string
		role     Role
		schoolID *uuid.UUID
		wantErr  bool
	}{
		{"super admin without school", RoleSuperAdmin, nil, false},
		{"super admin with school", RoleSuperAdmin, &schoolID, true},
		{"student with school", RoleStudent, &schoolID, false},
		{"student without school", RoleStudent, nil, true},
		{"school admin without school", RoleSchoolAdmin, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTenancy(tc.role, tc.schoolID)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateTenancy(%q, %v) error = %v, wantErr %v", tc.role, tc.schoolID, err, tc.wantErr)
			}
		})
	}
}

func TestUserToPublicStripsSecrets(t *testing.T) {
	u := &User{
		ID:       uuid.New(),
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "$2a$10$hash",
		Role:     RoleStudent,
		Status:   UserActive,
	}
	pub := u.ToPublic()
	if pub.ID != u.ID || pub.Email != u.Email || pub.Role != u.Role {
		t.Fatalf("public view lost fields: %+v", pub)
	}
}
