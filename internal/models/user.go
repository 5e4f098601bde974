package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role in the platform. Every user holds exactly one.
type Role string

const (
	RoleStudent              Role = "student"
	RoleIndustrySupervisor   Role = "industry_supervisor"
	RoleUniversitySupervisor Role = "university_supervisor"
	RoleSchoolAdmin          Role = "school_admin"
	RoleSuperAdmin           Role = "super_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleIndustrySupervisor, RoleUniversitySupervisor, RoleSchoolAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// ValidateTenancy enforces the role/tenant invariant: super admins are
// platform-level (nil school), every other role belongs to exactly one school.
func ValidateTenancy(role Role, schoolID *uuid.UUID) error {
	if role == RoleSuperAdmin {
		if schoolID != nil {
			return ErrValidation
		}
		return nil
	}
	if schoolID == nil {
		return ErrValidation
	}
	return nil
}

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserLocked  UserStatus = "locked"
	UserPending UserStatus = "pending"
)

// User represents a platform identity. SchoolID is nil only for super admins.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	SchoolID            *uuid.UUID `json:"school_id"`
	FullName            string     `json:"full_name"`
	Email               string     `json:"email"`
	Password            string     `json:"-"`
	Role                Role       `json:"role"`
	Status              UserStatus `json:"status"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	FailedLogins        int        `json:"-"`
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID  `json:"id"`
	SchoolID  *uuid.UUID `json:"school_id"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		SchoolID:  u.SchoolID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
