package models

// Context keys set by the authentication middleware and read by handlers.
const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
	// ContextSchoolID is the key for the school (tenant) ID in gin context.
	// It is taken from the token, not the user row, so it reflects the school
	// the credential was issued for.
	ContextSchoolID = "school_id"
)
