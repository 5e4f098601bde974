package models

import "errors"

// Shared error kinds surfaced by repositories and services. Handlers map
// these onto the response envelope; anything else is reported generically.
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrAccountLocked         = errors.New("account locked")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("not found")
	ErrDuplicateEmail        = errors.New("email already in use")
	ErrDuplicateContactEmail = errors.New("contact email already in use")
	ErrDuplicateAdmissionNo  = errors.New("admission number already in use")
	ErrDuplicateCheckIn      = errors.New("already checked in today")
	ErrInvalidParticipantSet = errors.New("meeting requires at least one participant")
	ErrTransactionAborted    = errors.New("operation could not be completed")
	ErrValidation            = errors.New("validation failed")
)
