package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and handlers. Repositories wrap
// these with fmt.Errorf("...: %w", err); handlers map them with errors.Is.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
)

// Conflict variants name the colliding field; both unwrap to ErrConflict.
var (
	ErrConflictUsername = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrConflictEmail    = fmt.Errorf("email already exists: %w", ErrConflict)
)

// Validation errors returned by the input validator before any storage I/O.
var (
	ErrInvalidUsername  = errors.New("username must be 3-50 characters of letters, numbers, and underscores")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
)

// IsConflict reports whether err is a uniqueness conflict of either field.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether err is a client input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidUsername) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrPasswordTooShort)
}
