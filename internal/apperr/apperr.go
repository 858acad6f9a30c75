// Package apperr holds the error kinds shared by the service and transport
// layers. Callers wrap a kind with fmt.Errorf("%w: ...") and the HTTP layer
// dispatches on it with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrForbidden          = errors.New("not allowed")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrDuplicateCompany   = errors.New("a company with this name already exists")
	ErrAlreadyApplied     = errors.New("already applied to this job")
	ErrUpstream           = errors.New("upstream failure")
)

// Validation builds an ErrValidation carrying a client-facing reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound names the missing resource.
func NotFound(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

// Upstream marks err as a datastore or collaborator failure. The cause
// stays reachable through errors.Is/As for logging.
func Upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}

// Kind is the stable machine-readable name of err's kind.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrDuplicateCompany):
		return "duplicate_company"
	case errors.Is(err, ErrAlreadyApplied):
		return "already_applied"
	case errors.Is(err, ErrUpstream):
		return "upstream_failure"
	default:
		return "internal_error"
	}
}
