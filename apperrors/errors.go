package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAuthRequired is returned for user-scoped actions without a session.
	ErrAuthRequired = errors.New("authentication required")
	// ErrForbidden is returned when the session user does not own the resource.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError describes a request that violated an input constraint.
// No external calls are made once one has been produced.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a failure of the moderation classifier or the guidance
// generator.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func Upstream(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

// PersistenceError wraps a store failure. Every write is a single statement,
// so a caller may retry after one of these.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// Status maps an error to the HTTP status the API responds with.
func Status(err error) int {
	var validation *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
