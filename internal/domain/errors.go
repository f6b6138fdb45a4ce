package domain

import (
	"errors"
	"net/http"

	"draftdeck/internal/domain/models"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling in the
// gateway's response layer.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrSendInFlight is returned when a chat send is rejected because one
	// is already streaming for the same conversation (single-flight guard).
	ErrSendInFlight = errors.New("a message is already streaming")

	// ErrConversationLocked is returned when the backend has frozen the
	// conversation against further edits.
	ErrConversationLocked = errors.New("conversation is locked")
)

// ImportConflictError is returned when an import collides on source URL
// with conversations imported earlier. It carries the colliding items so
// the caller can let the user pick a resolution.
type ImportConflictError struct {
	Message   string
	Conflicts []models.ConflictItem
}

// Error implements the error interface
func (e *ImportConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ImportConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ImportConflictError) Is(target error) bool {
	return target == ErrConflict
}
