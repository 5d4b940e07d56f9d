package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPriority is returned when a task priority is not one of the
	// known priority values.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidStatus is returned when a task status is not one of the
	// known status values.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrStatusCompletedMismatch is returned when an update specifies both
	// the status and completed fields and they disagree (e.g. status "done"
	// with completed=false).
	ErrStatusCompletedMismatch = errors.New("status and completed flag disagree")
)

// ValidationError describes a field-level constraint violation.
// It wraps ErrValidation so callers can discriminate with errors.Is.
type ValidationError struct {
	Field   string // The field that failed validation
	Message string // Human-readable description of the violation
	Err     error  // Underlying error, usually ErrValidation
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
