package api

import (
	"errors"
	"net/http"

	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/service/auth"
	"github.com/taskvault/taskvault-api/internal/store"
)

// Stable error codes. Each kind in the engine's error taxonomy maps 1:1 to
// one of these; clients branch on the code, never on message text.
const (
	CodeNotFound        = "not_found"
	CodeVersionConflict = "version_conflict"
	CodeLimitExceeded   = "limit_exceeded"
	CodeDuplicateName   = "duplicate_name"
	CodeEmailExists     = "email_exists"
	CodeValidation      = "validation_error"
	CodeUnauthorized    = "unauthorized"
	CodeInternal        = "internal_error"
)

// MapError maps an engine error to an HTTP status, a stable error code and
// a caller-safe message. Internal detail never leaks: anything outside the
// typed taxonomy collapses to a generic internal error.
func MapError(err error) (int, string, string) {
	var conflictErr *store.VersionConflictError
	var limitErr *store.LimitExceededError
	var validationErr *domain.ValidationError

	switch {
	case errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized, "authentication required"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeUnauthorized, "invalid credentials"

	case errors.As(err, &conflictErr):
		return http.StatusConflict, CodeVersionConflict, conflictErr.Error()

	case errors.As(err, &limitErr):
		return http.StatusUnprocessableEntity, CodeLimitExceeded, limitErr.Error()

	case errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict, CodeVersionConflict, "version conflict"

	case errors.Is(err, store.ErrLimitExceeded):
		return http.StatusUnprocessableEntity, CodeLimitExceeded, "limit exceeded"

	case errors.Is(err, store.ErrTagNameExists):
		return http.StatusConflict, CodeDuplicateName, "a tag with this name already exists"

	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict, CodeEmailExists, "this email is already registered"

	case store.IsNotFoundError(err):
		return http.StatusNotFound, CodeNotFound, "resource not found"

	case errors.As(err, &validationErr):
		return http.StatusBadRequest, CodeValidation, validationErr.Error()

	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest, CodeValidation, "invalid request"

	default:
		return http.StatusInternalServerError, CodeInternal, "an internal error occurred"
	}
}
