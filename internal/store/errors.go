package store

import (
	"errors"
	"fmt"
)

// Common store errors. Every caller-facing failure of the engine maps to
// exactly one of these kinds; no storage error detail leaks past them.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. An entity that exists but belongs to a different owner returns
	// this same error, never a "forbidden" variant, so existence does not
	// leak across owners.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity (e.g. two tags with the same name for one owner).
	ErrDuplicate = errors.New("entity already exists")

	// ErrVersionConflict is returned when an update supplies an expected
	// version that no longer matches the stored one. See VersionConflictError
	// for the diagnostic payload.
	ErrVersionConflict = errors.New("version conflict")

	// ErrLimitExceeded is returned when an insert would push a count past a
	// capacity ceiling. See LimitExceededError for the diagnostic payload.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrInvalidEntity is returned when an entity fails a storage-level
	// constraint. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrTaskNotFound indicates that the requested task does not exist for
	// the requesting owner.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrTagNotFound indicates that the requested tag does not exist for
	// the requesting owner.
	ErrTagNotFound = fmt.Errorf("%w: tag", ErrNotFound)

	// ErrSubtaskNotFound indicates that the requested subtask does not exist
	// for the requesting owner.
	ErrSubtaskNotFound = fmt.Errorf("%w: subtask", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrTagNameExists indicates that the owner already has a tag with the
	// requested name.
	ErrTagNameExists = fmt.Errorf("%w: tag name", ErrDuplicate)

	// ErrEmailExists indicates that a user with the given email already
	// exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// VersionConflictError reports a stale optimistic-lock version on a task
// update. It carries both the version the caller expected and the version
// actually stored, for diagnostics.
type VersionConflictError struct {
	Expected int
	Actual   int
}

// Error implements the error interface for VersionConflictError.
func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected %d, stored version is %d", e.Expected, e.Actual)
}

// Unwrap lets errors.Is(err, ErrVersionConflict) match.
func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}

// LimitExceededError reports a capacity ceiling that an insert would have
// exceeded. It carries the ceiling and the count currently in use.
type LimitExceededError struct {
	Resource string // What is being counted (e.g. "tags per user")
	Limit    int    // The fixed ceiling
	Current  int    // The count before the rejected insert
}

// Error implements the error interface for LimitExceededError.
func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit exceeded: ceiling %d, currently %d", e.Resource, e.Limit, e.Current)
}

// Unwrap lets errors.Is(err, ErrLimitExceeded) match.
func (e *LimitExceededError) Unwrap() error {
	return ErrLimitExceeded
}
