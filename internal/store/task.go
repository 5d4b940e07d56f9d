package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
)

// Sortable task list fields. Anything outside this set falls back to
// creation time.
const (
	SortByCreatedAt   = "created_at"
	SortByUpdatedAt   = "updated_at"
	SortByDueDate     = "due_date"
	SortByPriority    = "priority"
	SortByTitle       = "title"
	SortByCustomOrder = "custom_order"
)

// TaskFilter is a multi-criteria filter over an owner's tasks. All specified
// predicate categories combine with AND; within a multi-value category
// (priorities, statuses, tag IDs) the values combine with OR. Zero-valued
// categories impose no constraint. The owner scope is always applied before
// any of these predicates.
type TaskFilter struct {
	// Priorities matches tasks whose priority is any of the given values.
	Priorities []domain.Priority

	// Statuses matches tasks whose status is any of the given values.
	Statuses []domain.Status

	// Completed, when non-nil, matches tasks with that completed flag.
	Completed *bool

	// DueAfter and DueBefore bound the due date range, both inclusive.
	// Tasks without a due date never match a bounded range.
	DueAfter  *time.Time
	DueBefore *time.Time

	// TagIDs matches tasks carrying at least one of the given tags.
	TagIDs []uuid.UUID

	// Search matches tasks whose title or description contains the given
	// text, case-insensitively.
	Search string
}

// ListOptions selects the sort order and page of a task list query.
type ListOptions struct {
	// SortBy is one of the SortBy* constants; empty means SortByCreatedAt.
	SortBy string

	// Ascending flips the default descending order.
	Ascending bool

	// Limit caps the page size; zero or negative means no limit.
	Limit int

	// Offset skips that many matching rows.
	Offset int
}

// TaskStore defines the persistence interface for tasks. Every operation is
// scoped to the owning user: a task that exists but belongs to someone else
// behaves identically to a missing one (ErrTaskNotFound).
type TaskStore interface {
	// Create persists a new task. The task must already be valid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves the owner's task by ID.
	// Returns ErrTaskNotFound if absent or owned by someone else.
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// GetForUpdate is GetByID with a row lock held for the remainder of the
	// surrounding transaction. Use it before a read-modify-write so
	// concurrent writers of the same task serialize.
	GetForUpdate(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks matching the filter, sorted and paged
	// per opts. Ties on the sort key are returned in storage order.
	List(
		ctx context.Context,
		userID uuid.UUID,
		filter TaskFilter,
		opts ListOptions,
	) ([]*domain.Task, error)

	// Count returns the number of the owner's tasks matching the filter,
	// ignoring pagination.
	Count(ctx context.Context, userID uuid.UUID, filter TaskFilter) (int, error)

	// CountForUser returns the owner's total task count, used for the
	// per-owner capacity check.
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)

	// Update persists the task's current field values and increments the
	// stored version by exactly 1, reflecting the new version and updated_at
	// back onto the task. Returns ErrTaskNotFound if the row is gone.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the owner's task. Subtasks and tag associations go with
	// it via the schema's ON DELETE CASCADE; tag entities are untouched.
	// Returns ErrTaskNotFound if absent or owned by someone else.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
