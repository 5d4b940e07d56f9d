package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
)

// TagStore defines the persistence interface for tags and their task
// associations. Tag reads and writes are owner-scoped; association queries
// are keyed by task ID and expect the caller to have resolved task ownership
// first.
type TagStore interface {
	// Create persists a new tag.
	// Returns ErrTagNameExists if the owner already has a tag by that name.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID retrieves the owner's tag by ID.
	// Returns ErrTagNotFound if absent or owned by someone else.
	GetByID(ctx context.Context, userID, tagID uuid.UUID) (*domain.Tag, error)

	// List returns all of the owner's tags ordered by name.
	List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error)

	// CountForUser returns the owner's tag count, used for the per-owner
	// capacity check.
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)

	// CountOwned returns how many of the given tag IDs exist and belong to
	// the owner. A result smaller than the number of distinct IDs means at
	// least one tag is missing or foreign.
	CountOwned(ctx context.Context, userID uuid.UUID, tagIDs []uuid.UUID) (int, error)

	// Update persists the tag's current field values.
	// Returns ErrTagNameExists on a rename collision and ErrTagNotFound if
	// the row is gone.
	Update(ctx context.Context, tag *domain.Tag) error

	// Delete removes the owner's tag. Its task associations go with it via
	// ON DELETE CASCADE; the tasks themselves are untouched.
	// Returns ErrTagNotFound if absent or owned by someone else.
	Delete(ctx context.Context, userID, tagID uuid.UUID) error

	// ListForTask returns the tags attached to one task, ordered by name.
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]domain.Tag, error)

	// ListForTasks returns the tags attached to each of the given tasks,
	// keyed by task ID. Tasks with no tags are absent from the map.
	ListForTasks(
		ctx context.Context,
		taskIDs []uuid.UUID,
	) (map[uuid.UUID][]domain.Tag, error)

	// ReplaceForTask replaces the task's tag set wholesale with the given
	// tag IDs. An empty slice detaches every tag.
	ReplaceForTask(ctx context.Context, taskID uuid.UUID, tagIDs []uuid.UUID) error

	// WithTx returns a TagStore bound to the given transaction.
	WithTx(tx *sql.Tx) TagStore
}
