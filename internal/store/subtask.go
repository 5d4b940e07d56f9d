package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
)

// SubtaskStore defines the persistence interface for subtasks. Ownership is
// derived through the parent task: lookups by subtask ID join against the
// tasks table so a subtask under someone else's task behaves as missing.
type SubtaskStore interface {
	// Create persists a new subtask. The parent task must already be
	// resolved as owned by the caller.
	Create(ctx context.Context, subtask *domain.Subtask) error

	// GetByID retrieves a subtask whose parent task belongs to the owner.
	// Returns ErrSubtaskNotFound if absent or under a foreign task.
	GetByID(ctx context.Context, userID, subtaskID uuid.UUID) (*domain.Subtask, error)

	// ListForTask returns a task's subtasks ordered by order_index.
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]domain.Subtask, error)

	// ListForTasks returns the subtasks of each of the given tasks, keyed by
	// task ID. Tasks with no subtasks are absent from the map.
	ListForTasks(
		ctx context.Context,
		taskIDs []uuid.UUID,
	) (map[uuid.UUID][]domain.Subtask, error)

	// CountForTask returns a task's subtask count, used for the per-task
	// capacity check.
	CountForTask(ctx context.Context, taskID uuid.UUID) (int, error)

	// Update persists the subtask's current field values.
	// Returns ErrSubtaskNotFound if the row is gone.
	Update(ctx context.Context, subtask *domain.Subtask) error

	// CompleteAllForTask marks every subtask of the task completed. This is
	// the completion cascade; it runs in the same transaction as the parent
	// update that triggered it.
	CompleteAllForTask(ctx context.Context, taskID uuid.UUID) error

	// Delete removes a subtask whose parent task belongs to the owner.
	// Returns ErrSubtaskNotFound if absent or under a foreign task.
	Delete(ctx context.Context, userID, subtaskID uuid.UUID) error

	// WithTx returns a SubtaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) SubtaskStore
}
