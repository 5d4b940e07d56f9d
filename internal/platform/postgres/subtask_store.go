package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

const subtaskColumns = `id, task_id, title, completed, order_index, created_at, updated_at`

// SubtaskStore implements store.SubtaskStore using PostgreSQL. Lookups by
// subtask ID join against the tasks table so ownership is enforced without
// a separate query.
type SubtaskStore struct {
	db store.DBTX
}

// Ensure SubtaskStore implements store.SubtaskStore
var _ store.SubtaskStore = (*SubtaskStore)(nil)

// NewSubtaskStore creates a new PostgreSQL-backed SubtaskStore.
func NewSubtaskStore(db store.DBTX) *SubtaskStore {
	return &SubtaskStore{db: db}
}

// WithTx implements store.SubtaskStore.WithTx
func (s *SubtaskStore) WithTx(tx *sql.Tx) store.SubtaskStore {
	return &SubtaskStore{db: tx}
}

// Create implements store.SubtaskStore.Create
func (s *SubtaskStore) Create(ctx context.Context, subtask *domain.Subtask) error {
	query := `
		INSERT INTO subtasks (` + subtaskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		subtask.ID,
		subtask.TaskID,
		subtask.Title,
		subtask.Completed,
		subtask.OrderIndex,
		subtask.CreatedAt,
		subtask.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.SubtaskStore.GetByID
func (s *SubtaskStore) GetByID(
	ctx context.Context,
	userID, subtaskID uuid.UUID,
) (*domain.Subtask, error) {
	query := `
		SELECT s.id, s.task_id, s.title, s.completed, s.order_index, s.created_at, s.updated_at
		FROM subtasks s
		JOIN tasks t ON t.id = s.task_id
		WHERE s.id = $1 AND t.user_id = $2
	`

	subtask, err := scanSubtask(s.db.QueryRowContext(ctx, query, subtaskID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSubtaskNotFound
		}
		return nil, MapError(err)
	}

	return subtask, nil
}

// ListForTask implements store.SubtaskStore.ListForTask
func (s *SubtaskStore) ListForTask(
	ctx context.Context,
	taskID uuid.UUID,
) ([]domain.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE task_id = $1 ORDER BY order_index`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	subtasks := make([]domain.Subtask, 0)
	for rows.Next() {
		subtask, err := scanSubtask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		subtasks = append(subtasks, *subtask)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return subtasks, nil
}

// ListForTasks implements store.SubtaskStore.ListForTasks
func (s *SubtaskStore) ListForTasks(
	ctx context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]domain.Subtask, error) {
	result := make(map[uuid.UUID][]domain.Subtask)
	if len(taskIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(taskIDs))
	ph := make([]string, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = id
		ph[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		`SELECT `+subtaskColumns+` FROM subtasks WHERE task_id IN (%s) ORDER BY order_index`,
		strings.Join(ph, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		subtask, err := scanSubtask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		result[subtask.TaskID] = append(result[subtask.TaskID], *subtask)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return result, nil
}

// CountForTask implements store.SubtaskStore.CountForTask
func (s *SubtaskStore) CountForTask(ctx context.Context, taskID uuid.UUID) (int, error) {
	var count int
	query := `SELECT count(*) FROM subtasks WHERE task_id = $1`
	if err := s.db.QueryRowContext(ctx, query, taskID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// Update implements store.SubtaskStore.Update
func (s *SubtaskStore) Update(ctx context.Context, subtask *domain.Subtask) error {
	query := `
		UPDATE subtasks
		SET title = $1, completed = $2, order_index = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		subtask.Title,
		subtask.Completed,
		subtask.OrderIndex,
		subtask.UpdatedAt,
		subtask.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrSubtaskNotFound)
}

// CompleteAllForTask implements store.SubtaskStore.CompleteAllForTask
func (s *SubtaskStore) CompleteAllForTask(ctx context.Context, taskID uuid.UUID) error {
	query := `
		UPDATE subtasks
		SET completed = TRUE, updated_at = $1
		WHERE task_id = $2 AND completed = FALSE
	`

	if _, err := s.db.ExecContext(ctx, query, timeNow(), taskID); err != nil {
		return MapError(err)
	}

	return nil
}

// Delete implements store.SubtaskStore.Delete
func (s *SubtaskStore) Delete(ctx context.Context, userID, subtaskID uuid.UUID) error {
	query := `
		DELETE FROM subtasks s
		USING tasks t
		WHERE s.id = $1 AND s.task_id = t.id AND t.user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, subtaskID, userID)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrSubtaskNotFound)
}

func scanSubtask(row rowScanner) (*domain.Subtask, error) {
	var subtask domain.Subtask
	err := row.Scan(
		&subtask.ID,
		&subtask.TaskID,
		&subtask.Title,
		&subtask.Completed,
		&subtask.OrderIndex,
		&subtask.CreatedAt,
		&subtask.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &subtask, nil
}
