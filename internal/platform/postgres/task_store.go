package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

// taskColumns is the column list shared by every task SELECT.
const taskColumns = `id, user_id, title, description, priority, status, completed,
	due_date, time_spent, custom_order, recurrence_pattern, version, created_at, updated_at`

// sortColumns whitelists the sortable columns. Anything else falls back to
// created_at.
var sortColumns = map[string]string{
	store.SortByCreatedAt:   "created_at",
	store.SortByUpdatedAt:   "updated_at",
	store.SortByDueDate:     "due_date",
	store.SortByPriority:    "priority",
	store.SortByTitle:       "title",
	store.SortByCustomOrder: "custom_order",
}

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// Ensure TaskStore implements store.TaskStore
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a new PostgreSQL-backed TaskStore.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx}
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.Completed,
		task.DueDate,
		task.TimeSpent,
		task.CustomOrder,
		[]byte(task.Recurrence),
		task.Version,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	return s.getOne(ctx, query, taskID, userID)
}

// GetForUpdate implements store.TaskStore.GetForUpdate
func (s *TaskStore) GetForUpdate(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return s.getOne(ctx, query, taskID, userID)
}

func (s *TaskStore) getOne(ctx context.Context, query string, args ...any) (*domain.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	opts store.ListOptions,
) ([]*domain.Task, error) {
	where, args := buildTaskPredicates(userID, filter)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` ` + buildOrderBy(opts)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// Count implements store.TaskStore.Count
func (s *TaskStore) Count(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) (int, error) {
	where, args := buildTaskPredicates(userID, filter)

	var count int
	query := `SELECT count(*) FROM tasks WHERE ` + where
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// CountForUser implements store.TaskStore.CountForUser
func (s *TaskStore) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT count(*) FROM tasks WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// Update implements store.TaskStore.Update. The version increment happens in
// the database so the stored counter moves by exactly 1 per committed
// update regardless of what the in-memory task carries.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4, completed = $5,
			due_date = $6, time_spent = $7, custom_order = $8, recurrence_pattern = $9,
			version = version + 1, updated_at = $10
		WHERE id = $11 AND user_id = $12
		RETURNING version
	`

	err := s.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.Completed,
		task.DueDate,
		task.TimeSpent,
		task.CustomOrder,
		[]byte(task.Recurrence),
		task.UpdatedAt,
		task.ID,
		task.UserID,
	).Scan(&task.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrTaskNotFound
		}
		return MapError(err)
	}

	return nil
}

// Delete implements store.TaskStore.Delete. Subtasks and tag associations
// are removed by the schema's ON DELETE CASCADE foreign keys in the same
// statement; tag entities are never touched.
func (s *TaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// buildTaskPredicates translates a TaskFilter into a SQL WHERE clause and
// its arguments. The owner scope comes first; every specified predicate
// category is ANDed after it, and multi-value categories expand to IN lists
// (OR within the category).
func buildTaskPredicates(userID uuid.UUID, f store.TaskFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	placeholders := func(n int) []string {
		ph := make([]string, n)
		for i := range ph {
			ph[i] = fmt.Sprintf("$%d", len(args)-n+i+1)
		}
		return ph
	}

	if len(f.Priorities) > 0 {
		for _, p := range f.Priorities {
			args = append(args, p)
		}
		conds = append(conds,
			fmt.Sprintf("priority IN (%s)", strings.Join(placeholders(len(f.Priorities)), ", ")))
	}

	if len(f.Statuses) > 0 {
		for _, st := range f.Statuses {
			args = append(args, st)
		}
		conds = append(conds,
			fmt.Sprintf("status IN (%s)", strings.Join(placeholders(len(f.Statuses)), ", ")))
	}

	if f.Completed != nil {
		args = append(args, *f.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}

	if f.DueAfter != nil {
		args = append(args, *f.DueAfter)
		conds = append(conds, fmt.Sprintf("due_date >= $%d", len(args)))
	}

	if f.DueBefore != nil {
		args = append(args, *f.DueBefore)
		conds = append(conds, fmt.Sprintf("due_date <= $%d", len(args)))
	}

	if len(f.TagIDs) > 0 {
		for _, id := range f.TagIDs {
			args = append(args, id)
		}
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = tasks.id AND tt.tag_id IN (%s))",
			strings.Join(placeholders(len(f.TagIDs)), ", ")))
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
		conds = append(conds,
			fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args)-1, len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// buildOrderBy translates list options into an ORDER BY clause against the
// sort column whitelist. Ties on the sort key are left to storage order.
func buildOrderBy(opts store.ListOptions) string {
	col, ok := sortColumns[opts.SortBy]
	if !ok {
		col = "created_at"
	}

	dir := "DESC"
	if opts.Ascending {
		dir = "ASC"
	}

	return fmt.Sprintf("ORDER BY %s %s", col, dir)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task       domain.Task
		dueDate    sql.NullTime
		order      sql.NullInt64
		recurrence []byte
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.Completed,
		&dueDate,
		&task.TimeSpent,
		&order,
		&recurrence,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	if order.Valid {
		customOrder := int(order.Int64)
		task.CustomOrder = &customOrder
	}
	if len(recurrence) > 0 {
		task.Recurrence = json.RawMessage(recurrence)
	}

	return &task, nil
}

// timeNow is separated for tests.
var timeNow = func() time.Time { return time.Now().UTC() }
