package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/logger"
	"github.com/taskvault/taskvault-api/internal/store"
)

// CreateTaskInput carries the fields of a task creation request. Zero
// values fall back to defaults (priority "none", status "todo"). TagIDs
// attaches at most domain.MaxTagsPerTask tags owned by the same user.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	Status      domain.Status
	Completed   *bool
	DueDate     *time.Time
	TimeSpent   int
	CustomOrder *int
	Recurrence  json.RawMessage
	TagIDs      []uuid.UUID
}

// BulkUpdateItem pairs a task ID with the mutations to apply to it.
type BulkUpdateItem struct {
	ID     uuid.UUID
	Update domain.TaskUpdate
}

// TaskPage is one page of a filtered task listing plus the total match
// count ignoring pagination.
type TaskPage struct {
	Tasks  []*domain.TaskDetail
	Total  int
	Limit  int
	Offset int
}

// TaskService provides the task mutation and query operations of the
// engine. Every method receives the already-authenticated owner ID and runs
// its reads, writes and cascades inside a single transaction (one per batch
// for the bulk methods).
type TaskService interface {
	// CreateTask creates a task (version 1) with up to 10 tags attached.
	// Fails with ErrLimitExceeded when the owner is at the task ceiling and
	// with ErrTagNotFound when a tag ID is missing or foreign.
	CreateTask(ctx context.Context, userID uuid.UUID, input CreateTaskInput) (*domain.TaskDetail, error)

	// GetTask returns the task aggregate: the task plus its tags and
	// subtasks, both always populated.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.TaskDetail, error)

	// ListTasks returns the owner's tasks matching the filter, sorted and
	// paged, together with the total match count.
	ListTasks(
		ctx context.Context,
		userID uuid.UUID,
		filter store.TaskFilter,
		opts store.ListOptions,
	) (*TaskPage, error)

	// UpdateTask applies the mutations to the task. When expectedVersion is
	// non-nil and stale the call fails with a VersionConflictError and
	// nothing is applied; when nil the update is unconditional
	// (last-writer-wins). A completed false-to-true transition completes
	// every subtask in the same transaction.
	UpdateTask(
		ctx context.Context,
		userID, taskID uuid.UUID,
		update domain.TaskUpdate,
		expectedVersion *int,
	) (*domain.TaskDetail, error)

	// DeleteTask deletes the task together with its subtasks and tag
	// associations. Tag entities survive.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error

	// BulkCreateTasks creates up to 50 tasks all-or-nothing: the capacity
	// check covers the whole batch and any invalid item rolls back every
	// insert.
	BulkCreateTasks(
		ctx context.Context,
		userID uuid.UUID,
		inputs []CreateTaskInput,
	) ([]*domain.Task, error)

	// BulkUpdateTasks applies up to 50 per-item updates best-effort: items
	// whose ID is missing or foreign are silently skipped, found items are
	// applied unconditionally with no version check. Returns the tasks that
	// were updated.
	BulkUpdateTasks(
		ctx context.Context,
		userID uuid.UUID,
		items []BulkUpdateItem,
	) ([]*domain.Task, error)

	// BulkDeleteTasks deletes up to 50 tasks by ID, silently ignoring IDs
	// that are missing or foreign.
	BulkDeleteTasks(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks    store.TaskStore
	tags     store.TagStore
	subtasks store.SubtaskStore
	logger   *slog.Logger
	runTx    func(ctx context.Context, fn store.TxFn) error
}

// NewTaskService creates a new TaskService backed by the given database and
// stores. It returns an error if any required dependency is nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	tags store.TagStore,
	subtasks store.SubtaskStore,
	log *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", nil)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", nil)
	}
	if tags == nil {
		return nil, domain.NewValidationError("tags", "cannot be nil", nil)
	}
	if subtasks == nil {
		return nil, domain.NewValidationError("subtasks", "cannot be nil", nil)
	}
	if log == nil {
		log = slog.Default()
	}

	return &taskServiceImpl{
		tasks:    tasks,
		tags:     tags,
		subtasks: subtasks,
		logger:   log.With(slog.String("component", "task_service")),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	input CreateTaskInput,
) (*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var detail *domain.TaskDetail
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txTags := s.tags.WithTx(tx)

		count, err := txTasks.CountForUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := store.CheckLimit("tasks per user", count, 1, domain.MaxTasksPerUser); err != nil {
			return err
		}

		task, err := buildTask(userID, input)
		if err != nil {
			return err
		}

		tagIDs, err := s.resolveTagIDs(ctx, txTags, userID, input.TagIDs)
		if err != nil {
			return err
		}

		if err := txTasks.Create(ctx, task); err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			if err := txTags.ReplaceForTask(ctx, task.ID, tagIDs); err != nil {
				return err
			}
		}

		tags, err := txTags.ListForTask(ctx, task.ID)
		if err != nil {
			return err
		}

		detail = newTaskDetail(task, tags, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("created task",
		slog.String("task_id", detail.ID.String()),
		slog.String("user_id", userID.String()))
	return detail, nil
}

// GetTask implements TaskService.GetTask. The reads share one transaction so
// the aggregate is assembled from a single snapshot.
func (s *taskServiceImpl) GetTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.TaskDetail, error) {
	var detail *domain.TaskDetail
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txTags := s.tags.WithTx(tx)
		txSubtasks := s.subtasks.WithTx(tx)

		task, err := txTasks.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}

		tags, err := txTags.ListForTask(ctx, taskID)
		if err != nil {
			return NewServiceError("task", "get", "failed to load tags", err)
		}
		subtasks, err := txSubtasks.ListForTask(ctx, taskID)
		if err != nil {
			return NewServiceError("task", "get", "failed to load subtasks", err)
		}

		detail = newTaskDetail(task, tags, subtasks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// ListTasks implements TaskService.ListTasks. The page, its total and the
// per-task relationships are read in one transaction so they come from one
// snapshot.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	opts store.ListOptions,
) (*TaskPage, error) {
	var page *TaskPage
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txTags := s.tags.WithTx(tx)
		txSubtasks := s.subtasks.WithTx(tx)

		tasks, err := txTasks.List(ctx, userID, filter, opts)
		if err != nil {
			return NewServiceError("task", "list", "failed to list tasks", err)
		}

		total, err := txTasks.Count(ctx, userID, filter)
		if err != nil {
			return NewServiceError("task", "list", "failed to count tasks", err)
		}

		taskIDs := make([]uuid.UUID, len(tasks))
		for i, task := range tasks {
			taskIDs[i] = task.ID
		}

		tagsByTask, err := txTags.ListForTasks(ctx, taskIDs)
		if err != nil {
			return NewServiceError("task", "list", "failed to load tags", err)
		}
		subtasksByTask, err := txSubtasks.ListForTasks(ctx, taskIDs)
		if err != nil {
			return NewServiceError("task", "list", "failed to load subtasks", err)
		}

		details := make([]*domain.TaskDetail, len(tasks))
		for i, task := range tasks {
			details[i] = newTaskDetail(task, tagsByTask[task.ID], subtasksByTask[task.ID])
		}

		page = &TaskPage{
			Tasks:  details,
			Total:  total,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	update domain.TaskUpdate,
	expectedVersion *int,
) (*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var detail *domain.TaskDetail
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txTags := s.tags.WithTx(tx)
		txSubtasks := s.subtasks.WithTx(tx)

		task, err := txTasks.GetForUpdate(ctx, userID, taskID)
		if err != nil {
			return err
		}

		if expectedVersion != nil && *expectedVersion != task.Version {
			return &store.VersionConflictError{
				Expected: *expectedVersion,
				Actual:   task.Version,
			}
		}

		task, err = s.applyTaskUpdate(ctx, txTasks, txTags, txSubtasks, task, update)
		if err != nil {
			return err
		}

		tags, err := txTags.ListForTask(ctx, taskID)
		if err != nil {
			return err
		}
		subtasks, err := txSubtasks.ListForTask(ctx, taskID)
		if err != nil {
			return err
		}

		detail = newTaskDetail(task, tags, subtasks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("updated task",
		slog.String("task_id", taskID.String()),
		slog.Int("version", detail.Version))
	return detail, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.tasks.WithTx(tx).Delete(ctx, userID, taskID)
	})
}

// BulkCreateTasks implements TaskService.BulkCreateTasks
func (s *taskServiceImpl) BulkCreateTasks(
	ctx context.Context,
	userID uuid.UUID,
	inputs []CreateTaskInput,
) ([]*domain.Task, error) {
	if len(inputs) > domain.MaxBatchSize {
		return nil, domain.NewValidationError("tasks", "batch exceeds 50 items", nil)
	}
	if len(inputs) == 0 {
		return []*domain.Task{}, nil
	}

	var created []*domain.Task
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txTags := s.tags.WithTx(tx)

		count, err := txTasks.CountForUser(ctx, userID)
		if err != nil {
			return err
		}

		// The whole batch counts against the ceiling up front so a single
		// request cannot blow through the cap item by item.
		if err := store.CheckLimit("tasks per user", count, len(inputs), domain.MaxTasksPerUser); err != nil {
			return err
		}

		created = make([]*domain.Task, 0, len(inputs))
		for _, input := range inputs {
			task, err := buildTask(userID, input)
			if err != nil {
				return err
			}

			tagIDs, err := s.resolveTagIDs(ctx, txTags, userID, input.TagIDs)
			if err != nil {
				return err
			}

			if err := txTasks.Create(ctx, task); err != nil {
				return err
			}
			if len(tagIDs) > 0 {
				if err := txTags.ReplaceForTask(ctx, task.ID, tagIDs); err != nil {
					return err
				}
			}

			created = append(created, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// BulkUpdateTasks implements TaskService.BulkUpdateTasks. Missing and
// foreign IDs are skipped silently; there is deliberately no version check
// on this path, matching the single-update escape hatch for callers that do
// not track versions.
func (s *taskServiceImpl) BulkUpdateTasks(
	ctx context.Context,
	userID uuid.UUID,
	items []BulkUpdateItem,
) ([]*domain.Task, error) {
	if len(items) > domain.MaxBatchSize {
		return nil, domain.NewValidationError("tasks", "batch exceeds 50 items", nil)
	}
	if len(items) == 0 {
		return []*domain.Task{}, nil
	}

	var updated []*domain.Task
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txTags := s.tags.WithTx(tx)
		txSubtasks := s.subtasks.WithTx(tx)

		updated = make([]*domain.Task, 0, len(items))
		for _, item := range items {
			task, err := txTasks.GetForUpdate(ctx, userID, item.ID)
			if err != nil {
				if store.IsNotFoundError(err) {
					continue
				}
				return err
			}

			task, err = s.applyTaskUpdate(ctx, txTasks, txTags, txSubtasks, task, item.Update)
			if err != nil {
				return err
			}

			updated = append(updated, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// BulkDeleteTasks implements TaskService.BulkDeleteTasks
func (s *taskServiceImpl) BulkDeleteTasks(
	ctx context.Context,
	userID uuid.UUID,
	ids []uuid.UUID,
) error {
	if len(ids) > domain.MaxBatchSize {
		return domain.NewValidationError("ids", "batch exceeds 50 items", nil)
	}
	if len(ids) == 0 {
		return nil
	}

	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		for _, id := range ids {
			if err := txTasks.Delete(ctx, userID, id); err != nil {
				if store.IsNotFoundError(err) {
					continue
				}
				return err
			}
		}
		return nil
	})
}

// applyTaskUpdate is the shared write path of UpdateTask and
// BulkUpdateTasks: apply field mutations, replace the tag set when
// requested, run the completion cascade on a false-to-true transition, and
// persist with the version incremented by exactly 1.
func (s *taskServiceImpl) applyTaskUpdate(
	ctx context.Context,
	txTasks store.TaskStore,
	txTags store.TagStore,
	txSubtasks store.SubtaskStore,
	task *domain.Task,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	wasCompleted := task.Completed

	if err := task.Apply(update); err != nil {
		return nil, err
	}

	if update.TagIDs != nil {
		tagIDs, err := s.resolveTagIDs(ctx, txTags, task.UserID, *update.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := txTags.ReplaceForTask(ctx, task.ID, tagIDs); err != nil {
			return nil, err
		}
	}

	// Completion cascades down, never back up: un-completing a task leaves
	// its subtasks as they are.
	if !wasCompleted && task.Completed {
		if err := txSubtasks.CompleteAllForTask(ctx, task.ID); err != nil {
			return nil, err
		}
	}

	if err := txTasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// newTaskDetail assembles the read aggregate, upholding its contract that
// Tags and Subtasks are never nil regardless of what the store returned.
func newTaskDetail(task *domain.Task, tags []domain.Tag, subtasks []domain.Subtask) *domain.TaskDetail {
	if tags == nil {
		tags = make([]domain.Tag, 0)
	}
	if subtasks == nil {
		subtasks = make([]domain.Subtask, 0)
	}
	return &domain.TaskDetail{Task: *task, Tags: tags, Subtasks: subtasks}
}

// resolveTagIDs deduplicates the requested tag IDs, checks the per-task tag
// ceiling, and verifies every tag exists and belongs to the owner.
func (s *taskServiceImpl) resolveTagIDs(
	ctx context.Context,
	txTags store.TagStore,
	userID uuid.UUID,
	tagIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	unique := dedupeIDs(tagIDs)

	if err := store.CheckLimit("tags per task", 0, len(unique), domain.MaxTagsPerTask); err != nil {
		return nil, err
	}

	if len(unique) > 0 {
		owned, err := txTags.CountOwned(ctx, userID, unique)
		if err != nil {
			return nil, err
		}
		if owned != len(unique) {
			return nil, store.ErrTagNotFound
		}
	}

	return unique, nil
}

// buildTask constructs a validated task from a creation input, reusing the
// update path so the status/completed synchronization rule applies at
// creation too.
func buildTask(userID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input.Title)
	if err != nil {
		return nil, err
	}

	update := domain.TaskUpdate{
		Completed:   input.Completed,
		DueDate:     input.DueDate,
		CustomOrder: input.CustomOrder,
		Recurrence:  input.Recurrence,
	}
	if input.Description != "" {
		update.Description = &input.Description
	}
	if input.Priority != "" {
		priority := input.Priority
		update.Priority = &priority
	}
	if input.Status != "" {
		status := input.Status
		update.Status = &status
	}
	if input.TimeSpent != 0 {
		timeSpent := input.TimeSpent
		update.TimeSpent = &timeSpent
	}

	if err := task.Apply(update); err != nil {
		return nil, err
	}

	return task, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
