package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/logger"
	"github.com/taskvault/taskvault-api/internal/store"
)

// SubtaskService provides subtask operations. Ownership is always resolved
// through the parent task; a subtask under someone else's task behaves as
// missing.
type SubtaskService interface {
	// CreateSubtask creates a subtask under the owner's task. Fails with
	// ErrTaskNotFound when the parent is missing or foreign and with
	// ErrLimitExceeded at the per-task subtask ceiling.
	CreateSubtask(
		ctx context.Context,
		userID, taskID uuid.UUID,
		title string,
		orderIndex int,
	) (*domain.Subtask, error)

	// ListSubtasks returns the task's subtasks ordered by order_index.
	ListSubtasks(ctx context.Context, userID, taskID uuid.UUID) ([]domain.Subtask, error)

	// UpdateSubtask applies the mutations to the subtask.
	UpdateSubtask(
		ctx context.Context,
		userID, subtaskID uuid.UUID,
		update domain.SubtaskUpdate,
	) (*domain.Subtask, error)

	// DeleteSubtask deletes the subtask.
	DeleteSubtask(ctx context.Context, userID, subtaskID uuid.UUID) error
}

// subtaskServiceImpl implements the SubtaskService interface.
type subtaskServiceImpl struct {
	tasks    store.TaskStore
	subtasks store.SubtaskStore
	logger   *slog.Logger
	runTx    func(ctx context.Context, fn store.TxFn) error
}

// NewSubtaskService creates a new SubtaskService.
// It returns an error if any required dependency is nil.
func NewSubtaskService(
	db *sql.DB,
	tasks store.TaskStore,
	subtasks store.SubtaskStore,
	log *slog.Logger,
) (SubtaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", nil)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", nil)
	}
	if subtasks == nil {
		return nil, domain.NewValidationError("subtasks", "cannot be nil", nil)
	}
	if log == nil {
		log = slog.Default()
	}

	return &subtaskServiceImpl{
		tasks:    tasks,
		subtasks: subtasks,
		logger:   log.With(slog.String("component", "subtask_service")),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// CreateSubtask implements SubtaskService.CreateSubtask
func (s *subtaskServiceImpl) CreateSubtask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	title string,
	orderIndex int,
) (*domain.Subtask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var subtask *domain.Subtask
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txSubtasks := s.subtasks.WithTx(tx)

		// Resolves ownership of the parent before anything else.
		if _, err := txTasks.GetByID(ctx, userID, taskID); err != nil {
			return err
		}

		count, err := txSubtasks.CountForTask(ctx, taskID)
		if err != nil {
			return err
		}
		if err := store.CheckLimit("subtasks per task", count, 1, domain.MaxSubtasksPerTask); err != nil {
			return err
		}

		subtask, err = domain.NewSubtask(taskID, title, orderIndex)
		if err != nil {
			return err
		}

		return txSubtasks.Create(ctx, subtask)
	})
	if err != nil {
		return nil, err
	}

	log.Debug("created subtask",
		slog.String("subtask_id", subtask.ID.String()),
		slog.String("task_id", taskID.String()))
	return subtask, nil
}

// ListSubtasks implements SubtaskService.ListSubtasks
func (s *subtaskServiceImpl) ListSubtasks(
	ctx context.Context,
	userID, taskID uuid.UUID,
) ([]domain.Subtask, error) {
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		return nil, err
	}

	return s.subtasks.ListForTask(ctx, taskID)
}

// UpdateSubtask implements SubtaskService.UpdateSubtask
func (s *subtaskServiceImpl) UpdateSubtask(
	ctx context.Context,
	userID, subtaskID uuid.UUID,
	update domain.SubtaskUpdate,
) (*domain.Subtask, error) {
	var subtask *domain.Subtask
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txSubtasks := s.subtasks.WithTx(tx)

		var err error
		subtask, err = txSubtasks.GetByID(ctx, userID, subtaskID)
		if err != nil {
			return err
		}

		if err := subtask.Apply(update); err != nil {
			return err
		}

		return txSubtasks.Update(ctx, subtask)
	})
	if err != nil {
		return nil, err
	}

	return subtask, nil
}

// DeleteSubtask implements SubtaskService.DeleteSubtask
func (s *subtaskServiceImpl) DeleteSubtask(
	ctx context.Context,
	userID, subtaskID uuid.UUID,
) error {
	return s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.subtasks.WithTx(tx).Delete(ctx, userID, subtaskID)
	})
}
