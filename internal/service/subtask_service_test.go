package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

func TestCreateSubtask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	taskSvc := env.taskService()
	svc := env.subtaskService()
	userID := uuid.New()

	parent := seedTask(t, taskSvc, userID, "Parent")

	subtask, err := svc.CreateSubtask(ctx, userID, parent.ID, "step one", 0)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, subtask.TaskID)
	assert.False(t, subtask.Completed)

	// Missing parent.
	_, err = svc.CreateSubtask(ctx, userID, uuid.New(), "orphan", 0)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	// Foreign parent behaves as missing.
	_, err = svc.CreateSubtask(ctx, uuid.New(), parent.ID, "theft", 0)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestCreateSubtaskPerTaskCeiling(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	taskSvc := env.taskService()
	svc := env.subtaskService()
	userID := uuid.New()

	parent := seedTask(t, taskSvc, userID, "Parent")

	for i := 0; i < domain.MaxSubtasksPerTask; i++ {
		_, err := svc.CreateSubtask(ctx, userID, parent.ID, fmt.Sprintf("step %d", i), i)
		require.NoError(t, err)
	}

	_, err := svc.CreateSubtask(ctx, userID, parent.ID, "one too many", 50)
	require.ErrorIs(t, err, store.ErrLimitExceeded)

	// The ceiling is per task, not per owner.
	sibling := seedTask(t, taskSvc, userID, "Sibling")
	_, err = svc.CreateSubtask(ctx, userID, sibling.ID, "fine", 0)
	assert.NoError(t, err)
}

func TestListSubtasksOrdering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	taskSvc := env.taskService()
	svc := env.subtaskService()
	userID := uuid.New()

	parent := seedTask(t, taskSvc, userID, "Parent")

	_, err := svc.CreateSubtask(ctx, userID, parent.ID, "third", 2)
	require.NoError(t, err)
	_, err = svc.CreateSubtask(ctx, userID, parent.ID, "first", 0)
	require.NoError(t, err)
	_, err = svc.CreateSubtask(ctx, userID, parent.ID, "second", 1)
	require.NoError(t, err)

	subtasks, err := svc.ListSubtasks(ctx, userID, parent.ID)
	require.NoError(t, err)
	require.Len(t, subtasks, 3)
	assert.Equal(t, "first", subtasks[0].Title)
	assert.Equal(t, "second", subtasks[1].Title)
	assert.Equal(t, "third", subtasks[2].Title)

	// Foreign owner cannot list.
	_, err = svc.ListSubtasks(ctx, uuid.New(), parent.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestUpdateSubtask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	taskSvc := env.taskService()
	svc := env.subtaskService()
	userID := uuid.New()

	parent := seedTask(t, taskSvc, userID, "Parent")
	subtask, err := svc.CreateSubtask(ctx, userID, parent.ID, "step", 0)
	require.NoError(t, err)

	completed := true
	title := "step revised"
	updated, err := svc.UpdateSubtask(ctx, userID, subtask.ID, domain.SubtaskUpdate{
		Title:     &title,
		Completed: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, "step revised", updated.Title)
	assert.True(t, updated.Completed)

	// Completing a subtask does not complete the parent.
	detail, err := taskSvc.GetTask(ctx, userID, parent.ID)
	require.NoError(t, err)
	assert.False(t, detail.Completed)

	// Foreign owner sees not-found.
	_, err = svc.UpdateSubtask(ctx, uuid.New(), subtask.ID, domain.SubtaskUpdate{Title: &title})
	assert.ErrorIs(t, err, store.ErrSubtaskNotFound)
}

func TestDeleteSubtask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	taskSvc := env.taskService()
	svc := env.subtaskService()
	userID := uuid.New()

	parent := seedTask(t, taskSvc, userID, "Parent")
	subtask, err := svc.CreateSubtask(ctx, userID, parent.ID, "step", 0)
	require.NoError(t, err)

	// Foreign owner cannot delete.
	err = svc.DeleteSubtask(ctx, uuid.New(), subtask.ID)
	assert.ErrorIs(t, err, store.ErrSubtaskNotFound)

	require.NoError(t, svc.DeleteSubtask(ctx, userID, subtask.ID))

	err = svc.DeleteSubtask(ctx, userID, subtask.ID)
	assert.ErrorIs(t, err, store.ErrSubtaskNotFound)

	// Parent is untouched.
	_, err = taskSvc.GetTask(ctx, userID, parent.ID)
	assert.NoError(t, err)
}
