package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/store"
)

// memDB is the shared in-memory backing for the fake stores. It mimics the
// schema's cascades: deleting a task drops its subtasks and tag
// associations, deleting a tag drops its associations.
type memDB struct {
	tasks     map[uuid.UUID]*domain.Task
	taskOrder []uuid.UUID
	tags      map[uuid.UUID]*domain.Tag
	taskTags  map[uuid.UUID][]uuid.UUID
	subtasks  map[uuid.UUID]*domain.Subtask
	subOrder  []uuid.UUID
}

func newMemDB() *memDB {
	return &memDB{
		tasks:    make(map[uuid.UUID]*domain.Task),
		tags:     make(map[uuid.UUID]*domain.Tag),
		taskTags: make(map[uuid.UUID][]uuid.UUID),
		subtasks: make(map[uuid.UUID]*domain.Subtask),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTx runs the transaction function without a real transaction; the fake
// stores ignore their tx argument.
func stubTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

type fakeTaskStore struct {
	db *memDB
}

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	copied := *task
	f.db.tasks[task.ID] = &copied
	f.db.taskOrder = append(f.db.taskOrder, task.ID)
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, ok := f.db.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) GetForUpdate(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return f.GetByID(ctx, userID, taskID)
}

func (f *fakeTaskStore) List(
	_ context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	opts store.ListOptions,
) ([]*domain.Task, error) {
	matched := f.match(userID, filter)

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = store.SortByCreatedAt
	}
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch sortBy {
		case store.SortByTitle:
			less = matched[i].Title < matched[j].Title
		case store.SortByUpdatedAt:
			less = matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if opts.Ascending {
			return less
		}
		return !less
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return []*domain.Task{}, nil
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (f *fakeTaskStore) Count(_ context.Context, userID uuid.UUID, filter store.TaskFilter) (int, error) {
	return len(f.match(userID, filter)), nil
}

func (f *fakeTaskStore) CountForUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, task := range f.db.tasks {
		if task.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	stored, ok := f.db.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Version = stored.Version + 1
	task.UpdatedAt = time.Now().UTC()
	copied := *task
	f.db.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, userID, taskID uuid.UUID) error {
	task, ok := f.db.tasks[taskID]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(f.db.tasks, taskID)
	delete(f.db.taskTags, taskID)
	for id, subtask := range f.db.subtasks {
		if subtask.TaskID == taskID {
			delete(f.db.subtasks, id)
		}
	}
	return nil
}

func (f *fakeTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return f }

func (f *fakeTaskStore) match(userID uuid.UUID, filter store.TaskFilter) []*domain.Task {
	var matched []*domain.Task
	for _, id := range f.db.taskOrder {
		task, ok := f.db.tasks[id]
		if !ok || task.UserID != userID {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, task.Priority) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, task.Status) {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.DueAfter != nil && (task.DueDate == nil || task.DueDate.Before(*filter.DueAfter)) {
			continue
		}
		if filter.DueBefore != nil && (task.DueDate == nil || task.DueDate.After(*filter.DueBefore)) {
			continue
		}
		if len(filter.TagIDs) > 0 && !f.hasAnyTag(task.ID, filter.TagIDs) {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(task.Title), needle) &&
				!strings.Contains(strings.ToLower(task.Description), needle) {
				continue
			}
		}
		copied := *task
		matched = append(matched, &copied)
	}
	return matched
}

func (f *fakeTaskStore) hasAnyTag(taskID uuid.UUID, tagIDs []uuid.UUID) bool {
	attached := f.db.taskTags[taskID]
	for _, want := range tagIDs {
		for _, have := range attached {
			if want == have {
				return true
			}
		}
	}
	return false
}

func containsPriority(values []domain.Priority, p domain.Priority) bool {
	for _, v := range values {
		if v == p {
			return true
		}
	}
	return false
}

func containsStatus(values []domain.Status, s domain.Status) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

type fakeTagStore struct {
	db *memDB
}

func (f *fakeTagStore) Create(_ context.Context, tag *domain.Tag) error {
	for _, existing := range f.db.tags {
		if existing.UserID == tag.UserID && existing.Name == tag.Name {
			return store.ErrTagNameExists
		}
	}
	copied := *tag
	f.db.tags[tag.ID] = &copied
	return nil
}

func (f *fakeTagStore) GetByID(_ context.Context, userID, tagID uuid.UUID) (*domain.Tag, error) {
	tag, ok := f.db.tags[tagID]
	if !ok || tag.UserID != userID {
		return nil, store.ErrTagNotFound
	}
	copied := *tag
	return &copied, nil
}

func (f *fakeTagStore) List(_ context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0)
	for _, tag := range f.db.tags {
		if tag.UserID == userID {
			tags = append(tags, *tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (f *fakeTagStore) CountForUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, tag := range f.db.tags {
		if tag.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTagStore) CountOwned(_ context.Context, userID uuid.UUID, tagIDs []uuid.UUID) (int, error) {
	count := 0
	for _, id := range tagIDs {
		if tag, ok := f.db.tags[id]; ok && tag.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTagStore) Update(_ context.Context, tag *domain.Tag) error {
	stored, ok := f.db.tags[tag.ID]
	if !ok {
		return store.ErrTagNotFound
	}
	for _, existing := range f.db.tags {
		if existing.ID != tag.ID && existing.UserID == stored.UserID && existing.Name == tag.Name {
			return store.ErrTagNameExists
		}
	}
	copied := *tag
	f.db.tags[tag.ID] = &copied
	return nil
}

func (f *fakeTagStore) Delete(_ context.Context, userID, tagID uuid.UUID) error {
	tag, ok := f.db.tags[tagID]
	if !ok || tag.UserID != userID {
		return store.ErrTagNotFound
	}
	delete(f.db.tags, tagID)
	for taskID, attached := range f.db.taskTags {
		kept := attached[:0]
		for _, id := range attached {
			if id != tagID {
				kept = append(kept, id)
			}
		}
		f.db.taskTags[taskID] = kept
	}
	return nil
}

func (f *fakeTagStore) ListForTask(_ context.Context, taskID uuid.UUID) ([]domain.Tag, error) {
	tags := make([]domain.Tag, 0)
	for _, id := range f.db.taskTags[taskID] {
		if tag, ok := f.db.tags[id]; ok {
			tags = append(tags, *tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (f *fakeTagStore) ListForTasks(
	ctx context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]domain.Tag, error) {
	result := make(map[uuid.UUID][]domain.Tag)
	for _, taskID := range taskIDs {
		tags, _ := f.ListForTask(ctx, taskID)
		if len(tags) > 0 {
			result[taskID] = tags
		}
	}
	return result, nil
}

func (f *fakeTagStore) ReplaceForTask(_ context.Context, taskID uuid.UUID, tagIDs []uuid.UUID) error {
	f.db.taskTags[taskID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

func (f *fakeTagStore) WithTx(_ *sql.Tx) store.TagStore { return f }

type fakeSubtaskStore struct {
	db *memDB
}

func (f *fakeSubtaskStore) Create(_ context.Context, subtask *domain.Subtask) error {
	copied := *subtask
	f.db.subtasks[subtask.ID] = &copied
	f.db.subOrder = append(f.db.subOrder, subtask.ID)
	return nil
}

func (f *fakeSubtaskStore) GetByID(_ context.Context, userID, subtaskID uuid.UUID) (*domain.Subtask, error) {
	subtask, ok := f.db.subtasks[subtaskID]
	if !ok {
		return nil, store.ErrSubtaskNotFound
	}
	parent, ok := f.db.tasks[subtask.TaskID]
	if !ok || parent.UserID != userID {
		return nil, store.ErrSubtaskNotFound
	}
	copied := *subtask
	return &copied, nil
}

func (f *fakeSubtaskStore) ListForTask(_ context.Context, taskID uuid.UUID) ([]domain.Subtask, error) {
	subtasks := make([]domain.Subtask, 0)
	for _, id := range f.db.subOrder {
		if subtask, ok := f.db.subtasks[id]; ok && subtask.TaskID == taskID {
			subtasks = append(subtasks, *subtask)
		}
	}
	sort.SliceStable(subtasks, func(i, j int) bool {
		return subtasks[i].OrderIndex < subtasks[j].OrderIndex
	})
	return subtasks, nil
}

func (f *fakeSubtaskStore) ListForTasks(
	ctx context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]domain.Subtask, error) {
	result := make(map[uuid.UUID][]domain.Subtask)
	for _, taskID := range taskIDs {
		subtasks, _ := f.ListForTask(ctx, taskID)
		if len(subtasks) > 0 {
			result[taskID] = subtasks
		}
	}
	return result, nil
}

func (f *fakeSubtaskStore) CountForTask(_ context.Context, taskID uuid.UUID) (int, error) {
	count := 0
	for _, subtask := range f.db.subtasks {
		if subtask.TaskID == taskID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubtaskStore) Update(_ context.Context, subtask *domain.Subtask) error {
	if _, ok := f.db.subtasks[subtask.ID]; !ok {
		return store.ErrSubtaskNotFound
	}
	copied := *subtask
	f.db.subtasks[subtask.ID] = &copied
	return nil
}

func (f *fakeSubtaskStore) CompleteAllForTask(_ context.Context, taskID uuid.UUID) error {
	for _, subtask := range f.db.subtasks {
		if subtask.TaskID == taskID {
			subtask.Completed = true
		}
	}
	return nil
}

func (f *fakeSubtaskStore) Delete(ctx context.Context, userID, subtaskID uuid.UUID) error {
	if _, err := f.GetByID(ctx, userID, subtaskID); err != nil {
		return err
	}
	delete(f.db.subtasks, subtaskID)
	return nil
}

func (f *fakeSubtaskStore) WithTx(_ *sql.Tx) store.SubtaskStore { return f }

// testEnv bundles a service wired against the in-memory fakes.
type testEnv struct {
	db       *memDB
	tasks    *fakeTaskStore
	tags     *fakeTagStore
	subtasks *fakeSubtaskStore
}

func newTestEnv() *testEnv {
	db := newMemDB()
	return &testEnv{
		db:       db,
		tasks:    &fakeTaskStore{db: db},
		tags:     &fakeTagStore{db: db},
		subtasks: &fakeSubtaskStore{db: db},
	}
}

func (e *testEnv) taskService() *taskServiceImpl {
	return &taskServiceImpl{
		tasks:    e.tasks,
		tags:     e.tags,
		subtasks: e.subtasks,
		logger:   discardLogger(),
		runTx:    stubTx,
	}
}

func (e *testEnv) tagService() *tagServiceImpl {
	return &tagServiceImpl{
		tags:   e.tags,
		logger: discardLogger(),
		runTx:  stubTx,
	}
}

func (e *testEnv) subtaskService() *subtaskServiceImpl {
	return &subtaskServiceImpl{
		tasks:    e.tasks,
		subtasks: e.subtasks,
		logger:   discardLogger(),
		runTx:    stubTx,
	}
}
