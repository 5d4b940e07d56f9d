package domain

import (
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Priority is the urgency level of a task.
type Priority string

// Known priority values, lowest to highest.
const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status is the workflow state of a task.
type Status string

// Known status values.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Field length limits for tasks.
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 1000
)

// Task represents one user-owned work item. The owner is fixed at creation
// and never changes. Version starts at 1 and increases by exactly 1 on every
// successful mutating update.
//
// Status and Completed are kept consistent at all times: Completed is true
// exactly when Status is "done". Updates may specify either field and the
// other follows; specifying both inconsistently fails validation.
type Task struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    Priority        `json:"priority"`
	Status      Status          `json:"status"`
	Completed   bool            `json:"completed"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	TimeSpent   int             `json:"time_spent"`
	CustomOrder *int            `json:"custom_order,omitempty"`
	Recurrence  json.RawMessage `json:"recurrence_pattern,omitempty"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TaskDetail is the aggregate returned by read operations: the task plus its
// tags and subtasks. Both slices are always populated (possibly empty, never
// nil), so callers never probe for missing relationships.
type TaskDetail struct {
	Task
	Tags     []Tag     `json:"tags"`
	Subtasks []Subtask `json:"subtasks"`
}

// NewTask creates a new Task owned by userID with the given title and
// default attributes (no priority, status "todo", version 1).
// Returns an error if validation fails.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Priority:  PriorityNone,
		Status:    StatusTodo,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}

	if t.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}

	if titleLen := utf8.RuneCountInString(t.Title); titleLen == 0 {
		return NewValidationError("title", "cannot be empty", nil)
	} else if titleLen > MaxTaskTitleLength {
		return NewValidationError("title", "exceeds 200 characters", nil)
	}

	if utf8.RuneCountInString(t.Description) > MaxTaskDescriptionLength {
		return NewValidationError("description", "exceeds 1000 characters", nil)
	}

	if !t.Priority.Valid() {
		return NewValidationError("priority", "must be one of none, low, medium, high", ErrInvalidPriority)
	}

	if !t.Status.Valid() {
		return NewValidationError("status", "must be one of todo, in_progress, done", ErrInvalidStatus)
	}

	if t.Completed != (t.Status == StatusDone) {
		return NewValidationError(
			"completed",
			"must be true exactly when status is done",
			ErrStatusCompletedMismatch,
		)
	}

	if t.TimeSpent < 0 {
		return NewValidationError("time_spent", "cannot be negative", nil)
	}

	if t.Version < 1 {
		return NewValidationError("version", "must be at least 1", nil)
	}

	return nil
}

// TaskUpdate carries the field mutations of an update request. Nil pointers
// leave the corresponding field untouched. TagIDs, when non-nil, replaces the
// task's tag set wholesale (an empty slice detaches every tag).
type TaskUpdate struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
	TimeSpent    *int
	CustomOrder  *int
	Recurrence   json.RawMessage
	TagIDs       *[]uuid.UUID
}

// Apply applies the update to the task and refreshes UpdatedAt. The status
// and completed fields are synchronized: whichever one the update specifies
// drives the other, and specifying both inconsistently is a validation
// error. The version counter is not touched here; the store increments it
// when the update is persisted.
//
// On validation failure the task is left unchanged.
func (t *Task) Apply(u TaskUpdate) error {
	next := *t

	switch {
	case u.Status != nil && u.Completed != nil:
		if (*u.Status == StatusDone) != *u.Completed {
			return NewValidationError(
				"completed",
				"does not match the requested status",
				ErrStatusCompletedMismatch,
			)
		}
		next.Status = *u.Status
		next.Completed = *u.Completed
	case u.Status != nil:
		next.Status = *u.Status
		next.Completed = *u.Status == StatusDone
	case u.Completed != nil:
		next.Completed = *u.Completed
		if *u.Completed {
			next.Status = StatusDone
		} else if next.Status == StatusDone {
			next.Status = StatusTodo
		}
	}

	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.Description != nil {
		next.Description = *u.Description
	}
	if u.Priority != nil {
		next.Priority = *u.Priority
	}
	if u.ClearDueDate {
		next.DueDate = nil
	} else if u.DueDate != nil {
		due := *u.DueDate
		next.DueDate = &due
	}
	if u.TimeSpent != nil {
		next.TimeSpent = *u.TimeSpent
	}
	if u.CustomOrder != nil {
		order := *u.CustomOrder
		next.CustomOrder = &order
	}
	if u.Recurrence != nil {
		next.Recurrence = u.Recurrence
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*t = next
	return nil
}
