package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Subtask is an ordered checklist item owned by exactly one task. Subtasks
// are created, updated and deleted independently of their parent, except
// that completing the parent task completes every subtask as a side effect
// and deleting the parent deletes them all.
type Subtask struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"task_id"`
	Title      string    `json:"title"`
	Completed  bool      `json:"completed"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSubtask creates a new Subtask under the given parent task.
// Returns an error if validation fails.
func NewSubtask(taskID uuid.UUID, title string, orderIndex int) (*Subtask, error) {
	now := time.Now().UTC()
	subtask := &Subtask{
		ID:         uuid.New(),
		TaskID:     taskID,
		Title:      title,
		OrderIndex: orderIndex,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := subtask.Validate(); err != nil {
		return nil, err
	}

	return subtask, nil
}

// Validate checks if the Subtask has valid data.
func (s *Subtask) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}

	if s.TaskID == uuid.Nil {
		return NewValidationError("task_id", "cannot be empty", ErrInvalidID)
	}

	if titleLen := utf8.RuneCountInString(s.Title); titleLen == 0 {
		return NewValidationError("title", "cannot be empty", nil)
	} else if titleLen > MaxTaskTitleLength {
		return NewValidationError("title", "exceeds 200 characters", nil)
	}

	return nil
}

// SubtaskUpdate carries the field mutations of a subtask update request.
// Nil pointers leave the corresponding field untouched.
type SubtaskUpdate struct {
	Title      *string
	Completed  *bool
	OrderIndex *int
}

// Apply applies the update to the subtask and refreshes UpdatedAt.
// On validation failure the subtask is left unchanged.
func (s *Subtask) Apply(u SubtaskUpdate) error {
	next := *s

	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.Completed != nil {
		next.Completed = *u.Completed
	}
	if u.OrderIndex != nil {
		next.OrderIndex = *u.OrderIndex
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*s = next
	return nil
}
