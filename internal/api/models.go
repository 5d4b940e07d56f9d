package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/domain"
)

// CreateTaskRequest is the JSON body accepted by task creation (single and
// bulk items alike).
type CreateTaskRequest struct {
	Title       string          `json:"title"              validate:"required,max=200"`
	Description string          `json:"description"        validate:"max=1000"`
	Priority    string          `json:"priority"           validate:"omitempty,oneof=none low medium high"`
	Status      string          `json:"status"             validate:"omitempty,oneof=todo in_progress done"`
	Completed   *bool           `json:"completed"`
	DueDate     *time.Time      `json:"due_date"`
	TimeSpent   int             `json:"time_spent"         validate:"gte=0"`
	CustomOrder *int            `json:"custom_order"`
	Recurrence  json.RawMessage `json:"recurrence_pattern"`
	TagIDs      []uuid.UUID     `json:"tag_ids"            validate:"max=10"`
}

// UpdateTaskRequest is the JSON body accepted by task updates. Absent
// fields leave the task untouched. ExpectedVersion, when present, turns the
// update into a compare-and-set against the optimistic version counter.
type UpdateTaskRequest struct {
	Title           *string         `json:"title"              validate:"omitempty,min=1,max=200"`
	Description     *string         `json:"description"        validate:"omitempty,max=1000"`
	Priority        *string         `json:"priority"           validate:"omitempty,oneof=none low medium high"`
	Status          *string         `json:"status"             validate:"omitempty,oneof=todo in_progress done"`
	Completed       *bool           `json:"completed"`
	DueDate         *time.Time      `json:"due_date"`
	ClearDueDate    bool            `json:"clear_due_date"`
	TimeSpent       *int            `json:"time_spent"         validate:"omitempty,gte=0"`
	CustomOrder     *int            `json:"custom_order"`
	Recurrence      json.RawMessage `json:"recurrence_pattern"`
	TagIDs          *[]uuid.UUID    `json:"tag_ids"            validate:"omitempty,max=10"`
	ExpectedVersion *int            `json:"expected_version"   validate:"omitempty,gte=1"`
}

// toDomain converts the request into the domain mutation set.
func (r *UpdateTaskRequest) toDomain() domain.TaskUpdate {
	update := domain.TaskUpdate{
		Title:        r.Title,
		Description:  r.Description,
		Completed:    r.Completed,
		DueDate:      r.DueDate,
		ClearDueDate: r.ClearDueDate,
		TimeSpent:    r.TimeSpent,
		CustomOrder:  r.CustomOrder,
		Recurrence:   r.Recurrence,
		TagIDs:       r.TagIDs,
	}
	if r.Priority != nil {
		priority := domain.Priority(*r.Priority)
		update.Priority = &priority
	}
	if r.Status != nil {
		status := domain.Status(*r.Status)
		update.Status = &status
	}
	return update
}

// BulkCreateTasksRequest carries up to 50 task specs.
type BulkCreateTasksRequest struct {
	Tasks []CreateTaskRequest `json:"tasks" validate:"required,dive"`
}

// BulkUpdateTaskItem pairs a task ID with its mutations.
type BulkUpdateTaskItem struct {
	ID uuid.UUID `json:"id" validate:"required"`
	UpdateTaskRequest
}

// BulkUpdateTasksRequest carries up to 50 per-task updates.
type BulkUpdateTasksRequest struct {
	Tasks []BulkUpdateTaskItem `json:"tasks" validate:"required,dive"`
}

// BulkDeleteTasksRequest carries up to 50 task IDs to delete.
type BulkDeleteTasksRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required"`
}

// ListTasksResponse is one page of tasks plus the total match count
// ignoring pagination.
type ListTasksResponse struct {
	Tasks  []*domain.TaskDetail `json:"tasks"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// BulkCreateTasksResponse lists the created tasks.
type BulkCreateTasksResponse struct {
	Tasks []*domain.Task `json:"tasks"`
}

// BulkUpdateTasksResponse lists the tasks that were found and updated;
// skipped IDs are not reported.
type BulkUpdateTasksResponse struct {
	Tasks []*domain.Task `json:"tasks"`
}

// CreateTagRequest is the JSON body accepted by tag creation.
type CreateTagRequest struct {
	Name  string `json:"name"  validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,len=7"`
}

// UpdateTagRequest is the JSON body accepted by tag updates.
type UpdateTagRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=50"`
	Color *string `json:"color" validate:"omitempty,len=7"`
}

// CreateSubtaskRequest is the JSON body accepted by subtask creation.
type CreateSubtaskRequest struct {
	Title      string `json:"title"       validate:"required,max=200"`
	OrderIndex int    `json:"order_index"`
}

// UpdateSubtaskRequest is the JSON body accepted by subtask updates.
type UpdateSubtaskRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=200"`
	Completed  *bool   `json:"completed"`
	OrderIndex *int    `json:"order_index"`
}

// RegisterRequest is the JSON body accepted by user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the JSON body accepted by login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a signed access token.
type AuthResponse struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"user_id"`
}
