package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/platform/logger"
	"github.com/taskvault/taskvault-api/internal/service"
	"github.com/taskvault/taskvault-api/internal/store"
)

// defaultPageSize bounds list responses when the caller does not pass an
// explicit limit.
const defaultPageSize = 50

// TaskHandler serves the task endpoints.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      log.With(slog.String("component", "task_handler")),
	}
}

// respondError translates an engine error into the standard error response,
// logging internal failures.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := MapError(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	shared.RespondWithError(w, status, code, message)
}

// requireUserID extracts the authenticated user or writes a 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromRequest(r)
	if !ok {
		shared.RespondWithError(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
	}
	return userID, ok
}

// pathID parses a UUID path parameter or writes a 400.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	detail, err := h.taskService.CreateTask(r.Context(), userID, createInputFromRequest(req))
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, detail)
}

// GetTask handles GET /tasks/{taskID}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}

	detail, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, detail)
}

// ListTasks handles GET /tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter, opts, err := parseListQuery(r)
	if err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	page, err := h.taskService.ListTasks(r.Context(), userID, filter, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, ListTasksResponse{
		Tasks:  page.Tasks,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// UpdateTask handles PATCH /tasks/{taskID}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	detail, err := h.taskService.UpdateTask(
		r.Context(), userID, taskID, req.toDomain(), req.ExpectedVersion)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, detail)
}

// DeleteTask handles DELETE /tasks/{taskID}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusNoContent, nil)
}

// BulkCreateTasks handles POST /tasks/bulk.
func (h *TaskHandler) BulkCreateTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req BulkCreateTasksRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	inputs := make([]service.CreateTaskInput, len(req.Tasks))
	for i, taskReq := range req.Tasks {
		inputs[i] = createInputFromRequest(taskReq)
	}

	created, err := h.taskService.BulkCreateTasks(r.Context(), userID, inputs)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, BulkCreateTasksResponse{Tasks: created})
}

// BulkUpdateTasks handles PATCH /tasks/bulk.
func (h *TaskHandler) BulkUpdateTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req BulkUpdateTasksRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	items := make([]service.BulkUpdateItem, len(req.Tasks))
	for i, item := range req.Tasks {
		items[i] = service.BulkUpdateItem{ID: item.ID, Update: item.toDomain()}
	}

	updated, err := h.taskService.BulkUpdateTasks(r.Context(), userID, items)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, BulkUpdateTasksResponse{Tasks: updated})
}

// BulkDeleteTasks handles DELETE /tasks/bulk.
func (h *TaskHandler) BulkDeleteTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req BulkDeleteTasksRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := h.taskService.BulkDeleteTasks(r.Context(), userID, req.IDs); err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusNoContent, nil)
}

func createInputFromRequest(req CreateTaskRequest) service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		Status:      domain.Status(req.Status),
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		TimeSpent:   req.TimeSpent,
		CustomOrder: req.CustomOrder,
		Recurrence:  req.Recurrence,
		TagIDs:      req.TagIDs,
	}
}

// parseListQuery translates list query parameters into a filter and list
// options. Multi-value parameters accept comma-separated values.
func parseListQuery(r *http.Request) (store.TaskFilter, store.ListOptions, error) {
	var filter store.TaskFilter
	opts := store.ListOptions{Limit: defaultPageSize}
	q := r.URL.Query()

	for _, raw := range splitMulti(q.Get("priority")) {
		priority := domain.Priority(raw)
		if !priority.Valid() {
			return filter, opts, domain.NewValidationError("priority", "unknown value "+raw, domain.ErrInvalidPriority)
		}
		filter.Priorities = append(filter.Priorities, priority)
	}

	for _, raw := range splitMulti(q.Get("status")) {
		status := domain.Status(raw)
		if !status.Valid() {
			return filter, opts, domain.NewValidationError("status", "unknown value "+raw, domain.ErrInvalidStatus)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, opts, domain.NewValidationError("completed", "must be true or false", nil)
		}
		filter.Completed = &completed
	}

	if raw := q.Get("due_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, opts, domain.NewValidationError("due_after", "must be an RFC 3339 timestamp", nil)
		}
		filter.DueAfter = &t
	}

	if raw := q.Get("due_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, opts, domain.NewValidationError("due_before", "must be an RFC 3339 timestamp", nil)
		}
		filter.DueBefore = &t
	}

	for _, raw := range splitMulti(q.Get("tags")) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, opts, domain.NewValidationError("tags", "invalid tag ID "+raw, domain.ErrInvalidID)
		}
		filter.TagIDs = append(filter.TagIDs, id)
	}

	filter.Search = q.Get("search")

	opts.SortBy = q.Get("sort_by")
	opts.Ascending = q.Get("order") == "asc"

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filter, opts, domain.NewValidationError("limit", "must be a positive integer", nil)
		}
		opts.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, opts, domain.NewValidationError("offset", "must be a non-negative integer", nil)
		}
		opts.Offset = offset
	}

	return filter, opts, nil
}

func splitMulti(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
