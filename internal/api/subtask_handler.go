package api

import (
	"log/slog"
	"net/http"

	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/service"
)

// SubtaskHandler serves the subtask endpoints. Creation and listing are
// nested under the parent task; update and delete address subtasks directly.
type SubtaskHandler struct {
	subtaskService service.SubtaskService
	logger         *slog.Logger
}

// NewSubtaskHandler creates a new SubtaskHandler.
func NewSubtaskHandler(subtaskService service.SubtaskService, log *slog.Logger) *SubtaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SubtaskHandler{
		subtaskService: subtaskService,
		logger:         log.With(slog.String("component", "subtask_handler")),
	}
}

// CreateSubtask handles POST /tasks/{taskID}/subtasks.
func (h *SubtaskHandler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}

	var req CreateSubtaskRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	subtask, err := h.subtaskService.CreateSubtask(r.Context(), userID, taskID, req.Title, req.OrderIndex)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, subtask)
}

// ListSubtasks handles GET /tasks/{taskID}/subtasks.
func (h *SubtaskHandler) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}

	subtasks, err := h.subtaskService.ListSubtasks(r.Context(), userID, taskID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if subtasks == nil {
		subtasks = []domain.Subtask{}
	}

	shared.RespondWithJSON(w, http.StatusOK, subtasks)
}

// UpdateSubtask handles PATCH /subtasks/{subtaskID}.
func (h *SubtaskHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	subtaskID, ok := pathID(w, r, "subtaskID")
	if !ok {
		return
	}

	var req UpdateSubtaskRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	subtask, err := h.subtaskService.UpdateSubtask(r.Context(), userID, subtaskID, domain.SubtaskUpdate{
		Title:      req.Title,
		Completed:  req.Completed,
		OrderIndex: req.OrderIndex,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, subtask)
}

// DeleteSubtask handles DELETE /subtasks/{subtaskID}.
func (h *SubtaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	subtaskID, ok := pathID(w, r, "subtaskID")
	if !ok {
		return
	}

	if err := h.subtaskService.DeleteSubtask(r.Context(), userID, subtaskID); err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusNoContent, nil)
}
