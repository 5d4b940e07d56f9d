package api

import (
	"log/slog"
	"net/http"

	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/domain"
	"github.com/taskvault/taskvault-api/internal/service"
)

// TagHandler serves the tag endpoints.
type TagHandler struct {
	tagService service.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService service.TagService, log *slog.Logger) *TagHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TagHandler{
		tagService: tagService,
		logger:     log.With(slog.String("component", "tag_handler")),
	}
}

// CreateTag handles POST /tags.
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTagRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	tag, err := h.tagService.CreateTag(r.Context(), userID, req.Name, req.Color)
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusCreated, tag)
}

// ListTags handles GET /tags.
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tags, err := h.tagService.ListTags(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}

	shared.RespondWithJSON(w, http.StatusOK, tags)
}

// UpdateTag handles PATCH /tags/{tagID}.
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	tagID, ok := pathID(w, r, "tagID")
	if !ok {
		return
	}

	var req UpdateTagRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		shared.RespondWithError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	tag, err := h.tagService.UpdateTag(r.Context(), userID, tagID, domain.TagUpdate{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/{tagID}.
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	tagID, ok := pathID(w, r, "tagID")
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(r.Context(), userID, tagID); err != nil {
		respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, http.StatusNoContent, nil)
}
