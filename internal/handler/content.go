package handler

import (
	"net/http"

	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/service"
)

// ContentHandler serves news posts and events.
type ContentHandler struct {
	svc *service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(svc *service.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// List handles GET /api/content?type=news|event.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), domain.ContentType(r.URL.Query().Get("type")))
	if err != nil {
		RespondError(w, err)
		return
	}
	if items == nil {
		items = []domain.ContentItem{}
	}
	RespondJSON(w, http.StatusOK, items)
}

// Get handles GET /api/content/{id}.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := UUIDParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, item)
}

// Create handles POST /api/content.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.ContentInput
	if err := DecodeJSON(r, &input); err != nil {
		invalidBody(w)
		return
	}
	item, err := h.svc.Create(r.Context(), input, Actor(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/content/{id}.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := UUIDParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var input domain.ContentInput
	if err := DecodeJSON(r, &input); err != nil {
		invalidBody(w)
		return
	}
	item, err := h.svc.Update(r.Context(), id, input, Actor(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/content/{id}.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := UUIDParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, Actor(r)); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
