package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/service"
)

// RuleHandler serves the rulebook.
type RuleHandler struct {
	svc *service.RuleService
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(svc *service.RuleService) *RuleHandler {
	return &RuleHandler{svc: svc}
}

// List handles GET /api/rules?category=.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.List(r.Context(), domain.RuleCategory(r.URL.Query().Get("category")))
	if err != nil {
		RespondError(w, err)
		return
	}
	if rules == nil {
		rules = []domain.Rule{}
	}
	RespondJSON(w, http.StatusOK, rules)
}

// Get handles GET /api/rules/{id}.
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := UUIDParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	rule, err := h.svc.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, rule)
}

// Changes handles GET /api/rules/{id}/changes.
func (h *RuleHandler) Changes(w http.ResponseWriter, r *http.Request) {
	id, err := UUIDParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	changes, err := h.svc.Changes(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if changes == nil {
		changes = []domain.RuleChange{}
	}
	RespondJSON(w, http.StatusOK, changes)
}

// Create handles POST /api/rules.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateRuleInput
	if err := DecodeJSON(r, &input); err != nil {
		invalidBody(w)
		return
	}
	rule, err := h.svc.Create(r.Context(), input, Actor(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, rule)
}

// Update handles PUT /api/rules/{id}.
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := UUIDParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var upd domain.RuleUpdate
	if err := DecodeJSON(r, &upd); err != nil {
		invalidBody(w)
		return
	}
	rule, err := h.svc.Update(r.Context(), id, upd, Actor(r))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /api/rules/{id}.
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Reorder handles POST /api/rules/reorder.
func (h *RuleHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Category domain.RuleCategory `json:"category"`
		IDs      []uuid.UUID         `json:"ids"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		invalidBody(w)
		return
	}
	if err := h.svc.Reorder(r.Context(), input.Category, input.IDs, Actor(r)); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
