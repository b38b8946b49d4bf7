package admin

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/handler"
	"github.com/odessarp/dashboard/internal/service"
)

// RoleAdminHandler handles role mappings, email overrides and cached user roles.
type RoleAdminHandler struct {
	svc *service.RoleService
}

// NewRoleAdminHandler creates a new RoleAdminHandler.
func NewRoleAdminHandler(svc *service.RoleService) *RoleAdminHandler {
	return &RoleAdminHandler{svc: svc}
}

func badBody(w http.ResponseWriter) {
	handler.RespondJSON(w, http.StatusBadRequest, map[string]string{
		"code": "VALIDATION_ERROR", "message": "invalid request body",
	})
}

// ListDiscordRoles handles GET /api/roles/discord.
func (h *RoleAdminHandler) ListDiscordRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.ListDiscordRoles(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if roles == nil {
		roles = []domain.DiscordRole{}
	}
	handler.RespondJSON(w, http.StatusOK, roles)
}

// SetDiscordRole handles PUT /api/roles/discord/{roleId}.
func (h *RoleAdminHandler) SetDiscordRole(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RoleName        string `json:"role_name"`
		PermissionLevel string `json:"permission_level"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		badBody(w)
		return
	}
	level, err := domain.ParsePermissionLevel(input.PermissionLevel)
	if err != nil {
		handler.RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	role, err := h.svc.SetDiscordRole(r.Context(), chi.URLParam(r, "roleId"), input.RoleName, level, handler.Actor(r))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, role)
}

// DeleteDiscordRole handles DELETE /api/roles/discord/{roleId}.
func (h *RoleAdminHandler) DeleteDiscordRole(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDiscordRole(r.Context(), chi.URLParam(r, "roleId"), handler.Actor(r)); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}

// ListChanges handles GET /api/roles/changes.
func (h *RoleAdminHandler) ListChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := h.svc.ListChanges(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if changes == nil {
		changes = []domain.RoleChange{}
	}
	handler.RespondJSON(w, http.StatusOK, changes)
}

// GuildRoles handles GET /api/discord/roles.
func (h *RoleAdminHandler) GuildRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.GuildRoles(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, roles)
}

// ── Email roles ───────────────────────────────────────────────

// ListEmailRoles handles GET /api/roles/email.
func (h *RoleAdminHandler) ListEmailRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.ListEmailRoles(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if roles == nil {
		roles = []domain.EmailRole{}
	}
	handler.RespondJSON(w, http.StatusOK, roles)
}

// SetEmailRole handles PUT /api/roles/email.
func (h *RoleAdminHandler) SetEmailRole(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email           string `json:"email"`
		PermissionLevel string `json:"permission_level"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		badBody(w)
		return
	}
	level, err := domain.ParsePermissionLevel(input.PermissionLevel)
	if err != nil {
		handler.RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	role, err := h.svc.SetEmailRole(r.Context(), input.Email, level, handler.Actor(r))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, role)
}

// DeleteEmailRole handles DELETE /api/roles/email/{email}.
func (h *RoleAdminHandler) DeleteEmailRole(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid email"))
		return
	}
	if err := h.svc.DeleteEmailRole(r.Context(), email, handler.Actor(r)); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}

// ── Cached user roles ─────────────────────────────────────────

// UserRoles handles GET /api/roles/users/{discordId}.
func (h *RoleAdminHandler) UserRoles(w http.ResponseWriter, r *http.Request) {
	ur, err := h.svc.UserRoles(r.Context(), chi.URLParam(r, "discordId"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, ur)
}

// SyncUser handles POST /api/roles/users/{discordId}/sync.
func (h *RoleAdminHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordId")
	roles, err := h.svc.SyncUser(r.Context(), discordID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]any{"discord_id": discordID, "roles": roles})
}
