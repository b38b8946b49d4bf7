package handler

import (
	"log/slog"
	"net/http"

	"github.com/odessarp/dashboard/internal/service"
)

// DiscordHandler serves the bot proxy used by the game server and the dashboard.
type DiscordHandler struct {
	guild  *service.GuildService
	sync   *service.RoleSyncService
	logger *slog.Logger
}

// NewDiscordHandler creates a new DiscordHandler.
func NewDiscordHandler(guild *service.GuildService, sync *service.RoleSyncService, logger *slog.Logger) *DiscordHandler {
	return &DiscordHandler{guild: guild, sync: sync, logger: logger}
}

type userIDRequest struct {
	UserID string `json:"userId"`
}

// ready writes 503 when the bot token is missing.
func (h *DiscordHandler) ready(w http.ResponseWriter) bool {
	if h.guild.Configured() {
		return true
	}
	RespondJSON(w, http.StatusServiceUnavailable, legacyError{Error: "Discord bot not configured"})
	return false
}

func (h *DiscordHandler) decodeUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req userIDRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondJSON(w, http.StatusBadRequest, legacyError{Error: "Invalid JSON body", Details: err.Error()})
		return "", false
	}
	if req.UserID == "" {
		RespondJSON(w, http.StatusBadRequest, legacyError{Error: "userId is required"})
		return "", false
	}
	return req.UserID, true
}

// GuildDetails handles GET /discord/guild-details.
func (h *DiscordHandler) GuildDetails(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	details, err := h.guild.Details(r.Context())
	if err != nil {
		h.logger.Error("guild details failed", "error", err)
		RespondLegacyError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, details)
}

// MemberRoles handles POST /discord/member-roles.
func (h *DiscordHandler) MemberRoles(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	userID, ok := h.decodeUserID(w, r)
	if !ok {
		return
	}
	roles, err := h.guild.MemberRoles(r.Context(), userID)
	if err != nil {
		h.logger.Error("member roles failed", "user_id", userID, "error", err)
		RespondLegacyError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"userId": userID, "roles": roles})
}

// SyncUserRoles handles POST /discord/sync-user-roles.
func (h *DiscordHandler) SyncUserRoles(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	userID, ok := h.decodeUserID(w, r)
	if !ok {
		return
	}
	roles, err := h.sync.SyncUserRoles(r.Context(), userID)
	if err != nil {
		h.logger.Error("role sync failed", "user_id", userID, "error", err)
		RespondLegacyError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"success": true, "userId": userID, "roles": roles})
}
