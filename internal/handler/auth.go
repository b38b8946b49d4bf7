package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/service"
)

const (
	oauthStateCookie = "odessarp_oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// AuthHandler handles the Discord login flow and the profile endpoint.
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// Login handles GET /auth/discord/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	target, err := h.authSvc.LoginURL(state)
	if err != nil {
		RespondError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/discord",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, target, http.StatusFound)
}

// Callback handles GET /auth/discord/callback.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		RespondError(w, domain.ErrUnauthorized("discord login denied: "+errCode))
		return
	}

	c, err := r.Cookie(oauthStateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		h.logger.Warn("oauth state mismatch", "ip", ClientIP(r))
		RespondError(w, domain.ErrUnauthorized("invalid oauth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/auth/discord", MaxAge: -1, HttpOnly: true})

	result, err := h.authSvc.Callback(r.Context(), q.Get("code"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		RespondError(w, domain.ErrUnauthorized("no auth context"))
		return
	}
	prof, err := h.authSvc.Me(r.Context(), p)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, prof)
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
