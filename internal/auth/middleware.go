package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/odessarp/dashboard/internal/domain"
)

type contextKey string

const (
	principalKey contextKey = "auth_principal"
	levelKey     contextKey = "auth_level"
)

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok && !p.IsZero()
}

// LevelFromContext returns the level resolved by RequirePermission.
func LevelFromContext(ctx context.Context) domain.PermissionLevel {
	l, ok := ctx.Value(levelKey).(domain.PermissionLevel)
	if !ok {
		return domain.LevelNone
	}
	return l
}

// LevelResolver is satisfied by *Resolver.
type LevelResolver interface {
	Resolve(ctx context.Context, p domain.Principal) domain.PermissionLevel
}

// Authenticate validates the bearer token and stores the principal in context.
func Authenticate(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.Principal())))
		})
	}
}

// RequirePermission rejects principals below level. It must run after Authenticate.
func RequirePermission(res LevelResolver, level domain.PermissionLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "no auth context")
				return
			}
			got := res.Resolve(r.Context(), p)
			if !got.AtLeast(level) {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "requires "+string(level)+" permission")
				return
			}
			ctx := context.WithValue(r.Context(), levelKey, got)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPIKey guards the game-server and bot-proxy endpoints with a shared secret
// sent in X-API-KEY. An empty expected key rejects every request.
func RequireAPIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ValidAPIKey(expected, r.Header.Get("X-API-KEY")) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidAPIKey compares keys in constant time.
func ValidAPIKey(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

func writeAuthError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"code":%q,"message":%q}`, code, msg)
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.ValidateToken(parts[1])
}
