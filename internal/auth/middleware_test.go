package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/odessarp/dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedResolver domain.PermissionLevel

func (f fixedResolver) Resolve(context.Context, domain.Principal) domain.PermissionLevel {
	return domain.PermissionLevel(f)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	h := Authenticate(newTestJWTManager())(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestAuthenticate_StoresPrincipal(t *testing.T) {
	mgr := newTestJWTManager()
	want := domain.Principal{DiscordID: "42", Email: "a@b.co", Username: "a"}
	token, err := mgr.GenerateToken(want)
	require.NoError(t, err)

	var got domain.Principal
	h := Authenticate(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, want, got)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	mgr := NewJWTManager("secret", time.Millisecond)
	token, err := mgr.GenerateToken(domain.Principal{DiscordID: "1"})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Authenticate(mgr)(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.Principal
		level     domain.PermissionLevel
		required  domain.PermissionLevel
		want      int
	}{
		{"no principal", nil, domain.LevelAdmin, domain.LevelViewer, http.StatusUnauthorized},
		{"below level", &domain.Principal{DiscordID: "1"}, domain.LevelViewer, domain.LevelContent, http.StatusForbidden},
		{"exact level", &domain.Principal{DiscordID: "1"}, domain.LevelContent, domain.LevelContent, http.StatusOK},
		{"above level", &domain.Principal{DiscordID: "1"}, domain.LevelAdmin, domain.LevelStaff, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequirePermission(fixedResolver(tt.level), tt.required)(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequirePermission_StoresLevel(t *testing.T) {
	var got domain.PermissionLevel
	h := RequirePermission(fixedResolver(domain.LevelStaff), domain.LevelViewer)(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { got = LevelFromContext(r.Context()) }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), domain.Principal{DiscordID: "1"}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, domain.LevelStaff, got)
}

func TestRequireAPIKey(t *testing.T) {
	h := RequireAPIKey("k3y")(okHandler())

	for _, key := range []string{"", "wrong", "k3y "} {
		req := httptest.NewRequest(http.MethodPost, "/log", nil)
		if key != "" {
			req.Header.Set("X-API-KEY", key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/log", nil)
	req.Header.Set("x-api-key", "k3y")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidAPIKey_EmptyExpectedRejects(t *testing.T) {
	assert.False(t, ValidAPIKey("", ""))
	assert.False(t, ValidAPIKey("", "anything"))
}
