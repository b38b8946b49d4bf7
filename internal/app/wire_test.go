package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("database offline")

// offlineDB fails every statement but answers pings.
type offlineDB struct{}

type errRow struct{}

func (errRow) Scan(...any) error { return errOffline }

func (offlineDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errOffline
}

func (offlineDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errOffline
}

func (offlineDB) QueryRow(context.Context, string, ...interface{}) pgx.Row { return errRow{} }

func (offlineDB) Begin(context.Context) (pgx.Tx, error) { return nil, errOffline }

func (offlineDB) Ping(context.Context) error { return nil }

const (
	fivemKey   = "fivem-key"
	discordKey = "discord-key"
)

func testRouter() (chi.Router, *auth.JWTManager) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	jwtMgr := auth.NewJWTManager("router-secret", time.Hour)
	return NewRouter(RouterDeps{
		DB:              offlineDB{},
		JWTMgr:          jwtMgr,
		Cache:           cache.New(nil, logger),
		Logger:          logger,
		FiveMAPIKey:     fivemKey,
		DiscordAPIKey:   discordKey,
		CORSOrigin:      "https://dashboard.odessarp.com",
		IngestRateLimit: 100,
		IngestBurst:     10,
	}), jwtMgr
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, jwtMgr *auth.JWTManager, p domain.Principal) string {
	t.Helper()
	token, err := jwtMgr.GenerateToken(p)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_Health(t *testing.T) {
	r, _ := testRouter()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_IngestRoute(t *testing.T) {
	r, _ := testRouter()

	t.Run("preflight is answered by the ingest handler", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodOptions, "/log", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("bad key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(`{"server_id":"main","event_type":"join"}`))
		req.Header.Set("X-API-KEY", "nope")
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(`{"server_id":"main","event_type":"join"}`))
		req.Header.Set("X-API-KEY", fivemKey)
		w := serve(r, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to insert log")
	})
}

func TestRouter_DiscordProxy(t *testing.T) {
	r, _ := testRouter()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/discord/guild-details", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/discord/guild-details", nil)
	req.Header.Set("X-API-KEY", discordKey)
	w = serve(r, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Discord bot not configured"}`, w.Body.String())
}

func TestRouter_APIPreflight(t *testing.T) {
	r, _ := testRouter()

	w := serve(r, httptest.NewRequest(http.MethodOptions, "/api/rules", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dashboard.odessarp.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_UnconfiguredProviders(t *testing.T) {
	r, _ := testRouter()

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, httptest.NewRequest(http.MethodGet, "/api/server/status", nil)).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, httptest.NewRequest(http.MethodGet, "/auth/discord/login", nil)).Code)
}

func TestRouter_Permissions(t *testing.T) {
	r, jwtMgr := testRouter()

	t.Run("no token", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("lookup failure denies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/roles/discord", nil)
		req.Header.Set("Authorization", bearer(t, jwtMgr, domain.Principal{Email: "player@example.com"}))
		w := serve(r, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin email passes the gate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/roles/discord", nil)
		req.Header.Set("Authorization", bearer(t, jwtMgr, domain.Principal{Email: "admin@odessarp.com"}))
		w := serve(r, req)
		// The gate opens; the offline store then fails the read.
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("me needs only a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", bearer(t, jwtMgr, domain.Principal{Email: "admin@odessarp.com", Username: "admin"}))
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"permission_level":"admin"`)
	})
}
