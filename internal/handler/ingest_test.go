package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/guard"
	"github.com/odessarp/dashboard/internal/repository/repotest"
	"github.com/odessarp/dashboard/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "fivem-secret"

type ingestFixture struct {
	logs    *repotest.MockLogRepository
	outbox  *repotest.MockOutboxRepository
	handler *IngestHandler
}

func newIngestFixture(limiter *guard.RateLimiter) *ingestFixture {
	logs := &repotest.MockLogRepository{}
	outbox := &repotest.MockOutboxRepository{}
	svc := service.NewIngestService(&repotest.FakeTx{}, logs, outbox, noopLogger())
	return &ingestFixture{
		logs:    logs,
		outbox:  outbox,
		handler: NewIngestHandler(svc, testAPIKey, limiter, "", noopLogger()),
	}
}

func postLog(h http.Handler, key, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, IngestPath, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if key != "" {
		r.Header.Set("x-api-key", key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestIngest_Success(t *testing.T) {
	f := newIngestFixture(nil)
	entry := &domain.LogEntry{ID: 1, ServerID: "main", EventType: "join", CreatedAt: time.Now().UTC(), Details: json.RawMessage(`{}`)}
	f.logs.On("Insert", domain.LogInput{ServerID: "main", EventType: "join"}).Return(entry, nil)
	f.outbox.On("Insert", mock.Anything).Return(nil)

	w := postLog(f.handler, testAPIKey, `{"server_id":"main","event_type":"join"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool            `json:"success"`
		Data    domain.LogEntry `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, int64(1), body.Data.ID)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIngest_Unauthorized(t *testing.T) {
	f := newIngestFixture(nil)

	for _, key := range []string{"", "wrong"} {
		// An invalid body must still yield 401, never 400.
		w := postLog(f.handler, key, `{"server_id":"main"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	}
	f.logs.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestIngest_MissingFields(t *testing.T) {
	f := newIngestFixture(nil)

	w := postLog(f.handler, testAPIKey, `{"server_id":"main"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, w.Body.String())
	f.logs.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestIngest_InvalidJSON(t *testing.T) {
	f := newIngestFixture(nil)

	w := postLog(f.handler, testAPIKey, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON body")
}

func TestIngest_StoreFailure(t *testing.T) {
	f := newIngestFixture(nil)
	f.logs.On("Insert", mock.Anything).Return(nil, errors.New("connection refused"))

	w := postLog(f.handler, testAPIKey, `{"server_id":"main","event_type":"join"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Failed to insert log", body["error"])
	assert.Contains(t, body["details"], "connection refused")
}

func TestIngest_RateLimited(t *testing.T) {
	f := newIngestFixture(guard.NewRateLimiter(0.001, 1))
	f.logs.On("Insert", mock.Anything).Return(&domain.LogEntry{ID: 1}, nil)
	f.outbox.On("Insert", mock.Anything).Return(nil)

	body := `{"server_id":"main","event_type":"join"}`
	assert.Equal(t, http.StatusOK, postLog(f.handler, testAPIKey, body).Code)
	w := postLog(f.handler, testAPIKey, body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestIngest_ForwardedForDoesNotRotateBucket(t *testing.T) {
	f := newIngestFixture(guard.NewRateLimiter(0.001, 1))
	f.logs.On("Insert", mock.Anything).Return(&domain.LogEntry{ID: 1}, nil)
	f.outbox.On("Insert", mock.Anything).Return(nil)
	h := RealIP(nil)(f.handler)

	send := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodPost, IngestPath, strings.NewReader(`{"server_id":"main","event_type":"join"}`))
		r.Header.Set("x-api-key", testAPIKey)
		r.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("2.2.2.2"))
}

func TestIngest_TrustedProxyBucketsPerClient(t *testing.T) {
	f := newIngestFixture(guard.NewRateLimiter(0.001, 1))
	f.logs.On("Insert", mock.Anything).Return(&domain.LogEntry{ID: 1}, nil)
	f.outbox.On("Insert", mock.Anything).Return(nil)
	// httptest requests arrive from 192.0.2.1.
	h := RealIP([]netip.Prefix{netip.MustParsePrefix("192.0.2.1/32")})(f.handler)

	send := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodPost, IngestPath, strings.NewReader(`{"server_id":"main","event_type":"join"}`))
		r.Header.Set("x-api-key", testAPIKey)
		r.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("1.1.1.1"))
	assert.Equal(t, http.StatusOK, send("2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1"))
}

func TestIngest_OtherMethods(t *testing.T) {
	f := newIngestFixture(nil)

	t.Run("GET returns usage", func(t *testing.T) {
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, IngestPath, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "server_id")
	})

	t.Run("OPTIONS returns preflight headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, IngestPath, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "X-API-KEY, Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("PUT is not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodPut, IngestPath, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
	})
}
