package handler

import (
	"log/slog"
	"net/http"

	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/guard"
	"github.com/odessarp/dashboard/internal/service"
)

// IngestPath is where the game servers post their events.
const IngestPath = "/log"

// ingestUsage is the static body of GET /log.
var ingestUsage = map[string]any{
	"endpoint": IngestPath,
	"method":   "POST",
	"headers": map[string]string{
		"Content-Type": "application/json",
		"x-api-key":    "<FIVEM_API_KEY>",
	},
	"body": map[string]string{
		"server_id":   "string (required)",
		"event_type":  "string (required)",
		"category":    "string",
		"type":        "string",
		"player_id":   "string",
		"player_name": "string",
		"discord_id":  "string",
		"details":     "object",
	},
	"responses": map[string]string{
		"200": `{"success":true,"data":{...}}`,
		"400": `{"error":"Missing required fields"}`,
		"401": `{"error":"Unauthorized"}`,
		"429": `{"error":"Too many requests"}`,
		"500": `{"error":"Failed to insert log","details":"..."}`,
	},
}

// IngestHandler serves /log for the FiveM servers.
type IngestHandler struct {
	svc     *service.IngestService
	apiKey  string
	limiter *guard.RateLimiter
	origin  string
	logger  *slog.Logger
}

// NewIngestHandler creates a new IngestHandler. limiter may be nil.
func NewIngestHandler(svc *service.IngestService, apiKey string, limiter *guard.RateLimiter, origin string, logger *slog.Logger) *IngestHandler {
	if origin == "" {
		origin = "*"
	}
	return &IngestHandler{svc: svc, apiKey: apiKey, limiter: limiter, origin: origin, logger: logger}
}

func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", h.origin)

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Headers", "X-API-KEY, Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		RespondJSON(w, http.StatusOK, ingestUsage)
	case http.MethodPost:
		h.post(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		RespondJSON(w, http.StatusMethodNotAllowed, legacyError{Error: "Method not allowed"})
	}
}

func (h *IngestHandler) post(w http.ResponseWriter, r *http.Request) {
	// Key check precedes rate limiting and validation.
	if !auth.ValidAPIKey(h.apiKey, r.Header.Get("X-API-KEY")) {
		h.logger.Warn("log ingest rejected", "reason", "bad api key", "ip", ClientIP(r))
		RespondJSON(w, http.StatusUnauthorized, legacyError{Error: "Unauthorized"})
		return
	}

	if h.limiter != nil {
		if res := h.limiter.Check(r.Context(), h.apiKey+"|"+ClientIP(r)); !res.Allowed {
			w.Header().Set("Retry-After", "1")
			RespondJSON(w, http.StatusTooManyRequests, legacyError{Error: "Too many requests", Details: res.Reason})
			return
		}
	}

	var in domain.LogInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondJSON(w, http.StatusBadRequest, legacyError{Error: "Invalid JSON body", Details: err.Error()})
		return
	}

	entry, err := h.svc.Ingest(r.Context(), in)
	if err != nil {
		RespondLegacyError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"success": true, "data": entry})
}
