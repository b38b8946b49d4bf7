package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/service"
)

// LogHandler backs the logs browser.
type LogHandler struct {
	svc *service.LogService
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(svc *service.LogService) *LogHandler {
	return &LogHandler{svc: svc}
}

// List handles GET /api/logs.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseLogFilter(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	entries, err := h.svc.List(r.Context(), f)
	if err != nil {
		RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"data":   entries,
		"limit":  f.Limit,
		"offset": f.Offset,
	})
}

// Get handles GET /api/logs/{id}.
func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid log id"))
		return
	}
	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entry)
}

// Facets handles GET /api/logs/facets.
func (h *LogHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.svc.Facets(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, facets)
}

func parseLogFilter(r *http.Request) (domain.LogFilter, error) {
	q := r.URL.Query()
	f := domain.LogFilter{
		ServerID:  q.Get("server_id"),
		EventType: q.Get("event_type"),
		Category:  q.Get("category"),
		Type:      q.Get("type"),
		Player:    q.Get("player"),
	}
	var err error
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		return f, err
	}
	if f.Since, err = queryTime(r, "since"); err != nil {
		return f, err
	}
	if f.Until, err = queryTime(r, "until"); err != nil {
		return f, err
	}
	f.Normalize()
	return f, nil
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, domain.ErrValidation(name + " must be an RFC 3339 timestamp")
	}
	return &t, nil
}
