package admin

import (
	"net/http"
	"strconv"

	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/handler"
	"github.com/odessarp/dashboard/internal/service"
)

// ApplicationAdminHandler handles staff review of job applications.
type ApplicationAdminHandler struct {
	svc *service.ApplicationService
}

// NewApplicationAdminHandler creates a new ApplicationAdminHandler.
func NewApplicationAdminHandler(svc *service.ApplicationService) *ApplicationAdminHandler {
	return &ApplicationAdminHandler{svc: svc}
}

// List handles GET /api/applications?status&job_type_id.
func (h *ApplicationAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ApplicationFilter{Status: domain.ApplicationStatus(q.Get("status"))}
	if v := q.Get("job_type_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			handler.RespondError(w, domain.ErrValidation("invalid job_type_id"))
			return
		}
		f.JobTypeID = id
	}

	apps, err := h.svc.List(r.Context(), f)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if apps == nil {
		apps = []domain.JobApplication{}
	}
	handler.RespondJSON(w, http.StatusOK, apps)
}

// Get handles GET /api/applications/{id}.
func (h *ApplicationAdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	app, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, app)
}

// SetStatus handles PATCH /api/applications/{id}/status.
func (h *ApplicationAdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.UUIDParam(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input struct {
		Status domain.ApplicationStatus `json:"status"`
		Notes  string                   `json:"notes"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		badBody(w)
		return
	}

	app, err := h.svc.SetStatus(r.Context(), id, input.Status, input.Notes, handler.Actor(r))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, app)
}
