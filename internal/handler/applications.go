package handler

import (
	"net/http"

	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/service"
)

// ApplicationHandler serves the applicant-facing job pages.
type ApplicationHandler struct {
	svc *service.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(svc *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

// ListJobs handles GET /api/jobs.
func (h *ApplicationHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListJobs(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	if jobs == nil {
		jobs = []domain.JobType{}
	}
	RespondJSON(w, http.StatusOK, jobs)
}

// Submit handles POST /api/applications.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		RespondError(w, domain.ErrUnauthorized("no auth context"))
		return
	}
	var input domain.SubmitApplicationInput
	if err := DecodeJSON(r, &input); err != nil {
		invalidBody(w)
		return
	}
	app, err := h.svc.Submit(r.Context(), p, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, app)
}
