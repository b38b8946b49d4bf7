package handler

import (
	"net/http"

	"github.com/odessarp/dashboard/internal/service"
)

// ServerStatusHandler handles GET /api/server/status.
func ServerStatusHandler(svc *service.ServerStatusService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Status(r.Context())
		if err != nil {
			RespondError(w, err)
			return
		}
		RespondJSON(w, http.StatusOK, st)
	}
}
