package handler

import (
	"encoding/json"
	"net/http"

	"github.com/odessarp/dashboard/internal/domain"
)

const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for status codes.
func RespondError(w http.ResponseWriter, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		RespondJSON(w, appErr.Status, map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    "INTERNAL_ERROR",
		"message": "internal server error",
	})
}

// legacyError is the {error, details} body the game server and bot callers expect.
type legacyError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondLegacyError maps err onto the {error, details} body. Internal causes are
// reported in details; the message of any AppError becomes the error text.
func RespondLegacyError(w http.ResponseWriter, err error) {
	appErr, ok := domain.AsAppError(err)
	if !ok {
		RespondJSON(w, http.StatusInternalServerError, legacyError{Error: "Internal server error", Details: err.Error()})
		return
	}
	body := legacyError{Error: appErr.Message}
	if appErr.Cause != nil {
		body.Details = appErr.Cause.Error()
	}
	RespondJSON(w, appErr.Status, body)
}

// DecodeJSON reads and decodes a JSON request body into dst. Bodies over 1 MiB are rejected.
func DecodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
}

func invalidBody(w http.ResponseWriter) {
	RespondJSON(w, http.StatusBadRequest, map[string]string{
		"code":    "VALIDATION_ERROR",
		"message": "invalid request body",
	})
}
