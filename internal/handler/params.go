package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/domain"
)

// UUIDParam parses the named chi URL parameter as a UUID.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid " + name)
	}
	return id, nil
}

// Int64Param parses the named chi URL parameter as a positive integer.
func Int64Param(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.ErrValidation("invalid " + name)
	}
	return n, nil
}

// Actor names the signed-in user for audit columns: email, then username, then Discord ID.
func Actor(r *http.Request) string {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return "system"
	}
	switch {
	case p.Email != "":
		return p.Email
	case p.Username != "":
		return p.Username
	default:
		return p.DiscordID
	}
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.ErrValidation("invalid " + name)
	}
	return n, nil
}
