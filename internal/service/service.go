// Package service holds the dashboard's use cases. Services take repositories
// and a transaction runner and return domain.AppError values for the handlers.
package service

import (
	"strconv"

	"github.com/odessarp/dashboard/internal/domain"
)

// wrapErr passes AppErrors through and turns anything else into an internal error.
func wrapErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsAppError(err); ok {
		return err
	}
	return domain.ErrInternal(msg, err)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
