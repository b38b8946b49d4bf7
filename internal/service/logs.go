package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

const facetsCacheKey = "logs:facets"

// LogService backs the logs browser.
type LogService struct {
	db     repository.DBTX
	logs   repository.LogRepository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewLogService creates a new LogService.
func NewLogService(db repository.DBTX, logs repository.LogRepository, c *cache.Cache, logger *slog.Logger) *LogService {
	return &LogService{db: db, logs: logs, cache: c, logger: logger}
}

// List returns rows newest first. Paging values are clamped.
func (s *LogService) List(ctx context.Context, f domain.LogFilter) ([]domain.LogEntry, error) {
	f.Normalize()
	if f.Since != nil && f.Until != nil && f.Until.Before(*f.Since) {
		return nil, domain.ErrValidation("until must not be before since")
	}
	entries, err := s.logs.List(ctx, s.db, f)
	if err != nil {
		return nil, domain.ErrInternal("list logs", err)
	}
	return entries, nil
}

func (s *LogService) Get(ctx context.Context, id int64) (*domain.LogEntry, error) {
	e, err := s.logs.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find log", err)
	}
	if e == nil {
		return nil, domain.ErrNotFound("log", formatID(id))
	}
	return e, nil
}

// Facets returns the distinct filter values, cached for five minutes.
func (s *LogService) Facets(ctx context.Context) (*domain.LogFacets, error) {
	f, err := cache.Fetch(ctx, s.cache, facetsCacheKey, 5*time.Minute, func(ctx context.Context) (*domain.LogFacets, error) {
		return s.logs.Facets(ctx, s.db)
	})
	if err != nil {
		return nil, domain.ErrInternal("log facets", err)
	}
	return f, nil
}
