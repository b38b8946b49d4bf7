package service

import (
	"context"
	"time"

	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/provider"
)

const serverStatusCacheKey = "server:status"

// StatusSource queries the game server.
type StatusSource interface {
	Status(ctx context.Context) provider.ServerStatus
}

// ServerStatusService reports whether the FiveM server is up.
type ServerStatusService struct {
	source StatusSource
	cache  *cache.Cache
}

// NewServerStatusService creates a new ServerStatusService. source may be nil.
func NewServerStatusService(source StatusSource, c *cache.Cache) *ServerStatusService {
	return &ServerStatusService{source: source, cache: c}
}

// Status returns the server snapshot, cached for 30 seconds.
func (s *ServerStatusService) Status(ctx context.Context) (provider.ServerStatus, error) {
	if s.source == nil {
		return provider.ServerStatus{}, domain.ErrUnavailable("game server address is not configured")
	}
	return cache.Fetch(ctx, s.cache, serverStatusCacheKey, 30*time.Second, func(ctx context.Context) (provider.ServerStatus, error) {
		return s.source.Status(ctx), nil
	})
}
