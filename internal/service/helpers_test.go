package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache() *cache.Cache {
	return cache.New(cache.NewMemoryStore(), testLogger())
}

func strPtr(s string) *string { return &s }

// mockDiscord is a testify mock of DiscordGuild.
type mockDiscord struct {
	mock.Mock
	unconfigured bool
}

func (m *mockDiscord) Configured() bool { return !m.unconfigured }

func (m *mockDiscord) GuildDetails(ctx context.Context) (*domain.GuildDetails, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GuildDetails), args.Error(1)
}

func (m *mockDiscord) GuildRoles(ctx context.Context) ([]domain.GuildRole, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GuildRole), args.Error(1)
}

func (m *mockDiscord) MemberRoleIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func appStatus(err error) int {
	if appErr, ok := domain.AsAppError(err); ok {
		return appErr.Status
	}
	return 0
}
