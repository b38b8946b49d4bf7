package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type stubSyncer struct {
	roles []string
	err   error
	calls int
}

func (s *stubSyncer) SyncUserRoles(_ context.Context, _ string) ([]string, error) {
	s.calls++
	return s.roles, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestResolver(roles *repotest.MockRoleRepository, syncer RoleSyncer, cfg ResolverConfig) *Resolver {
	return NewResolver(nil, roles, syncer, cache.New(cache.NewMemoryStore(), testLogger()), cfg, testLogger())
}

func TestResolver_AdminEmailBeatsDiscordData(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	r := newTestResolver(roles, nil, ResolverConfig{AdminEmails: []string{"Boss@OdessaRP.com"}})

	p := domain.Principal{Email: "boss@odessarp.com", DiscordID: "111111111111111111"}
	assert.Equal(t, domain.LevelAdmin, r.Resolve(context.Background(), p))
	for _, l := range domain.AllLevels() {
		assert.True(t, r.HasPermission(context.Background(), p, l))
	}
	roles.AssertNotCalled(t, "FindEmailRole", mock.Anything)
	roles.AssertNotCalled(t, "UserRoleIDs", mock.Anything)
}

func TestResolver_DefaultAdminEmails(t *testing.T) {
	r := newTestResolver(&repotest.MockRoleRepository{}, nil, ResolverConfig{})
	assert.True(t, r.IsAdminEmail(DefaultAdminEmails[0]))
}

func TestResolver_EmailRoleShortCircuits(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("FindEmailRole", "staff@example.com").
		Return(&domain.EmailRole{Email: "staff@example.com", PermissionLevel: domain.LevelStaff}, nil)
	r := newTestResolver(roles, nil, ResolverConfig{AllowedDiscordIDs: []string{"42"}})

	p := domain.Principal{Email: "Staff@example.com", DiscordID: "42"}
	assert.Equal(t, domain.LevelStaff, r.Resolve(context.Background(), p))
	roles.AssertNotCalled(t, "UserRoleIDs", mock.Anything)
}

func TestResolver_EmailLookupErrorDenies(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("FindEmailRole", "x@example.com").Return(nil, errors.New("db down"))
	r := newTestResolver(roles, nil, ResolverConfig{AllowedDiscordIDs: []string{"42"}})

	p := domain.Principal{Email: "x@example.com", DiscordID: "42"}
	assert.Equal(t, domain.LevelNone, r.Resolve(context.Background(), p))
	roles.AssertNotCalled(t, "UserRoleIDs", mock.Anything)
}

func TestResolver_AllowedDiscordID(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	r := newTestResolver(roles, nil, ResolverConfig{AllowedDiscordIDs: []string{"42"}})

	assert.Equal(t, domain.LevelAdmin, r.Resolve(context.Background(), domain.Principal{DiscordID: "42"}))
}

func TestResolver_MaxOfMappedRoles(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("UserRoleIDs", "7").Return([]string{"r1", "r2", "r3"}, nil)
	roles.On("LevelsForRoles", []string{"r1", "r2", "r3"}).Return(map[string]domain.PermissionLevel{
		"r1": domain.LevelViewer,
		"r2": domain.LevelContent,
	}, nil)
	r := newTestResolver(roles, nil, ResolverConfig{})

	p := domain.Principal{DiscordID: "7"}
	assert.Equal(t, domain.LevelContent, r.Resolve(context.Background(), p))
	assert.True(t, r.HasPermission(context.Background(), p, domain.LevelViewer))
	assert.False(t, r.HasPermission(context.Background(), p, domain.LevelStaff))
}

func TestResolver_CachesResolvedLevel(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("UserRoleIDs", "7").Return([]string{"r1"}, nil).Once()
	roles.On("LevelsForRoles", []string{"r1"}).Return(map[string]domain.PermissionLevel{"r1": domain.LevelStaff}, nil).Once()
	r := newTestResolver(roles, nil, ResolverConfig{})

	p := domain.Principal{DiscordID: "7"}
	assert.Equal(t, domain.LevelStaff, r.Resolve(context.Background(), p))
	assert.Equal(t, domain.LevelStaff, r.Resolve(context.Background(), p))
	roles.AssertNumberOfCalls(t, "UserRoleIDs", 1)

	assert.NoError(t, r.cache.Invalidate(context.Background(), DiscordPermissionCacheKey("7")))
	roles.On("UserRoleIDs", "7").Return([]string{}, nil).Once()
	assert.Equal(t, domain.LevelNone, r.Resolve(context.Background(), p))
}

func TestResolver_SyncsWhenNoCachedRoles(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("UserRoleIDs", "7").Return([]string{}, nil)
	roles.On("LevelsForRoles", []string{"r9"}).Return(map[string]domain.PermissionLevel{"r9": domain.LevelViewer}, nil)
	syncer := &stubSyncer{roles: []string{"r9"}}
	r := newTestResolver(roles, syncer, ResolverConfig{})

	assert.Equal(t, domain.LevelViewer, r.Resolve(context.Background(), domain.Principal{DiscordID: "7"}))
	assert.Equal(t, 1, syncer.calls)
}

func TestResolver_SyncFailureDenies(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("UserRoleIDs", "7").Return([]string{}, nil)
	syncer := &stubSyncer{err: errors.New("discord down")}
	r := newTestResolver(roles, syncer, ResolverConfig{})

	assert.Equal(t, domain.LevelNone, r.Resolve(context.Background(), domain.Principal{DiscordID: "7"}))
}

func TestResolver_StoreErrorDenies(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("UserRoleIDs", "7").Return(nil, errors.New("db down"))
	r := newTestResolver(roles, nil, ResolverConfig{})

	assert.Equal(t, domain.LevelNone, r.Resolve(context.Background(), domain.Principal{DiscordID: "7"}))
}

func TestResolver_ZeroPrincipal(t *testing.T) {
	r := newTestResolver(&repotest.MockRoleRepository{}, nil, ResolverConfig{})
	assert.Equal(t, domain.LevelNone, r.Resolve(context.Background(), domain.Principal{}))
	assert.True(t, r.HasPermission(context.Background(), domain.Principal{}, domain.LevelNone))
}
