package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const roleID = "987654321098765432"

func newRoleService(roles *repotest.MockRoleRepository, discord DiscordGuild) (*RoleService, *repotest.FakeTx) {
	tx := &repotest.FakeTx{}
	c := testCache()
	sync := NewRoleSyncService(tx, roles, discord, c, testLogger())
	return NewRoleService(nil, tx, roles, sync, discord, c, testLogger()), tx
}

func TestRoleService_SetDiscordRoleRecordsChange(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("FindDiscordRole", roleID).Return(&domain.DiscordRole{RoleID: roleID, RoleName: "Mods", PermissionLevel: domain.LevelContent}, nil)
	roles.On("UpsertDiscordRole", mock.AnythingOfType("*domain.DiscordRole")).Return(nil)
	var change *domain.RoleChange
	roles.On("InsertRoleChange", mock.AnythingOfType("*domain.RoleChange")).
		Run(func(args mock.Arguments) { change = args.Get(0).(*domain.RoleChange) }).
		Return(nil)
	svc, tx := newRoleService(roles, &mockDiscord{})

	role, err := svc.SetDiscordRole(context.Background(), roleID, "", domain.LevelStaff, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Mods", role.RoleName)
	assert.Equal(t, 1, tx.Calls)
	require.NotNil(t, change)
	assert.Equal(t, domain.LevelContent, *change.PreviousLevel)
	assert.Equal(t, domain.LevelStaff, *change.NewLevel)
	assert.Equal(t, "admin", change.ChangedBy)
}

func TestRoleService_SetDiscordRoleValidates(t *testing.T) {
	svc, tx := newRoleService(&repotest.MockRoleRepository{}, &mockDiscord{})

	_, err := svc.SetDiscordRole(context.Background(), "abc", "x", domain.LevelStaff, "admin")
	assert.Equal(t, http.StatusBadRequest, appStatus(err))
	_, err = svc.SetDiscordRole(context.Background(), roleID, "x", "owner", "admin")
	assert.Equal(t, http.StatusBadRequest, appStatus(err))
	assert.Equal(t, 0, tx.Calls)
}

func TestRoleService_WritesInvalidatePermissionCache(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("UpsertEmailRole", mock.AnythingOfType("*domain.EmailRole")).Return(nil)
	svc, _ := newRoleService(roles, &mockDiscord{})
	ctx := context.Background()
	key := auth.PermissionCacheKey(domain.Principal{Email: "someone@example.com"})
	require.NoError(t, svc.cache.Set(ctx, key, domain.LevelViewer, time.Minute))

	role, err := svc.SetEmailRole(ctx, " Someone@Example.com ", domain.LevelStaff, "admin")
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", role.Email)

	var lvl domain.PermissionLevel
	hit, err := svc.cache.Get(ctx, key, &lvl)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRoleService_DeleteMissing(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("FindDiscordRole", roleID).Return(nil, nil)
	roles.On("DeleteEmailRole", "nobody@example.com").Return(false, nil)
	svc, _ := newRoleService(roles, &mockDiscord{})

	assert.Equal(t, http.StatusNotFound, appStatus(svc.DeleteDiscordRole(context.Background(), roleID, "admin")))
	assert.Equal(t, http.StatusNotFound, appStatus(svc.DeleteEmailRole(context.Background(), "nobody@example.com", "admin")))
	roles.AssertNotCalled(t, "DeleteDiscordRole", mock.Anything)
}

func TestRoleService_GuildRolesCached(t *testing.T) {
	discord := &mockDiscord{}
	discord.On("GuildRoles").Return([]domain.GuildRole{{ID: "1", Name: "Admin", Position: 5}}, nil).Once()
	svc, _ := newRoleService(&repotest.MockRoleRepository{}, discord)

	for i := 0; i < 2; i++ {
		roles, err := svc.GuildRoles(context.Background())
		require.NoError(t, err)
		assert.Len(t, roles, 1)
	}
	discord.AssertNumberOfCalls(t, "GuildRoles", 1)
}

func TestRoleService_GuildRolesUnconfigured(t *testing.T) {
	svc, _ := newRoleService(&repotest.MockRoleRepository{}, &mockDiscord{unconfigured: true})
	_, err := svc.GuildRoles(context.Background())
	assert.Equal(t, http.StatusServiceUnavailable, appStatus(err))
}

func TestRoleService_UserRoles(t *testing.T) {
	roles := &repotest.MockRoleRepository{}
	roles.On("UserRoleIDs", memberID).Return([]string{"a", "b"}, nil)
	roles.On("LevelsForRoles", []string{"a", "b"}).Return(map[string]domain.PermissionLevel{"a": domain.LevelStaff}, nil)
	svc, _ := newRoleService(roles, &mockDiscord{})

	ur, err := svc.UserRoles(context.Background(), memberID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ur.RoleIDs)
	assert.Equal(t, domain.LevelStaff, ur.Levels["a"])
}
