package service

import (
	"context"
	"log/slog"

	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

// DiscordGuild is the subset of the Discord bot the services call.
type DiscordGuild interface {
	Configured() bool
	GuildDetails(ctx context.Context) (*domain.GuildDetails, error)
	GuildRoles(ctx context.Context) ([]domain.GuildRole, error)
	MemberRoleIDs(ctx context.Context, userID string) ([]string, error)
}

// RoleSyncService mirrors a user's live Discord roles into user_roles.
type RoleSyncService struct {
	tx      repository.TxRunner
	roles   repository.RoleRepository
	discord DiscordGuild
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewRoleSyncService creates a new RoleSyncService.
func NewRoleSyncService(tx repository.TxRunner, roles repository.RoleRepository, discord DiscordGuild, c *cache.Cache, logger *slog.Logger) *RoleSyncService {
	return &RoleSyncService{tx: tx, roles: roles, discord: discord, cache: c, logger: logger}
}

// SyncUserRoles replaces the user's cached role set with the live one and returns it.
// A user who is not a guild member ends up with no roles.
func (s *RoleSyncService) SyncUserRoles(ctx context.Context, discordID string) ([]string, error) {
	if err := domain.ValidateSnowflake(discordID); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if s.discord == nil || !s.discord.Configured() {
		return nil, domain.ErrUnavailable("discord bot is not configured")
	}

	live, err := s.discord.MemberRoleIDs(ctx, discordID)
	if err != nil {
		return nil, wrapErr("fetch member roles", err)
	}
	roleIDs := dedupe(live)

	err = s.tx.InTx(ctx, func(tx repository.DBTX) error {
		if err := s.roles.DeleteUserRoles(ctx, tx, discordID); err != nil {
			return err
		}
		return s.roles.InsertUserRoles(ctx, tx, discordID, roleIDs)
	})
	if err != nil {
		return nil, domain.ErrInternal("store user roles", err)
	}

	if err := s.cache.Invalidate(ctx, auth.DiscordPermissionCacheKey(discordID)); err != nil {
		s.logger.Warn("permission cache invalidation failed", "discord_id", discordID, "error", err)
	}
	s.logger.Info("discord roles synced", "discord_id", discordID, "roles", len(roleIDs))
	return roleIDs, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
