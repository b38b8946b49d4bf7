package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

const (
	roleChangesLimit   = 100
	guildRolesCacheKey = "discord:guild-roles"
)

// RoleService manages Discord role mappings, email overrides and cached user roles.
type RoleService struct {
	db      repository.DBTX
	tx      repository.TxRunner
	roles   repository.RoleRepository
	sync    *RoleSyncService
	discord DiscordGuild
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewRoleService creates a new RoleService.
func NewRoleService(
	db repository.DBTX,
	tx repository.TxRunner,
	roles repository.RoleRepository,
	sync *RoleSyncService,
	discord DiscordGuild,
	c *cache.Cache,
	logger *slog.Logger,
) *RoleService {
	return &RoleService{db: db, tx: tx, roles: roles, sync: sync, discord: discord, cache: c, logger: logger}
}

// ── Discord role mappings ─────────────────────────────────────

func (s *RoleService) ListDiscordRoles(ctx context.Context) ([]domain.DiscordRole, error) {
	roles, err := s.roles.ListDiscordRoles(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list discord roles", err)
	}
	return roles, nil
}

// SetDiscordRole maps roleID to level and records the change.
func (s *RoleService) SetDiscordRole(ctx context.Context, roleID, roleName string, level domain.PermissionLevel, actor string) (*domain.DiscordRole, error) {
	if err := domain.ValidateSnowflake(roleID); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if !level.Valid() {
		return nil, domain.ErrValidation("invalid permission level: " + string(level))
	}

	role := &domain.DiscordRole{RoleID: roleID, RoleName: roleName, PermissionLevel: level, UpdatedBy: actor}
	err := s.tx.InTx(ctx, func(tx repository.DBTX) error {
		prev, err := s.roles.FindDiscordRole(ctx, tx, roleID)
		if err != nil {
			return err
		}
		if role.RoleName == "" && prev != nil {
			role.RoleName = prev.RoleName
		}
		if err := s.roles.UpsertDiscordRole(ctx, tx, role); err != nil {
			return err
		}
		change := &domain.RoleChange{RoleID: roleID, RoleName: role.RoleName, NewLevel: &level, ChangedBy: actor}
		if prev != nil {
			pl := prev.PermissionLevel
			change.PreviousLevel = &pl
		}
		return s.roles.InsertRoleChange(ctx, tx, change)
	})
	if err != nil {
		return nil, wrapErr("set discord role", err)
	}

	s.invalidatePermissions(ctx)
	s.logger.Info("discord role mapped", "role_id", roleID, "level", level, "by", actor)
	return role, nil
}

// DeleteDiscordRole removes a mapping and records the change.
func (s *RoleService) DeleteDiscordRole(ctx context.Context, roleID, actor string) error {
	err := s.tx.InTx(ctx, func(tx repository.DBTX) error {
		prev, err := s.roles.FindDiscordRole(ctx, tx, roleID)
		if err != nil {
			return err
		}
		if prev == nil {
			return domain.ErrNotFound("discord role", roleID)
		}
		if _, err := s.roles.DeleteDiscordRole(ctx, tx, roleID); err != nil {
			return err
		}
		pl := prev.PermissionLevel
		return s.roles.InsertRoleChange(ctx, tx, &domain.RoleChange{
			RoleID:        roleID,
			RoleName:      prev.RoleName,
			PreviousLevel: &pl,
			ChangedBy:     actor,
		})
	})
	if err != nil {
		return wrapErr("delete discord role", err)
	}

	s.invalidatePermissions(ctx)
	s.logger.Info("discord role unmapped", "role_id", roleID, "by", actor)
	return nil
}

func (s *RoleService) ListChanges(ctx context.Context) ([]domain.RoleChange, error) {
	changes, err := s.roles.ListRoleChanges(ctx, s.db, roleChangesLimit)
	if err != nil {
		return nil, domain.ErrInternal("list role changes", err)
	}
	return changes, nil
}

// GuildRoles lists the guild's live roles for the mapping UI.
func (s *RoleService) GuildRoles(ctx context.Context) ([]domain.GuildRole, error) {
	if s.discord == nil || !s.discord.Configured() {
		return nil, domain.ErrUnavailable("discord bot is not configured")
	}
	roles, err := cache.Fetch(ctx, s.cache, guildRolesCacheKey, 5*time.Minute, s.discord.GuildRoles)
	if err != nil {
		return nil, wrapErr("guild roles", err)
	}
	return roles, nil
}

// ── Email roles ───────────────────────────────────────────────

func (s *RoleService) ListEmailRoles(ctx context.Context) ([]domain.EmailRole, error) {
	roles, err := s.roles.ListEmailRoles(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list email roles", err)
	}
	return roles, nil
}

func (s *RoleService) SetEmailRole(ctx context.Context, email string, level domain.PermissionLevel, actor string) (*domain.EmailRole, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if !level.Valid() {
		return nil, domain.ErrValidation("invalid permission level: " + string(level))
	}
	role := &domain.EmailRole{Email: email, PermissionLevel: level, UpdatedBy: actor}
	if err := s.roles.UpsertEmailRole(ctx, s.db, role); err != nil {
		return nil, domain.ErrInternal("set email role", err)
	}
	s.invalidatePermissions(ctx)
	s.logger.Info("email role set", "email", email, "level", level, "by", actor)
	return role, nil
}

func (s *RoleService) DeleteEmailRole(ctx context.Context, email, actor string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	ok, err := s.roles.DeleteEmailRole(ctx, s.db, email)
	if err != nil {
		return domain.ErrInternal("delete email role", err)
	}
	if !ok {
		return domain.ErrNotFound("email role", email)
	}
	s.invalidatePermissions(ctx)
	s.logger.Info("email role deleted", "email", email, "by", actor)
	return nil
}

// ── Cached user roles ─────────────────────────────────────────

// UserRoles is a user's cached Discord roles with their mapped levels.
type UserRoles struct {
	DiscordID string                            `json:"discord_id"`
	RoleIDs   []string                          `json:"role_ids"`
	Levels    map[string]domain.PermissionLevel `json:"levels"`
}

func (s *RoleService) UserRoles(ctx context.Context, discordID string) (*UserRoles, error) {
	if err := domain.ValidateSnowflake(discordID); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	ids, err := s.roles.UserRoleIDs(ctx, s.db, discordID)
	if err != nil {
		return nil, domain.ErrInternal("user roles", err)
	}
	levels, err := s.roles.LevelsForRoles(ctx, s.db, ids)
	if err != nil {
		return nil, domain.ErrInternal("role levels", err)
	}
	return &UserRoles{DiscordID: discordID, RoleIDs: ids, Levels: levels}, nil
}

// SyncUser refreshes a user's cached roles from Discord.
func (s *RoleService) SyncUser(ctx context.Context, discordID string) ([]string, error) {
	return s.sync.SyncUserRoles(ctx, discordID)
}

func (s *RoleService) invalidatePermissions(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, auth.PermissionCachePrefix); err != nil {
		s.logger.Warn("permission cache invalidation failed", "error", err)
	}
}
