package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/repository"
)

// PermissionCacheTTL bounds how long a resolved level is reused.
const PermissionCacheTTL = 5 * time.Minute

// PermissionCachePrefix namespaces resolved levels in the cache.
const PermissionCachePrefix = "perm:"

// DefaultAdminEmails is used when ADMIN_EMAILS is not set.
var DefaultAdminEmails = []string{
	"admin@odessarp.com",
	"owner@odessarp.com",
}

// PermissionCacheKey is the cache key of a principal's resolved level.
func PermissionCacheKey(p domain.Principal) string {
	return PermissionCachePrefix + p.Key()
}

// DiscordPermissionCacheKey is the cache key of a Discord user's resolved level.
func DiscordPermissionCacheKey(discordID string) string {
	return PermissionCacheKey(domain.Principal{DiscordID: discordID})
}

// RoleSyncer refreshes a user's cached Discord roles from Discord.
type RoleSyncer interface {
	SyncUserRoles(ctx context.Context, discordID string) ([]string, error)
}

// ResolverConfig holds the static allow-lists.
type ResolverConfig struct {
	AdminEmails       []string
	AllowedDiscordIDs []string
}

// Resolver derives a principal's permission level.
type Resolver struct {
	db          repository.DBTX
	roles       repository.RoleRepository
	syncer      RoleSyncer
	cache       *cache.Cache
	adminEmails map[string]struct{}
	allowedIDs  map[string]struct{}
	logger      *slog.Logger
}

// NewResolver creates a Resolver. syncer may be nil, in which case users without
// cached roles resolve to none.
func NewResolver(db repository.DBTX, roles repository.RoleRepository, syncer RoleSyncer, c *cache.Cache, cfg ResolverConfig, logger *slog.Logger) *Resolver {
	emails := cfg.AdminEmails
	if len(emails) == 0 {
		emails = DefaultAdminEmails
	}
	return &Resolver{
		db:          db,
		roles:       roles,
		syncer:      syncer,
		cache:       c,
		adminEmails: toSet(emails, strings.ToLower),
		allowedIDs:  toSet(cfg.AllowedDiscordIDs, nil),
		logger:      logger,
	}
}

func toSet(items []string, norm func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if norm != nil {
			it = norm(it)
		}
		if it != "" {
			set[it] = struct{}{}
		}
	}
	return set
}

// IsAdminEmail reports whether email is on the admin allow-list.
func (r *Resolver) IsAdminEmail(email string) bool {
	_, ok := r.adminEmails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// HasPermission reports whether p holds at least the required level.
func (r *Resolver) HasPermission(ctx context.Context, p domain.Principal, required domain.PermissionLevel) bool {
	return r.Resolve(ctx, p).AtLeast(required)
}

// Resolve returns the effective level of p. Any lookup failure resolves to none.
func (r *Resolver) Resolve(ctx context.Context, p domain.Principal) domain.PermissionLevel {
	if p.IsZero() {
		return domain.LevelNone
	}
	if p.Email != "" && r.IsAdminEmail(p.Email) {
		return domain.LevelAdmin
	}

	level, err := cache.Fetch(ctx, r.cache, PermissionCacheKey(p), PermissionCacheTTL,
		func(ctx context.Context) (domain.PermissionLevel, error) {
			return r.resolve(ctx, p)
		})
	if err != nil {
		r.logger.Warn("permission lookup failed, denying",
			"principal", p.Key(),
			"error", err,
		)
		return domain.LevelNone
	}
	return level
}

func (r *Resolver) resolve(ctx context.Context, p domain.Principal) (domain.PermissionLevel, error) {
	// An email role is authoritative: Discord roles are never consulted for that user.
	if p.Email != "" {
		er, err := r.roles.FindEmailRole(ctx, r.db, strings.ToLower(p.Email))
		if err != nil {
			return domain.LevelNone, fmt.Errorf("email role: %w", err)
		}
		if er != nil {
			return er.PermissionLevel, nil
		}
	}

	if p.DiscordID == "" {
		return domain.LevelNone, nil
	}
	if _, ok := r.allowedIDs[p.DiscordID]; ok {
		return domain.LevelAdmin, nil
	}

	roleIDs, err := r.roles.UserRoleIDs(ctx, r.db, p.DiscordID)
	if err != nil {
		return domain.LevelNone, fmt.Errorf("user roles: %w", err)
	}
	if len(roleIDs) == 0 && r.syncer != nil {
		synced, err := r.syncer.SyncUserRoles(ctx, p.DiscordID)
		if err != nil {
			r.logger.Warn("role sync during permission check failed", "discord_id", p.DiscordID, "error", err)
		} else {
			roleIDs = synced
		}
	}
	if len(roleIDs) == 0 {
		return domain.LevelNone, nil
	}

	levels, err := r.roles.LevelsForRoles(ctx, r.db, roleIDs)
	if err != nil {
		return domain.LevelNone, fmt.Errorf("role levels: %w", err)
	}
	best := domain.LevelNone
	for _, l := range levels {
		best = domain.MaxLevel(best, l)
	}
	return best, nil
}
