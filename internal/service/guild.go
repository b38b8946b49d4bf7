package service

import (
	"context"
	"log/slog"

	"github.com/odessarp/dashboard/internal/domain"
)

// GuildService answers the bot-proxy lookups.
type GuildService struct {
	discord DiscordGuild
	logger  *slog.Logger
}

// NewGuildService creates a new GuildService.
func NewGuildService(discord DiscordGuild, logger *slog.Logger) *GuildService {
	return &GuildService{discord: discord, logger: logger}
}

// Configured reports whether the bot can be called.
func (s *GuildService) Configured() bool {
	return s.discord != nil && s.discord.Configured()
}

func (s *GuildService) Details(ctx context.Context) (*domain.GuildDetails, error) {
	if !s.Configured() {
		return nil, domain.ErrUnavailable("discord bot is not configured")
	}
	return s.discord.GuildDetails(ctx)
}

// MemberRoles resolves a member's role IDs to full guild roles. Unknown members have none.
func (s *GuildService) MemberRoles(ctx context.Context, userID string) ([]domain.GuildRole, error) {
	if !s.Configured() {
		return nil, domain.ErrUnavailable("discord bot is not configured")
	}
	if err := domain.ValidateSnowflake(userID); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	ids, err := s.discord.MemberRoleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.GuildRole{}, nil
	}
	all, err := s.discord.GuildRoles(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	roles := make([]domain.GuildRole, 0, len(ids))
	for _, r := range all {
		if _, ok := want[r.ID]; ok {
			roles = append(roles, r)
		}
	}
	return roles, nil
}
