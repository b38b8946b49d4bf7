package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/guard"
)

const discordCircuit = "discord"

// DiscordBot calls the Discord REST API with the community bot's token.
type DiscordBot struct {
	session *discordgo.Session
	guildID string
	breaker *guard.CircuitBreaker
	logger  *slog.Logger
}

// NewDiscordBot builds a REST-only session. An empty token yields an unconfigured bot
// whose calls fail with 503.
func NewDiscordBot(token, guildID string, logger *slog.Logger) (*DiscordBot, error) {
	b := &DiscordBot{guildID: guildID, logger: logger}
	if token == "" {
		return b, nil
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.StateEnabled = false
	s.Client = &http.Client{Timeout: defaultDiscordTimeout}
	b.session = s
	return b, nil
}

// Configured reports whether a bot token and guild are available.
func (b *DiscordBot) Configured() bool {
	return b != nil && b.session != nil && b.guildID != ""
}

// WithBreaker makes REST calls fail fast with 503 while Discord keeps failing.
func (b *DiscordBot) WithBreaker(cb *guard.CircuitBreaker) *DiscordBot {
	b.breaker = cb
	return b
}

// call runs fn under the circuit breaker. A 404 is an answer, not an outage.
func (b *DiscordBot) call(ctx context.Context, fn func() error) error {
	if b.breaker != nil {
		if res := b.breaker.Check(ctx, discordCircuit); !res.Allowed {
			return domain.ErrUnavailable("discord api unavailable: " + res.Reason)
		}
	}
	err := fn()
	if b.breaker != nil {
		if err != nil && !IsDiscordNotFound(err) {
			b.breaker.RecordFailure(discordCircuit)
		} else {
			b.breaker.RecordSuccess(discordCircuit)
		}
	}
	return err
}

func (b *DiscordBot) ensure() error {
	if !b.Configured() {
		return domain.ErrUnavailable("discord bot is not configured")
	}
	return nil
}

// GuildDetails returns the guild summary with its roles sorted by position, highest first.
func (b *DiscordBot) GuildDetails(ctx context.Context) (*domain.GuildDetails, error) {
	if err := b.ensure(); err != nil {
		return nil, err
	}
	var g *discordgo.Guild
	err := b.call(ctx, func() (err error) {
		g, err = b.session.GuildWithCounts(b.guildID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		if _, ok := domain.AsAppError(err); ok {
			return nil, err
		}
		b.logger.Error("discord guild lookup failed", "guild_id", b.guildID, "error", err)
		return nil, domain.ErrUpstream("discord guild lookup failed", err)
	}
	roles, err := b.GuildRoles(ctx)
	if err != nil {
		return nil, err
	}
	count := g.MemberCount
	if g.ApproximateMemberCount > 0 {
		count = g.ApproximateMemberCount
	}
	return &domain.GuildDetails{
		ID:          g.ID,
		Name:        g.Name,
		Icon:        g.Icon,
		MemberCount: count,
		Roles:       roles,
	}, nil
}

// GuildRoles lists every role of the guild, highest position first.
func (b *DiscordBot) GuildRoles(ctx context.Context) ([]domain.GuildRole, error) {
	if err := b.ensure(); err != nil {
		return nil, err
	}
	var raw []*discordgo.Role
	err := b.call(ctx, func() (err error) {
		raw, err = b.session.GuildRoles(b.guildID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		if _, ok := domain.AsAppError(err); ok {
			return nil, err
		}
		b.logger.Error("discord roles lookup failed", "guild_id", b.guildID, "error", err)
		return nil, domain.ErrUpstream("discord roles lookup failed", err)
	}
	return toGuildRoles(raw), nil
}

// MemberRoleIDs returns the role IDs of a guild member. A member who is not in
// the guild has no roles.
func (b *DiscordBot) MemberRoleIDs(ctx context.Context, userID string) ([]string, error) {
	if err := b.ensure(); err != nil {
		return nil, err
	}
	var m *discordgo.Member
	err := b.call(ctx, func() (err error) {
		m, err = b.session.GuildMember(b.guildID, userID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		if _, ok := domain.AsAppError(err); ok {
			return nil, err
		}
		if IsDiscordNotFound(err) {
			return []string{}, nil
		}
		b.logger.Error("discord member lookup failed", "user_id", userID, "error", err)
		return nil, domain.ErrUpstream("discord member lookup failed", err)
	}
	if m.Roles == nil {
		return []string{}, nil
	}
	return m.Roles, nil
}

// IsDiscordNotFound reports whether err is a Discord REST 404.
func IsDiscordNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func toGuildRoles(raw []*discordgo.Role) []domain.GuildRole {
	roles := make([]domain.GuildRole, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		roles = append(roles, domain.GuildRole{ID: r.ID, Name: r.Name, Color: r.Color, Position: r.Position})
	}
	sort.SliceStable(roles, func(i, j int) bool { return roles[i].Position > roles[j].Position })
	return roles
}
