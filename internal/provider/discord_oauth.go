package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/odessarp/dashboard/internal/domain"
	"golang.org/x/oauth2"
)

const defaultDiscordTimeout = 10 * time.Second

// DiscordEndpoint is Discord's OAuth2 authorization-code endpoint.
var DiscordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// DiscordOAuth performs the dashboard's "Login with Discord" flow.
type DiscordOAuth struct {
	config *oauth2.Config
	logger *slog.Logger
}

// NewDiscordOAuth returns nil when the client credentials are incomplete.
func NewDiscordOAuth(clientID, clientSecret, redirectURL string, logger *slog.Logger) *DiscordOAuth {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}
	return &DiscordOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identify", "email"},
			Endpoint:     DiscordEndpoint,
		},
		logger: logger,
	}
}

// AuthCodeURL returns the authorize URL carrying state.
func (o *DiscordOAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "none"))
}

// Exchange trades an authorization code for the user's identity.
func (o *DiscordOAuth) Exchange(ctx context.Context, code string) (domain.Principal, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: defaultDiscordTimeout})
	tok, err := o.config.Exchange(ctx, code)
	if err != nil {
		o.logger.Warn("discord oauth exchange failed", "error", err)
		return domain.Principal{}, domain.ErrUnauthorized("discord authorization failed")
	}

	s, err := discordgo.New("Bearer " + tok.AccessToken)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("create discord session: %w", err)
	}
	s.StateEnabled = false
	s.Client = &http.Client{Timeout: defaultDiscordTimeout}

	u, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		o.logger.Error("discord @me lookup failed", "error", err)
		return domain.Principal{}, domain.ErrUpstream("discord profile lookup failed", err)
	}
	return principalFromUser(u), nil
}

func principalFromUser(u *discordgo.User) domain.Principal {
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return domain.Principal{
		DiscordID: u.ID,
		Email:     strings.ToLower(strings.TrimSpace(u.Email)),
		Username:  name,
		Avatar:    u.AvatarURL(""),
	}
}
