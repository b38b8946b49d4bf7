package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " a@odessarp.com , ,b@odessarp.com")
	t.Setenv("ALLOWED_DISCORD_IDS", "")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.APIPort)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, []string{"a@odessarp.com", "b@odessarp.com"}, cfg.AdminEmails)
	assert.Empty(t, cfg.AllowedDiscordIDs)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 6543, PGDatabase: "odessa"}
	assert.Equal(t, "postgres://u:p@db:6543/odessa?sslmode=disable", cfg.DSN())

	cfg.SupabaseDBURL = "postgres://supabase"
	assert.Equal(t, "postgres://supabase", cfg.DSN())

	cfg.DatabaseURL = "postgres://primary"
	assert.Equal(t, "postgres://primary", cfg.DSN())
}

func TestConfig_DiscordProxyKey(t *testing.T) {
	cfg := &Config{FiveMAPIKey: "fivem"}
	assert.Equal(t, "fivem", cfg.DiscordProxyKey())

	cfg.DiscordAPIKey = "discord"
	assert.Equal(t, "discord", cfg.DiscordProxyKey())
}

func TestConfig_DiscordOAuthEnabled(t *testing.T) {
	cfg := &Config{DiscordClientID: "id", DiscordClientSecret: "secret"}
	assert.False(t, cfg.DiscordOAuthEnabled())

	cfg.DiscordRedirectURL = "https://dashboard.odessarp.com/auth/discord/callback"
	assert.True(t, cfg.DiscordOAuthEnabled())
}

func TestConfig_Validate(t *testing.T) {
	strong := "0123456789abcdef0123456789abcdef"

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"insecure default", Config{JWTSecret: insecureJWTSecret, FiveMAPIKey: "k"}, "insecure default"},
		{"short secret", Config{JWTSecret: "short", FiveMAPIKey: "k"}, "too short"},
		{"missing ingest key", Config{JWTSecret: strong}, "FIVEM_API_KEY"},
		{"valid", Config{JWTSecret: strong, FiveMAPIKey: "k"}, ""},
		{"dev bypass", Config{JWTSecret: insecureJWTSecret, AllowInsecureDefaults: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
