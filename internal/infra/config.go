package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const insecureJWTSecret = "change-me-in-production"

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database (Supabase Postgres)
	DatabaseURL            string `env:"DATABASE_URL"`
	SupabaseDBURL          string `env:"SUPABASE_DB_URL"`
	PGHost                 string `env:"PGHOST" envDefault:"localhost"`
	PGPort                 int    `env:"PGPORT" envDefault:"5432"`
	PGUser                 string `env:"PGUSER" envDefault:"odessarp"`
	PGPassword             string `env:"PGPASSWORD" envDefault:"odessarp"`
	PGDatabase             string `env:"PGDATABASE" envDefault:"odessarp"`
	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	AutoMigrate            bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	// Ingestion
	FiveMAPIKey     string  `env:"FIVEM_API_KEY"`
	FiveMServerIP   string  `env:"FIVEM_SERVER_IP"`
	IngestRateLimit float64 `env:"INGEST_RATE_LIMIT" envDefault:"50"`
	IngestBurst     int     `env:"INGEST_BURST" envDefault:"100"`

	// Discord
	DiscordBotToken     string   `env:"DISCORD_BOT_TOKEN"`
	DiscordServerID     string   `env:"DISCORD_SERVER_ID"`
	DiscordAPIKey       string   `env:"DISCORD_API_KEY"`
	DiscordClientID     string   `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string   `env:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL  string   `env:"DISCORD_REDIRECT_URL"`
	AllowedDiscordIDs   []string `env:"ALLOWED_DISCORD_IDS" envSeparator:","`
	AdminEmails         []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Sessions
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	// Redis (persistent cache tier)
	RedisURL string `env:"REDIS_URL"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Outbox poller
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"500ms"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// Server
	APIPort    int    `env:"API_PORT" envDefault:"3000"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`
	// Peers allowed to set X-Forwarded-For. Empty means the header is ignored.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.AllowedDiscordIDs = compact(cfg.AllowedDiscordIDs)
	cfg.AdminEmails = compact(cfg.AdminEmails)
	cfg.TrustedProxies = compact(cfg.TrustedProxies)
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == insecureJWTSecret {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	if c.FiveMAPIKey == "" {
		return fmt.Errorf("FIVEM_API_KEY is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL, then SUPABASE_DB_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.SupabaseDBURL != "" {
		return c.SupabaseDBURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// DiscordProxyKey returns the shared secret guarding the /discord endpoints.
func (c *Config) DiscordProxyKey() string {
	if c.DiscordAPIKey != "" {
		return c.DiscordAPIKey
	}
	return c.FiveMAPIKey
}

// DiscordOAuthEnabled reports whether the OAuth login flow is configured.
func (c *Config) DiscordOAuthEnabled() bool {
	return c.DiscordClientID != "" && c.DiscordClientSecret != "" && c.DiscordRedirectURL != ""
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
