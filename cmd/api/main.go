package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odessarp/dashboard/internal/app"
	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/guard"
	"github.com/odessarp/dashboard/internal/handler"
	"github.com/odessarp/dashboard/internal/infra"
	"github.com/odessarp/dashboard/internal/provider"
	"github.com/odessarp/dashboard/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := infra.LoadDotEnv()
	if err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	if len(files) > 0 {
		logger.Info("loaded env files", "files", files)
	}

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	proxies, err := handler.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.AutoMigrate {
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Cache: Redis tier when configured, memory only otherwise
	var store cache.Store
	rdb, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, cache is memory-only", "error", err)
	} else if rdb != nil {
		store = cache.NewRedisStore(rdb)
		logger.Info("connected to redis")
	}
	c := cache.New(store, logger)
	defer c.Close()

	// External providers
	bot, err := provider.NewDiscordBot(cfg.DiscordBotToken, cfg.DiscordServerID, logger)
	if err != nil {
		return fmt.Errorf("discord bot: %w", err)
	}
	bot.WithBreaker(guard.NewCircuitBreaker(5, 30*time.Second))
	deps := app.RouterDeps{
		DB:                pool,
		JWTMgr:            auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry),
		Cache:             c,
		Logger:            logger,
		Discord:           bot,
		FiveMAPIKey:       cfg.FiveMAPIKey,
		DiscordAPIKey:     cfg.DiscordProxyKey(),
		CORSOrigin:        cfg.CORSOrigin,
		TrustedProxies:    proxies,
		AdminEmails:       cfg.AdminEmails,
		AllowedDiscordIDs: cfg.AllowedDiscordIDs,
		IngestRateLimit:   cfg.IngestRateLimit,
		IngestBurst:       cfg.IngestBurst,
	}
	if oauth := provider.NewDiscordOAuth(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURL, logger); oauth != nil {
		deps.OAuth = oauth
	}
	if fivem := provider.NewFiveMClient(cfg.FiveMServerIP, logger); fivem != nil {
		deps.FiveM = fivem
	}

	// Event publishing
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	if producer.Enabled() {
		infra.NewOutboxPoller(pool, repository.NewOutboxRepository(), producer, logger).
			WithBatch(cfg.OutboxPollInterval, cfg.OutboxBatchSize).
			Start(ctx)
	}

	r := app.NewRouter(deps)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr, "discord_bot", bot.Configured(), "kafka", producer.Enabled())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
