package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/odessarp/dashboard/internal/infra"
	"github.com/odessarp/dashboard/internal/repository"
)

// outbox-consumer relays event_outbox rows to Kafka from its own process, for
// deployments where the API runs with KAFKA_ENABLED=false.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := infra.LoadDotEnv(); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, true, logger)
	defer producer.Close()

	infra.NewOutboxPoller(pool, repository.NewOutboxRepository(), producer, logger).
		WithBatch(cfg.OutboxPollInterval, cfg.OutboxBatchSize).
		Start(ctx)

	<-ctx.Done()
	logger.Info("outbox-consumer shutting down")
	return nil
}
