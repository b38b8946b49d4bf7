package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/odessarp/dashboard/internal/infra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	direction := flag.String("direction", "up", "migration direction: up, down, version")
	steps := flag.Int("steps", 0, "number of steps for down (0 rolls back everything)")
	flag.Parse()

	if err := run(logger, *direction, *steps); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, direction string, steps int) error {
	if _, err := infra.LoadDotEnv(); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if direction == "up" {
		return infra.RunMigrations(cfg.DSN(), logger)
	}

	m, err := infra.NewMigrator(cfg.DSN())
	if err != nil {
		return err
	}
	defer m.Close()

	switch direction {
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
	case "version":
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", err)
	}
	logger.Info("migration state", "direction", direction, "version", version, "dirty", dirty)
	return nil
}
