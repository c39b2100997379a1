package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"jobportal/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// InitDB connects to the database, waits for it to accept connections,
// applies migrations and confirms the schema is healthy
func InitDB(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Starting database initialization",
		zap.String("environment", cfg.Server.Environment))

	var manager *Manager
	connect := func() error {
		m, err := NewManager(&cfg.Database, logger)
		if err != nil {
			return err
		}
		manager = m
		return nil
	}

	if err := retryWithBackoff(connect, cfg.Database.ConnectTimeout, logger, "connect"); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
	logger.Info("Using migrations path", zap.String("path", migrationsPath))

	migrateOp := func() error { return manager.Migrate(migrationsPath) }
	if err := retryWithBackoff(migrateOp, cfg.Database.ConnectTimeout, logger, "migrate"); err != nil {
		manager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health := manager.Health(ctx)
	if health.Status == StatusUnhealthy {
		manager.Close()
		return nil, fmt.Errorf("database is unhealthy after migrations: %v", health.Errors)
	}

	stats := manager.Stats()
	logger.Info("Database initialized",
		zap.String("status", health.Status),
		zap.Duration("response_time", health.ResponseTime),
		zap.Int("max_open_connections", stats.MaxOpenConnections),
	)

	return manager, nil
}

func retryWithBackoff(op func() error, maxElapsed time.Duration, logger *zap.Logger, step string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	if maxElapsed > 0 {
		b.MaxElapsedTime = maxElapsed
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("Database not ready, retrying",
			zap.String("step", step),
			zap.Error(err),
			zap.Duration("retry_in", wait),
		)
	}

	return backoff.RetryNotify(op, b, notify)
}

func determineMigrationsPath(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	for _, path := range []string{"./migrations", "../migrations", "../../migrations"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./migrations"
}
