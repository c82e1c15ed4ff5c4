package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/storefront/internal/config"
	"github.com/wekeepgrowing/storefront/pkg/logger"
)

// NewConnection opens the Postgres pool. Startup keeps retrying with
// exponential backoff until cfg.ConnectTimeout elapses or ctx ends.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormLog := logger.NewGormLogger(log, logger.ParseGormLevel(cfg.LogLevel), cfg.SlowThreshold, true)

	var db *gorm.DB
	connect := func() error {
		conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:                                   gormLog,
			DisableForeignKeyConstraintWhenMigrating: true,
			PrepareStmt:                              true,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to get underlying SQL database: %w", err))
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}
		db = conn
		return nil
	}

	err := backoff.RetryNotify(connect, retryPolicy(ctx, cfg.ConnectTimeout), func(err error, wait time.Duration) {
		log.Warn("Database not ready, retrying",
			zap.Error(err),
			zap.Duration("retry_in", wait))
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log.Info("Database connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return db, nil
}

// retryPolicy is shared by the startup connections. A zero maxElapsed tries once.
func retryPolicy(ctx context.Context, maxElapsed time.Duration) backoff.BackOffContext {
	if maxElapsed <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = maxElapsed
	return backoff.WithContext(b, ctx)
}

// Close closes the database connection
func Close(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	log.Info("Database connection closed")
	return nil
}
