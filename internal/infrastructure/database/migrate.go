package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/storefront/internal/domain/model"
)

// Migrate creates the enum types, tables and partial indexes.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	// Create custom types BEFORE auto-migrate
	if err := createCustomTypes(db); err != nil {
		logger.Error("Failed to create custom types", zap.Error(err))
		return err
	}

	err := db.AutoMigrate(
		&model.StorefrontUser{},
		&model.StorefrontOrder{},
		&model.AdminUser{},
		&model.VippsPayment{},
		&model.VippsWebhookEvent{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes GORM tags cannot express.
func createCustomIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_vipps_webhook_events_unprocessed ON vipps_webhook_events (received_at) WHERE status IN ('pending', 'failed')`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func createCustomTypes(db *gorm.DB) error {
	var exists bool
	if err := db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vipps_webhook_status')`).Scan(&exists).Error; err != nil {
		return err
	}
	if !exists {
		if err := db.Exec(`CREATE TYPE vipps_webhook_status AS ENUM ('pending', 'completed', 'ignored', 'failed')`).Error; err != nil {
			return err
		}
	}
	return nil
}
