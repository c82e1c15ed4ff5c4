package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wekeepgrowing/storefront/internal/domain/model"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
)

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookRepository creates a new webhook event repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) repository.WebhookEventRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
	}
}

// Save stores a webhook event; duplicates bump the attempt counter instead.
func (r *webhookRepository) Save(ctx context.Context, eventKey, eventType, reference string, payload []byte) (bool, error) {
	event := &model.VippsWebhookEvent{
		EventKey:   eventKey,
		EventType:  eventType,
		Reference:  reference,
		Status:     model.WebhookStatusPending,
		Payload:    datatypes.JSON(payload),
		Attempts:   1,
		ReceivedAt: time.Now(),
	}

	// Use ON CONFLICT to handle duplicate events
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_key", eventKey),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		err := r.db.WithContext(ctx).
			Model(&model.VippsWebhookEvent{}).
			Where("event_key = ?", eventKey).
			UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
		if err != nil {
			r.logger.Warn("Failed to count duplicate webhook delivery",
				zap.String("event_key", eventKey),
				zap.Error(err))
		}
		return false, nil
	}
	return true, nil
}

func (r *webhookRepository) MarkProcessed(ctx context.Context, eventKey string) error {
	now := time.Now()
	return r.mark(ctx, eventKey, map[string]interface{}{
		"status":       model.WebhookStatusCompleted,
		"processed_at": &now,
		"last_error":   nil,
	})
}

func (r *webhookRepository) MarkIgnored(ctx context.Context, eventKey, reason string) error {
	now := time.Now()
	return r.mark(ctx, eventKey, map[string]interface{}{
		"status":       model.WebhookStatusIgnored,
		"processed_at": &now,
		"last_error":   reason,
	})
}

func (r *webhookRepository) MarkFailed(ctx context.Context, eventKey string, processErr error) error {
	return r.mark(ctx, eventKey, map[string]interface{}{
		"status":     model.WebhookStatusFailed,
		"last_error": processErr.Error(),
	})
}

func (r *webhookRepository) mark(ctx context.Context, eventKey string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.VippsWebhookEvent{}).
		Where("event_key = ?", eventKey).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("Failed to update webhook event",
			zap.String("event_key", eventKey),
			zap.Any("status", updates["status"]),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update webhook event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventKey)
	}
	return nil
}
