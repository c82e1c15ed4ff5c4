package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/event"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
	"github.com/wekeepgrowing/storefront/pkg/messaging"
)

// StatusChannel is the pub/sub channel payment status changes are published on.
const StatusChannel = "payments.status"

// StatusChanged is published when a webhook moves a payment to a new status.
type StatusChanged struct {
	Reference    string               `json:"reference"`
	PSPReference string               `json:"pspReference,omitempty"`
	Status       entity.PaymentStatus `json:"status"`
	EventType    string               `json:"eventType"`
	Amount       *entity.Amount       `json:"amount,omitempty"`
	OccurredAt   time.Time            `json:"occurredAt"`
}

// WebhookService applies provider notifications. Delivery is at-least-once and
// unordered; applying the same status twice changes nothing.
type WebhookService struct {
	paymentRepo repository.PaymentRepository
	events      repository.WebhookEventRepository
	publisher   messaging.Publisher
	logger      *zap.Logger
}

var _ event.Handler = (*WebhookService)(nil)

// NewWebhookService creates the webhook processor. events and publisher may be nil.
func NewWebhookService(
	paymentRepo repository.PaymentRepository,
	events repository.WebhookEventRepository,
	publisher messaging.Publisher,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		paymentRepo: paymentRepo,
		events:      events,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handle stores and applies one notification body. Malformed bodies and
// unknown event types are reported as errors for logging only.
func (s *WebhookService) Handle(ctx context.Context, body []byte) error {
	key := eventKey(body)
	kind, env, parseErr := event.Parse(body)

	if env != nil && s.events != nil {
		inserted, err := s.events.Save(ctx, key, env.Type, env.Data.Reference, body)
		if err != nil {
			s.logger.Error("Failed to store webhook event", zap.String("event_key", key), zap.Error(err))
		} else if !inserted {
			s.logger.Info("Webhook redelivered",
				zap.String("event_key", key),
				zap.String("event_type", env.Type),
				zap.String("reference", env.Data.Reference))
		}
	}

	if parseErr != nil {
		if errors.Is(parseErr, event.ErrUnknownType) {
			s.logger.Warn("Ignoring unknown webhook event", zap.String("event_type", env.Type))
			s.mark(ctx, key, func() error { return s.events.MarkIgnored(ctx, key, parseErr.Error()) })
		}
		return parseErr
	}

	if err := event.Dispatch(ctx, s, kind); err != nil {
		s.mark(ctx, key, func() error { return s.events.MarkFailed(ctx, key, err) })
		return err
	}

	s.mark(ctx, key, func() error { return s.events.MarkProcessed(ctx, key) })
	return nil
}

func (s *WebhookService) OnCreated(ctx context.Context, e event.Created) error {
	return s.applyStatus(ctx, e)
}

func (s *WebhookService) OnAborted(ctx context.Context, e event.Aborted) error {
	return s.applyStatus(ctx, e)
}

func (s *WebhookService) OnExpired(ctx context.Context, e event.Expired) error {
	return s.applyStatus(ctx, e)
}

func (s *WebhookService) OnCancelled(ctx context.Context, e event.Cancelled) error {
	return s.applyStatus(ctx, e)
}

func (s *WebhookService) OnCaptured(ctx context.Context, e event.Captured) error {
	return s.applyStatus(ctx, e)
}

func (s *WebhookService) OnRefunded(ctx context.Context, e event.Refunded) error {
	return s.applyStatus(ctx, e)
}

func (s *WebhookService) OnAuthorized(ctx context.Context, e event.Authorized) error {
	return s.applyStatus(ctx, e)
}

func (s *WebhookService) OnTerminated(ctx context.Context, e event.Terminated) error {
	return s.applyStatus(ctx, e)
}

func (s *WebhookService) applyStatus(ctx context.Context, k event.Kind) error {
	meta := k.Info()
	status := k.Status()

	if meta.Reference == "" {
		s.logger.Warn("Webhook event without reference", zap.String("event_type", meta.Type))
		return nil
	}

	changed, err := s.paymentRepo.UpdateStatus(ctx, meta.Reference, meta.PSPReference, status)
	if err != nil {
		return err
	}

	if !changed {
		s.logger.Debug("Payment status unchanged",
			zap.String("reference", meta.Reference),
			zap.String("status", string(status)))
		return nil
	}

	s.logger.Info("Payment status updated",
		zap.String("reference", meta.Reference),
		zap.String("status", string(status)))

	if s.publisher != nil {
		msg := StatusChanged{
			Reference:    meta.Reference,
			PSPReference: meta.PSPReference,
			Status:       status,
			EventType:    meta.Type,
			Amount:       meta.Amount,
			OccurredAt:   time.Now(),
		}
		if err := s.publisher.Publish(ctx, StatusChannel, msg); err != nil {
			s.logger.Warn("Failed to publish payment status", zap.String("reference", meta.Reference), zap.Error(err))
		}
	}
	return nil
}

func (s *WebhookService) mark(ctx context.Context, key string, fn func() error) {
	if s.events == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Warn("Failed to update webhook event state", zap.String("event_key", key), zap.Error(err))
	}
}

func eventKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
