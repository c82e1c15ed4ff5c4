package repository

import (
	"context"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

type PaymentRepository interface {
	// Upsert records a payment, replacing amount and status when the reference exists.
	Upsert(ctx context.Context, payment *entity.Payment) error
	// UpdateStatus sets the status of a reference and reports whether anything changed.
	// Setting the current status again is a no-op. Unknown references are inserted.
	UpdateStatus(ctx context.Context, reference, pspReference string, status entity.PaymentStatus) (bool, error)
	GetByReference(ctx context.Context, reference string) (*entity.Payment, error)
	// List returns payments newest first.
	List(ctx context.Context, limit, offset int) ([]*entity.Payment, int64, error)
}

// WebhookEventRepository stores received notifications with duplicate suppression.
type WebhookEventRepository interface {
	// Save stores the event and reports false when the key was already stored.
	Save(ctx context.Context, eventKey, eventType, reference string, payload []byte) (bool, error)
	MarkProcessed(ctx context.Context, eventKey string) error
	MarkIgnored(ctx context.Context, eventKey, reason string) error
	MarkFailed(ctx context.Context, eventKey string, err error) error
}
