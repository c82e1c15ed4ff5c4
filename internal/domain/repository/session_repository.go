package repository

import (
	"context"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

// SessionRepository persists checkout sessions between requests.
type SessionRepository interface {
	// Load returns nil when the session does not exist or has expired.
	Load(ctx context.Context, id string) (*entity.CheckoutSession, error)
	Save(ctx context.Context, session *entity.CheckoutSession) error
}

// RefundLedgerRepository persists the advisory refund ledger per owner.
type RefundLedgerRepository interface {
	// Load returns an empty ledger when none has been saved.
	Load(ctx context.Context, owner string) (*entity.RefundLedger, error)
	Save(ctx context.Context, owner string, ledger *entity.RefundLedger) error
}
