package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	apperrors "github.com/wekeepgrowing/storefront/pkg/errors"
)

// Mount is one live payment-return flow.
type Mount struct {
	svc *Service

	mu      sync.Mutex
	session *entity.CheckoutSession
	status  entity.OrderStatus
	total   decimal.Decimal

	cancel      context.CancelFunc
	settled     chan struct{}
	captureOnce sync.Once
}

func (m *Mount) Status() entity.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Session returns a snapshot of the mounted session.
func (m *Mount) Session() *entity.CheckoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := *m.session
	return &snapshot
}

func (m *Mount) TotalPrice() decimal.Decimal {
	return m.total
}

// Settled is closed once no capture is pending: it ran, failed, was not
// needed, or was cancelled.
func (m *Mount) Settled() <-chan struct{} {
	return m.settled
}

// Wait blocks until the flow settles or ctx ends.
func (m *Mount) Wait(ctx context.Context) error {
	select {
	case <-m.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unmount cancels a pending capture. It is safe to call more than once.
func (m *Mount) Unmount() {
	m.cancel()
}

func (m *Mount) captureAfter(ctx context.Context, delay time.Duration) {
	defer close(m.settled)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		m.svc.logger.Info("Capture cancelled before settle delay",
			zap.String("order_reference", m.session.OrderReference))
		return
	case <-timer.C:
	}

	m.captureOnce.Do(func() { m.capture(ctx) })
}

// capture issues the single manual capture. Failures are logged and not retried.
func (m *Mount) capture(ctx context.Context) {
	m.mu.Lock()
	reference := m.session.OrderReference
	m.mu.Unlock()

	amount := CaptureAmount(m.total)
	logger := m.svc.logger.With(zap.String("order_reference", reference), zap.Int64("amount_value", amount))

	resp, err := m.svc.gateway.CapturePayment(ctx, reference, amount)
	if err != nil {
		apperrors.LogError(logger, err, "Manual capture failed")
		return
	}
	if resp.Aggregate == nil || resp.Aggregate.CapturedAmount.Value <= 0 {
		logger.Warn("Capture response shows nothing captured")
		return
	}

	m.mu.Lock()
	m.status = entity.OrderStatusCaptured
	m.session.VippsAggregate = resp.Aggregate
	snapshot := *m.session
	m.mu.Unlock()

	// The capture happened; keep the aggregate even if the flow was unmounted meanwhile.
	if err := m.svc.sessions.Save(context.WithoutCancel(ctx), &snapshot); err != nil {
		apperrors.LogError(logger, err, "Failed to save captured aggregate")
	}
	logger.Info("Payment captured")
}
