package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/adapter/repository"
	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/provider"
	"github.com/wekeepgrowing/storefront/internal/usecase"
	apperrors "github.com/wekeepgrowing/storefront/pkg/errors"
)

func TestRefundAmount(t *testing.T) {
	tests := []struct {
		price string
		qty   int
		want  int64
	}{
		{"150.00", 2, 30000},
		{"0.125", 1, 13},
		{"250.50", 1, 25050},
		{"99.99", 3, 29997},
		{"0.005", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.RefundAmount(decimal.RequireFromString(tt.price), tt.qty))
		})
	}
}

type refundFixture struct {
	gateway  *MockGateway
	ledgers  *repository.MemoryRefundLedgerRepository
	payments *fakePayments
	svc      *usecase.RefundService
}

func newRefundFixture() *refundFixture {
	orders := &fakeOrders{orders: []*entity.Order{
		{
			UserID:         "ola@example.com",
			OrderReference: "ord-1",
			TotalPrice:     decimal.RequireFromString("250.50"),
			Items: []entity.CartItem{
				{Name: "Playland ticket", Price: decimal.RequireFromString("150.00"), Quantity: 2},
				{Name: "Juice", Price: decimal.RequireFromString("0.125"), Quantity: 1},
			},
		},
		{UserID: "ola@example.com", OrderReference: ""},
	}}
	f := &refundFixture{
		gateway:  &MockGateway{},
		ledgers:  repository.NewMemoryRefundLedgerRepository(),
		payments: newFakePayments(),
	}
	f.svc = usecase.NewRefundService(f.gateway, orders, f.ledgers, f.payments, zap.NewNop())
	return f
}

func okRefund() *provider.ModificationResponse {
	return &provider.ModificationResponse{Reference: "ord-1", PSPReference: "psp-1", Raw: json.RawMessage(`{"reference":"ord-1"}`)}
}

func TestRefundService_ItemRefund(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	f.gateway.On("RefundPayment", mock.Anything, "ord-1", int64(30000)).Return(okRefund(), nil).Once()

	res, err := f.svc.Refund(ctx, "ola@example.com", "ord-1", usecase.RefundRequest{ItemName: "Playland ticket", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), res.AmountValue)
	assert.False(t, res.FullOrder)
	assert.JSONEq(t, `{"reference":"ord-1"}`, string(res.Provider))

	ledger, _ := f.ledgers.Load(ctx, "ola@example.com")
	assert.Equal(t, 2, ledger.Refunded("ord-1", "Playland ticket"))

	p, _ := f.payments.GetByReference(ctx, "ord-1")
	require.NotNil(t, p)
	assert.Equal(t, entity.PaymentStatusRefunded, p.Status)
	f.gateway.AssertExpectations(t)
}

func TestRefundService_DefaultQuantityAndHalfUp(t *testing.T) {
	f := newRefundFixture()
	f.gateway.On("RefundPayment", mock.Anything, "ord-1", int64(13)).Return(okRefund(), nil).Once()

	res, err := f.svc.Refund(context.Background(), "ola@example.com", "ord-1", usecase.RefundRequest{ItemName: "Juice"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Quantity)
	assert.Equal(t, int64(13), res.AmountValue)
}

func TestRefundService_FullOrder(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	f.gateway.On("RefundPayment", mock.Anything, "ord-1", int64(25050)).Return(okRefund(), nil).Once()

	res, err := f.svc.Refund(ctx, "ola@example.com", "ord-1", usecase.RefundRequest{})
	require.NoError(t, err)
	assert.True(t, res.FullOrder)
	assert.Equal(t, int64(25050), res.AmountValue)

	_, err = f.svc.Refund(ctx, "ola@example.com", "ord-1", usecase.RefundRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
	f.gateway.AssertNumberOfCalls(t, "RefundPayment", 1)
}

func TestRefundService_ExceedsRemaining(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	f.gateway.On("RefundPayment", mock.Anything, "ord-1", int64(15000)).Return(okRefund(), nil).Once()

	_, err := f.svc.Refund(ctx, "ola@example.com", "ord-1", usecase.RefundRequest{ItemName: "Playland ticket", Quantity: 1})
	require.NoError(t, err)

	_, err = f.svc.Refund(ctx, "ola@example.com", "ord-1", usecase.RefundRequest{ItemName: "Playland ticket", Quantity: 2})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
	f.gateway.AssertExpectations(t)
}

func TestRefundService_ProviderFailureLeavesLedger(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()
	f.gateway.On("RefundPayment", mock.Anything, "ord-1", int64(30000)).
		Return(nil, &provider.ProviderError{Code: provider.ErrCodeAPI, Message: "rejected", StatusCode: 400}).Once()

	_, err := f.svc.Refund(ctx, "ola@example.com", "ord-1", usecase.RefundRequest{ItemName: "Playland ticket", Quantity: 2})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Failed to refund Vipps payment", appErr.Message())

	ledger, _ := f.ledgers.Load(ctx, "ola@example.com")
	assert.Zero(t, ledger.Refunded("ord-1", "Playland ticket"))
}

func TestRefundService_NotFound(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()

	_, err := f.svc.Refund(ctx, "ola@example.com", "missing", usecase.RefundRequest{})
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	_, err = f.svc.Refund(ctx, "ola@example.com", "ord-1", usecase.RefundRequest{ItemName: "Popcorn"})
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
	f.gateway.AssertNotCalled(t, "RefundPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundService_OrderViews(t *testing.T) {
	f := newRefundFixture()
	ctx := context.Background()

	ledger := entity.NewRefundLedger()
	ledger.AddItem("ord-1", "Playland ticket", 1)
	require.NoError(t, f.ledgers.Save(ctx, "ola@example.com", ledger))

	views, err := f.svc.OrderViews(ctx, "ola@example.com")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "ord-1", views[0].OrderReference)
	assert.False(t, views[0].FullyRefunded)
	require.Len(t, views[0].Items, 2)
	assert.Equal(t, 1, views[0].Items[0].Refunded)
	assert.Equal(t, 1, views[0].Items[0].Remaining)
	assert.Equal(t, 1, views[0].Items[1].Remaining)
}
