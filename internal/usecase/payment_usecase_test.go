package usecase_test

import (
	"context"
	"errors"
	"testing"

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

func createRequest() *provider.CreatePaymentRequest {
	return &provider.CreatePaymentRequest{
		AmountValue:        30000,
		PhoneNumber:        "4791234567",
		Reference:          "ord-1001",
		ReturnURL:          "https://shop.example.com/payment-return",
		PaymentDescription: "Playland tickets",
	}
}

func TestPaymentUsecase_CreateAttachesToSession(t *testing.T) {
	gateway := &MockGateway{}
	payments := newFakePayments()
	sessions := repository.NewMemorySessionRepository(0)
	uc := usecase.NewPaymentUsecase(gateway, payments, sessions, "", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, &entity.CheckoutSession{ID: "sess-1", BuyerName: "Ola"}))

	agg := &entity.Aggregate{AuthorizedAmount: entity.Amount{Value: 0, Currency: "NOK"}}
	gateway.On("CreatePayment", mock.Anything, mock.Anything).Return(&provider.CreatePaymentResponse{
		URL:          "https://pay.vipps.no/x",
		Reference:    "ord-1001",
		PSPReference: "psp-1",
		Aggregate:    agg,
	}, nil).Once()

	resp, err := uc.CreatePayment(ctx, "sess-1", createRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.vipps.no/x", resp.URL)

	session, err := sessions.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "psp-1", session.PSPReference)
	assert.Equal(t, "ord-1001", session.OrderReference)
	assert.Equal(t, "4791234567", session.PhoneNumber)
	assert.Equal(t, "Ola", session.BuyerName)
	assert.NotNil(t, session.VippsAggregate)

	p, err := uc.GetPayment(ctx, "ord-1001")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCreated, p.Status)
	assert.Equal(t, "NOK", p.Currency)
}

func TestPaymentUsecase_CreateWithoutSession(t *testing.T) {
	gateway := &MockGateway{}
	sessions := repository.NewMemorySessionRepository(0)
	uc := usecase.NewPaymentUsecase(gateway, newFakePayments(), sessions, "NOK", zap.NewNop())
	gateway.On("CreatePayment", mock.Anything, mock.Anything).
		Return(&provider.CreatePaymentResponse{URL: "https://pay.vipps.no/x", PSPReference: "psp-1"}, nil).Once()

	_, err := uc.CreatePayment(context.Background(), "", createRequest())
	require.NoError(t, err)
}

func TestPaymentUsecase_CreateProviderError(t *testing.T) {
	gateway := &MockGateway{}
	payments := newFakePayments()
	uc := usecase.NewPaymentUsecase(gateway, payments, repository.NewMemorySessionRepository(0), "NOK", zap.NewNop())
	gateway.On("CreatePayment", mock.Anything, mock.Anything).Return(nil, provider.ErrPaymentTokenNotFound).Once()

	_, err := uc.CreatePayment(context.Background(), "sess-1", createRequest())
	assert.True(t, errors.Is(err, provider.ErrPaymentTokenNotFound))
	assert.Empty(t, payments.payments)
}

func TestPaymentUsecase_CaptureAndRefundRecordStatus(t *testing.T) {
	gateway := &MockGateway{}
	payments := newFakePayments()
	uc := usecase.NewPaymentUsecase(gateway, payments, repository.NewMemorySessionRepository(0), "NOK", zap.NewNop())
	ctx := context.Background()

	gateway.On("CapturePayment", mock.Anything, "ord-1", int64(1000)).
		Return(&provider.ModificationResponse{Reference: "ord-1", PSPReference: "psp-1"}, nil).Once()
	gateway.On("RefundPayment", mock.Anything, "ord-1", int64(500)).
		Return(&provider.ModificationResponse{Reference: "ord-1", PSPReference: "psp-1"}, nil).Once()

	_, err := uc.CapturePayment(ctx, "ord-1", 1000)
	require.NoError(t, err)
	p, _ := uc.GetPayment(ctx, "ord-1")
	assert.Equal(t, entity.PaymentStatusCaptured, p.Status)

	_, err = uc.RefundPayment(ctx, "ord-1", 500, "customer request")
	require.NoError(t, err)
	p, _ = uc.GetPayment(ctx, "ord-1")
	assert.Equal(t, entity.PaymentStatusRefunded, p.Status)
	gateway.AssertExpectations(t)
}

func TestPaymentUsecase_GetAndList(t *testing.T) {
	payments := newFakePayments()
	uc := usecase.NewPaymentUsecase(&MockGateway{}, payments, repository.NewMemorySessionRepository(0), "NOK", zap.NewNop())
	ctx := context.Background()

	_, err := uc.GetPayment(ctx, "missing")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	for _, ref := range []string{"a", "b", "c"} {
		require.NoError(t, payments.Upsert(ctx, &entity.Payment{Reference: ref, Status: entity.PaymentStatusCreated}))
	}
	page, err := uc.ListPayments(ctx, entity.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
}
