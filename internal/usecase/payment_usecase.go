package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/provider"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/storefront/pkg/errors"
)

// PaymentUsecase forwards payment operations to the gateway and keeps the
// local status record and checkout session in step. Local bookkeeping failures
// are logged and never fail the provider call.
type PaymentUsecase struct {
	gateway     provider.PaymentGateway
	paymentRepo repository.PaymentRepository
	sessions    repository.SessionRepository
	currency    string
	logger      *zap.Logger
}

func NewPaymentUsecase(
	gateway provider.PaymentGateway,
	paymentRepo repository.PaymentRepository,
	sessions repository.SessionRepository,
	currency string,
	logger *zap.Logger,
) *PaymentUsecase {
	if currency == "" {
		currency = "NOK"
	}
	return &PaymentUsecase{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		sessions:    sessions,
		currency:    currency,
		logger:      logger,
	}
}

// CreatePayment starts a payment. When sessionID is set, the provider's
// pspReference and aggregate are saved on that checkout session.
func (u *PaymentUsecase) CreatePayment(ctx context.Context, sessionID string, req *provider.CreatePaymentRequest) (*provider.CreatePaymentResponse, error) {
	resp, err := u.gateway.CreatePayment(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = u.paymentRepo.Upsert(ctx, &entity.Payment{
		Reference:    req.Reference,
		PSPReference: resp.PSPReference,
		AmountValue:  req.AmountValue,
		Currency:     u.currency,
		Status:       entity.PaymentStatusCreated,
		Description:  req.PaymentDescription,
		PhoneNumber:  req.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		apperrors.LogError(u.logger, err, "Failed to record created payment",
			zap.String("reference", req.Reference))
	}

	if sessionID != "" {
		u.attachToSession(ctx, sessionID, req, resp)
	}

	u.logger.Info("Payment created",
		zap.String("reference", req.Reference),
		zap.Int64("amount_value", req.AmountValue),
		zap.Bool("has_session", sessionID != ""))

	return resp, nil
}

func (u *PaymentUsecase) attachToSession(ctx context.Context, sessionID string, req *provider.CreatePaymentRequest, resp *provider.CreatePaymentResponse) {
	session, err := u.sessions.Load(ctx, sessionID)
	if err != nil {
		apperrors.LogError(u.logger, err, "Failed to load checkout session", zap.String("session_id", sessionID))
		return
	}
	if session == nil {
		session = &entity.CheckoutSession{ID: sessionID}
	}

	if session.OrderReference == "" {
		session.OrderReference = req.Reference
	}
	if session.PhoneNumber == "" {
		session.PhoneNumber = req.PhoneNumber
	}
	if resp.PSPReference != "" {
		session.PSPReference = resp.PSPReference
	}
	if resp.Aggregate != nil {
		session.VippsAggregate = resp.Aggregate
	}

	if err := u.sessions.Save(ctx, session); err != nil {
		apperrors.LogError(u.logger, err, "Failed to save checkout session", zap.String("session_id", sessionID))
	}
}

// CapturePayment captures amountValue minor units and returns the provider response.
func (u *PaymentUsecase) CapturePayment(ctx context.Context, reference string, amountValue int64) (*provider.ModificationResponse, error) {
	resp, err := u.gateway.CapturePayment(ctx, reference, amountValue)
	if err != nil {
		return nil, err
	}
	u.recordStatus(ctx, reference, resp.PSPReference, entity.PaymentStatusCaptured)
	return resp, nil
}

// RefundPayment refunds amountValue minor units and returns the provider response.
func (u *PaymentUsecase) RefundPayment(ctx context.Context, reference string, amountValue int64, reason string) (*provider.ModificationResponse, error) {
	resp, err := u.gateway.RefundPayment(ctx, reference, amountValue)
	if err != nil {
		return nil, err
	}
	u.logger.Info("Payment refunded",
		zap.String("reference", reference),
		zap.Int64("amount_value", amountValue),
		zap.String("reason", reason))
	u.recordStatus(ctx, reference, resp.PSPReference, entity.PaymentStatusRefunded)
	return resp, nil
}

// GetPayment returns the locally recorded status of a reference.
func (u *PaymentUsecase) GetPayment(ctx context.Context, reference string) (*entity.Payment, error) {
	payment, err := u.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperrors.NotFound("payment not found")
	}
	return payment, nil
}

// ListPayments returns recorded payments, newest first.
func (u *PaymentUsecase) ListPayments(ctx context.Context, params entity.PaginationParams) (*entity.PaginatedPayments, error) {
	params.Normalize()

	payments, total, err := u.paymentRepo.List(ctx, params.Limit, params.Offset())
	if err != nil {
		return nil, err
	}
	return &entity.PaginatedPayments{
		Data:       payments,
		Pagination: entity.NewPaginationMeta(params.Page, params.Limit, total),
	}, nil
}

func (u *PaymentUsecase) recordStatus(ctx context.Context, reference, pspReference string, status entity.PaymentStatus) {
	if _, err := u.paymentRepo.UpdateStatus(ctx, reference, pspReference, status); err != nil {
		apperrors.LogError(u.logger, err, "Failed to record payment status",
			zap.String("reference", reference),
			zap.String("status", string(status)))
	}
}
