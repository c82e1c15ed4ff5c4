package usecase

import (
	"context"
	"encoding/json"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/storefront/internal/domain/errors"
	"github.com/wekeepgrowing/storefront/internal/domain/provider"
	"github.com/wekeepgrowing/storefront/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/storefront/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// RefundAmount is unitPrice × quantity in minor units, rounded half up.
func RefundAmount(unitPrice decimal.Decimal, quantity int) int64 {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(hundred).Round(0).IntPart()
}

// RefundRequest refunds one item line, or the whole order when ItemName is empty.
type RefundRequest struct {
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

type RefundResult struct {
	OrderReference string          `json:"orderReference"`
	ItemName       string          `json:"itemName,omitempty"`
	Quantity       int             `json:"quantity"`
	AmountValue    int64           `json:"amountValue"`
	FullOrder      bool            `json:"fullOrder"`
	Provider       json.RawMessage `json:"provider,omitempty"`
}

// RefundItemView is an order line with the ledger's refunded count.
type RefundItemView struct {
	entity.CartItem
	Refunded  int `json:"refunded"`
	Remaining int `json:"remaining"`
}

// OrderRefundView is an order as shown in the admin refund view.
type OrderRefundView struct {
	*entity.Order
	Items         []RefundItemView `json:"items"`
	FullyRefunded bool             `json:"fullyRefunded"`
}

// RefundService issues admin refunds and keeps the advisory refund ledger.
// The ledger is keyed per customer and is never reconciled with the provider.
type RefundService struct {
	gateway  provider.PaymentGateway
	orders   repository.OrderRepository
	ledgers  repository.RefundLedgerRepository
	payments repository.PaymentRepository
	logger   *zap.Logger
}

func NewRefundService(
	gateway provider.PaymentGateway,
	orders repository.OrderRepository,
	ledgers repository.RefundLedgerRepository,
	payments repository.PaymentRepository,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		gateway:  gateway,
		orders:   orders,
		ledgers:  ledgers,
		payments: payments,
		logger:   logger,
	}
}

// Refund refunds an item line (default quantity 1) or the whole order. The
// ledger is updated only after the provider accepted the refund.
func (s *RefundService) Refund(ctx context.Context, userID, orderReference string, req RefundRequest) (*RefundResult, error) {
	order, err := s.orders.GetByReference(ctx, userID, orderReference)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NotFound("order not found")
	}

	ledger, err := s.ledgers.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &RefundResult{OrderReference: orderReference}
	if req.ItemName == "" {
		if ledger.Orders[orderReference] {
			return nil, apperrors.NewAppError(apperrors.ErrConflict, "order already refunded", domainerrors.ErrOrderAlreadyRefunded)
		}
		result.FullOrder = true
		result.Quantity = 1
		result.AmountValue = RefundAmount(order.TotalPrice, 1)
	} else {
		item, ok := lo.Find(order.Items, func(i entity.CartItem) bool { return i.Name == req.ItemName })
		if !ok {
			return nil, apperrors.NotFound("item not found on order")
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		remaining := item.Quantity - ledger.Refunded(orderReference, item.Name)
		if quantity > remaining {
			refundErr := domainerrors.NewRefundExceedsRemainingError(orderReference, item.Name, quantity, remaining)
			return nil, apperrors.NewAppError(apperrors.ErrConflict, refundErr.Error(), refundErr)
		}

		result.ItemName = item.Name
		result.Quantity = quantity
		result.AmountValue = RefundAmount(item.Price, quantity)
	}

	resp, err := s.gateway.RefundPayment(ctx, orderReference, result.AmountValue)
	if err != nil {
		s.logger.Error("Refund rejected by provider",
			zap.String("order_reference", orderReference),
			zap.Int64("amount_value", result.AmountValue),
			zap.Error(err))
		return nil, apperrors.NewAppError(apperrors.ErrInternal, "Failed to refund Vipps payment", err)
	}
	result.Provider = resp.Raw

	if result.FullOrder {
		ledger.MarkOrder(orderReference)
	} else {
		ledger.AddItem(orderReference, result.ItemName, result.Quantity)
	}
	if err := s.ledgers.Save(ctx, userID, ledger); err != nil {
		apperrors.LogError(s.logger, err, "Refund succeeded but ledger was not saved",
			zap.String("order_reference", orderReference))
	}

	if s.payments != nil {
		if _, err := s.payments.UpdateStatus(ctx, orderReference, resp.PSPReference, entity.PaymentStatusRefunded); err != nil {
			apperrors.LogError(s.logger, err, "Failed to record refunded status", zap.String("order_reference", orderReference))
		}
	}

	s.logger.Info("Refund issued",
		zap.String("user_id", userID),
		zap.String("order_reference", orderReference),
		zap.String("item_name", result.ItemName),
		zap.Int("quantity", result.Quantity),
		zap.Int64("amount_value", result.AmountValue))
	return result, nil
}

// OrderViews lists a customer's orders with refund state. Orders without a
// reference cannot be refunded and are left out.
func (s *RefundService) OrderViews(ctx context.Context, userID string) ([]OrderRefundView, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledgers.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders = lo.Filter(orders, func(o *entity.Order, _ int) bool { return o.OrderReference != "" })
	return lo.Map(orders, func(o *entity.Order, _ int) OrderRefundView {
		return OrderRefundView{
			Order: o,
			Items: lo.Map(o.Items, func(item entity.CartItem, _ int) RefundItemView {
				refunded := ledger.Refunded(o.OrderReference, item.Name)
				return RefundItemView{CartItem: item, Refunded: refunded, Remaining: max(item.Quantity-refunded, 0)}
			}),
			FullyRefunded: ledger.Orders[o.OrderReference],
		}
	}), nil
}
