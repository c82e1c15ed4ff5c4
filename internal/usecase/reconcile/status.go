// Package reconcile runs the payment-return flow: derive the order status from
// the provider aggregate, stamp timed tickets, capture reserved payments that
// were not auto-captured, and persist the order once per buyer.
package reconcile

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// DeriveStatus maps an aggregate to the order status. A nil aggregate means
// the payment is still in progress.
func DeriveStatus(agg *entity.Aggregate) entity.OrderStatus {
	switch {
	case agg == nil:
		return entity.OrderStatusPaymentInProgress
	case agg.CapturedAmount.Value > 0:
		return entity.OrderStatusCaptured
	case agg.AuthorizedAmount.Value > 0:
		return entity.OrderStatusReserved
	default:
		return entity.OrderStatusPaymentInProgress
	}
}

// NeedsManualCapture reports whether a reserved payment must be captured by us.
func NeedsManualCapture(agg *entity.Aggregate, reference string, total decimal.Decimal) bool {
	return agg != nil &&
		agg.CapturedAmount.Value == 0 &&
		agg.AuthorizedAmount.Value > 0 &&
		reference != "" &&
		total.IsPositive()
}

// CaptureAmount converts a kroner total to minor units, rounding half up.
func CaptureAmount(total decimal.Decimal) int64 {
	return total.Mul(hundred).Round(0).IntPart()
}

// StampTickets returns a copy of items where timed-entry tickets carry the
// order reference and purchase time. Other items are unchanged.
func StampTickets(items []entity.CartItem, orderReference string, at time.Time) []entity.CartItem {
	return lo.Map(items, func(item entity.CartItem, _ int) entity.CartItem {
		if !item.IsTimedTicket() {
			return item
		}
		stamped := item
		stamped.OrderReference = orderReference
		purchased := at
		stamped.DatePurchased = &purchased
		return stamped
	})
}
