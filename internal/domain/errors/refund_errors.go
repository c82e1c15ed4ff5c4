package errors

import (
	"errors"
	"fmt"
)

// ErrOrderAlreadyRefunded is returned when a full-order refund is repeated.
var ErrOrderAlreadyRefunded = errors.New("order already refunded")

// RefundExceedsRemainingError is returned when an item refund asks for more
// units than are left after earlier refunds.
type RefundExceedsRemainingError struct {
	OrderReference string
	ItemName       string
	Requested      int
	Remaining      int
}

func (e *RefundExceedsRemainingError) Error() string {
	return fmt.Sprintf("cannot refund %d x %s on order %s: %d remaining",
		e.Requested, e.ItemName, e.OrderReference, e.Remaining)
}

// NewRefundExceedsRemainingError creates a new RefundExceedsRemainingError
func NewRefundExceedsRemainingError(orderReference, itemName string, requested, remaining int) *RefundExceedsRemainingError {
	return &RefundExceedsRemainingError{
		OrderReference: orderReference,
		ItemName:       itemName,
		Requested:      requested,
		Remaining:      remaining,
	}
}
