package entity

// RefundLedger is the advisory record of what the admin has refunded. It is
// never reconciled against the provider's refundedAmount.
type RefundLedger struct {
	// Items maps "<orderReference>_<itemName>" to the cumulative refunded quantity.
	Items map[string]int `json:"refundedItems"`
	// Orders holds references refunded in full.
	Orders map[string]bool `json:"refundedOrders"`
}

func NewRefundLedger() *RefundLedger {
	return &RefundLedger{Items: map[string]int{}, Orders: map[string]bool{}}
}

func LedgerKey(orderReference, itemName string) string {
	return orderReference + "_" + itemName
}

func (l *RefundLedger) Refunded(orderReference, itemName string) int {
	return l.Items[LedgerKey(orderReference, itemName)]
}

func (l *RefundLedger) AddItem(orderReference, itemName string, quantity int) {
	if l.Items == nil {
		l.Items = map[string]int{}
	}
	l.Items[LedgerKey(orderReference, itemName)] += quantity
}

func (l *RefundLedger) MarkOrder(orderReference string) {
	if l.Orders == nil {
		l.Orders = map[string]bool{}
	}
	l.Orders[orderReference] = true
}
