package entity

import "time"

// Amount is a monetary value in minor units (øre).
type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// Aggregate is the provider's running totals for a payment. It is treated as a
// last-write-wins snapshot and never computed locally.
type Aggregate struct {
	AuthorizedAmount Amount `json:"authorizedAmount"`
	CapturedAmount   Amount `json:"capturedAmount"`
	CancelledAmount  Amount `json:"cancelledAmount"`
	RefundedAmount   Amount `json:"refundedAmount"`
}

// PaymentStatus is the last status reported for a payment reference.
type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "created"
	PaymentStatusAborted    PaymentStatus = "aborted"
	PaymentStatusExpired    PaymentStatus = "expired"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusTerminated PaymentStatus = "terminated"
)

// OrderStatus is the customer-facing state of the payment-return flow.
type OrderStatus string

const (
	OrderStatusPaymentInProgress OrderStatus = "payment_in_progress"
	OrderStatusReserved          OrderStatus = "reserved"
	OrderStatusCaptured          OrderStatus = "captured"
)

// Payment is the locally tracked status of one payment reference.
type Payment struct {
	Reference    string        `json:"reference"`
	PSPReference string        `json:"pspReference,omitempty"`
	AmountValue  int64         `json:"amountValue"`
	Currency     string        `json:"currency"`
	Status       PaymentStatus `json:"status"`
	Description  string        `json:"description,omitempty"`
	PhoneNumber  string        `json:"phoneNumber,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
