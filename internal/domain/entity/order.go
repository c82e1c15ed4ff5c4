package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a completed purchase stored under a user. At most one order exists
// per (user, orderReference); the check before insert is best-effort.
type Order struct {
	ID             int64           `json:"id,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	OrderReference string          `json:"orderReference"`
	BuyerName      string          `json:"buyerName"`
	PhoneNumber    string          `json:"phoneNumber"`
	Email          string          `json:"email"`
	DatePurchased  time.Time       `json:"datePurchased"`
	Items          []CartItem      `json:"items"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	PSPReference   string          `json:"pspReference,omitempty"`
	VippsAggregate *Aggregate      `json:"vippsAggregate,omitempty"`
}
