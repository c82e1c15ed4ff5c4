package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	categoryPlay = "lek"
	typeTicket   = "ticket"
)

// CartItem is one line of the basket. Price is per unit in kroner.
type CartItem struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Category  string          `json:"category,omitempty"`
	Type      string          `json:"type,omitempty"`
	// Duration is the ticket validity in minutes.
	Duration int `json:"duration,omitempty"`

	// Set on timed-entry tickets when the payment returns.
	OrderReference string     `json:"orderReference,omitempty"`
	DatePurchased  *time.Time `json:"datePurchased,omitempty"`
}

// IsTimedTicket reports whether the item is a timed play-area entry.
func (i CartItem) IsTimedTicket() bool {
	return i.Category == categoryPlay && i.Type == typeTicket
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums price × quantity over all items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Tickets returns the timed-entry tickets in the cart.
func Tickets(items []CartItem) []CartItem {
	var tickets []CartItem
	for _, item := range items {
		if item.IsTimedTicket() {
			tickets = append(tickets, item)
		}
	}
	return tickets
}
