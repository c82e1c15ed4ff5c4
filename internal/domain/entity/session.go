package entity

import "time"

// CheckoutSession holds the buyer's pre-payment state between the redirect to
// Vipps and the return to the storefront.
type CheckoutSession struct {
	ID             string     `json:"id"`
	OrderReference string     `json:"orderReference"`
	PhoneNumber    string     `json:"phoneNumber"`
	BuyerName      string     `json:"buyerName"`
	Email          string     `json:"email"`
	CartItems      []CartItem `json:"cartItems"`
	PSPReference   string     `json:"pspReference,omitempty"`
	VippsAggregate *Aggregate `json:"vippsAggregate,omitempty"`
	// Orders is the buyer's local order history, newest first.
	Orders    []Order   `json:"orders,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasOrder reports whether the local history already holds the reference.
func (s *CheckoutSession) HasOrder(reference string) bool {
	for _, o := range s.Orders {
		if o.OrderReference == reference {
			return true
		}
	}
	return false
}
