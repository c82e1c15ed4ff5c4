package entity

import "time"

// User is a storefront customer keyed by lower-cased email.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	OrderCount int64     `json:"orderCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Role    string
}

const RoleAdmin = "admin"

// AdminUser is an operator allowed into the refund view.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
}
