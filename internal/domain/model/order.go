package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

// StorefrontUser is a customer document, keyed by lower-cased email.
type StorefrontUser struct {
	ID        string    `gorm:"primaryKey;size:320"`
	Email     string    `gorm:"size:320;not null"`
	Name      string    `gorm:"size:200"`
	CreatedAt time.Time `gorm:"default:now();index"`
	UpdatedAt time.Time `gorm:"default:now()"`
}

// TableName specifies the table name for GORM
func (StorefrontUser) TableName() string {
	return "storefront_users"
}

// StorefrontOrder is an order stored under a user. (user_id, order_reference)
// is indexed but not unique; duplicates are prevented by a check before insert.
type StorefrontOrder struct {
	ID             int64                                 `gorm:"primaryKey;autoIncrement"`
	UserID         string                                `gorm:"size:320;not null;index:idx_storefront_orders_user_reference,priority:1"`
	OrderReference string                                `gorm:"size:64;index:idx_storefront_orders_user_reference,priority:2"`
	BuyerName      string                                `gorm:"size:200"`
	PhoneNumber    string                                `gorm:"size:20"`
	Email          string                                `gorm:"size:320"`
	DatePurchased  time.Time                             `gorm:"not null"`
	Items          datatypes.JSONType[[]entity.CartItem] `gorm:"type:jsonb;not null"`
	TotalPrice     decimal.Decimal                       `gorm:"type:decimal(12,2);not null"`
	PSPReference   string                                `gorm:"column:psp_reference;size:100"`
	VippsAggregate datatypes.JSONType[*entity.Aggregate] `gorm:"type:jsonb;not null"`
	CreatedAt      time.Time                             `gorm:"default:now()"`
}

// TableName specifies the table name for GORM
func (StorefrontOrder) TableName() string {
	return "storefront_orders"
}

// AdminUser is an operator account.
type AdminUser struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"unique;not null;size:100"`
	PasswordHash string    `gorm:"not null;size:100"`
	CreatedAt    time.Time `gorm:"default:now()"`
	UpdatedAt    time.Time `gorm:"default:now()"`
}

// TableName specifies the table name for GORM
func (AdminUser) TableName() string {
	return "admin_users"
}
