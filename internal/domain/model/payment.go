package model

import "time"

// VippsPayment tracks the last known status of a payment reference.
type VippsPayment struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Reference    string    `gorm:"unique;not null;size:64"`
	PSPReference string    `gorm:"column:psp_reference;size:100"`
	AmountValue  int64     `gorm:"not null;default:0"`
	Currency     string    `gorm:"size:3;default:'NOK'"`
	Status       string    `gorm:"size:20;not null;index"`
	Description  string    `gorm:"size:100"`
	PhoneNumber  string    `gorm:"size:20"`
	CreatedAt    time.Time `gorm:"default:now();index"`
	UpdatedAt    time.Time `gorm:"default:now()"`
}

// TableName specifies the table name for GORM
func (VippsPayment) TableName() string {
	return "vipps_payments"
}
