package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/datatypes"
)

// WebhookStatus represents the processing status of a webhook
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusCompleted WebhookStatus = "completed"
	WebhookStatusIgnored   WebhookStatus = "ignored"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// VippsWebhookEvent is one received notification. EventKey is a digest of the
// body so redelivery of the same notification is stored once.
type VippsWebhookEvent struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EventKey    string         `gorm:"unique;not null;size:64" json:"event_key"`
	EventType   string         `gorm:"not null;size:100;index" json:"event_type"`
	Reference   string         `gorm:"size:64;index" json:"reference"`
	Status      WebhookStatus  `gorm:"type:vipps_webhook_status;default:'pending';index" json:"status"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	Attempts    int            `gorm:"default:1" json:"attempts"`
	LastError   *string        `json:"last_error,omitempty"`
	ReceivedAt  time.Time      `gorm:"default:now()" json:"received_at"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (VippsWebhookEvent) TableName() string {
	return "vipps_webhook_events"
}
