package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is the per-store shopper directory entry, assembled from order
// notifications. It exists for recovery-campaign targeting, not auth.
type Customer struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID     snowflake.ID `gorm:"not null;index" json:"store_id"`
	ExternalID  string       `gorm:"index" json:"external_id,omitempty"`
	Email       string       `gorm:"index" json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	OrdersCount int          `gorm:"not null;default:0" json:"orders_count"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
