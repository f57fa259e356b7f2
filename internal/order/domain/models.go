package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	"gorm.io/datatypes"
)

// Order is the independent record of a received order-created notification.
// It is written whether or not a tracked cart resolves.
type Order struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID         snowflake.ID `gorm:"not null;index;uniqueIndex:ux_orders_store_external" json:"store_id"`
	ExternalOrderID string       `gorm:"not null;uniqueIndex:ux_orders_store_external" json:"external_order_id"`

	CartID *snowflake.ID `gorm:"index" json:"cart_id,omitempty"`

	CustomerID    string `json:"customer_id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CartToken     string `json:"cart_token,omitempty"`

	Total     float64                                  `gorm:"not null;default:0" json:"total"`
	LineItems datatypes.JSONSlice[cartdomain.CartItem] `gorm:"not null;default:'[]'" json:"line_items"`
	CreatedAt time.Time                                `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
