package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type CartStatus string

const (
	StatusActive          CartStatus = "ACTIVE"
	StatusAbandoned       CartStatus = "ABANDONED"
	StatusCheckoutCreated CartStatus = "CHECKOUT_CREATED"
	StatusConverted       CartStatus = "CONVERTED"
)

// Metadata keys written by the reconciliation engine.
const (
	MetaMergedInto      = "merged_into"
	MetaExternalOrderID = "external_order_id"
	MetaCheckoutRef     = "external_checkout_ref"
	MetaConsents        = "consents"
)

type CartItem struct {
	SKU      string  `json:"sku"`
	Title    string  `json:"title,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Cart struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;index" json:"store_id"`
	Status  CartStatus   `gorm:"not null;index" json:"status"`

	// Items are replaced wholesale on every update, never patched.
	Items    datatypes.JSONSlice[CartItem] `gorm:"not null;default:'[]'" json:"items"`
	Subtotal float64                       `gorm:"not null;default:0" json:"subtotal"`

	CartToken     string `gorm:"index" json:"cart_token,omitempty"`
	SessionID     string `gorm:"index" json:"session_id,omitempty"`
	CustomerID    string `gorm:"index" json:"customer_id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`

	Metadata datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata,omitempty"`

	LastActivityAt time.Time `gorm:"not null;index" json:"last_activity_at"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Subtotal of items: missing price counts as 0, missing quantity as 1.
func ComputeSubtotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		total += item.Price * float64(qty)
	}
	return total
}

// ExternalOrderID returns the order reference recorded at conversion, if any.
func (c *Cart) ExternalOrderID() string {
	if c.Metadata == nil {
		return ""
	}
	if v, ok := c.Metadata[MetaExternalOrderID].(string); ok {
		return v
	}
	return ""
}
