package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
)

var ErrMissingOrderID = errors.New("missing_order_id")

type OrderCustomer struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// OrderCreatedEvent arrives from the platform's asynchronous notification
// channel: at-least-once, possibly duplicated, possibly before or after the
// cart activity it belongs to.
type OrderCreatedEvent struct {
	ExternalOrderID string                `json:"external_order_id"`
	StoreDomain     string                `json:"store_domain,omitempty"`
	Platform        string                `json:"platform,omitempty"`
	Customer        OrderCustomer         `json:"customer"`
	CartToken       string                `json:"cart_token,omitempty"`
	LineItems       []cartdomain.CartItem `json:"line_items,omitempty"`
	Total           float64               `json:"total,omitempty"`
}

type ReconcileResult struct {
	CartID  *snowflake.ID `json:"cart_id,omitempty"`
	OrderID snowflake.ID  `json:"order_id"`
}

type Service interface {
	// Reconcile records the order and, when a tracked cart resolves,
	// closes out its lifecycle. Reprocessing the same external order id
	// is a no-op; an unmatched order is not an error.
	Reconcile(ctx context.Context, event OrderCreatedEvent) (ReconcileResult, error)
}
