package domain

import (
	"context"
	"errors"

	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
)

var ErrMissingStoreDomain = errors.New("missing_store_domain")

// RawEvent is the loosely-structured beacon payload. The client falls back
// to form encoding when JSON transport fails, so Items, Total and Consents
// arrive either structured or as serialized strings.
type RawEvent struct {
	StoreDomain string `json:"store_domain"`
	CartToken   string `json:"cart_token"`
	SessionID   string `json:"session_id"`
	CustomerID  string `json:"customer_id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Items       any    `json:"items"`
	Total       any    `json:"total"`
	Consents    any    `json:"consents"`
	Cleared     bool   `json:"cleared"`
}

// NormalizedEvent is the output of ingestion normalization: required fields
// fail closed, optional ones fail open.
type NormalizedEvent struct {
	StoreDomain string
	Keys        cartdomain.IdentityKeys
	Items       []cartdomain.CartItem
	TotalHint   *float64
	Consents    map[string]any
	Cleared     bool
}

type Service interface {
	// Ingest normalizes a beacon payload and feeds the reconciliation
	// engine. Only a missing store or absent identifiers reject the event.
	Ingest(ctx context.Context, raw RawEvent) (cartdomain.ResolveOrCreateResponse, error)
}
