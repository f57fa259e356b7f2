package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
)

var (
	ErrNoIdentifiers     = errors.New("no_identifiers")
	ErrInvalidStore      = errors.New("invalid_store")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("cart_not_found")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrTransientStore    = errors.New("transient_store_error")
)

// ActivityEvent is a normalized capture/cart-API event. Items nil means the
// event carried no item payload; a non-nil empty slice clears the cart.
type ActivityEvent struct {
	StoreID   snowflake.ID
	Keys      IdentityKeys
	Items     []CartItem
	TotalHint *float64
	Consents  map[string]any
	Cleared   bool
}

type ResolveOrCreateResponse struct {
	Cart    Cart `json:"cart"`
	Created bool `json:"created"`
	Merged  bool `json:"merged"`
}

type CheckoutEvent struct {
	StoreID     snowflake.ID
	Keys        IdentityKeys
	Items       []CartItem
	CheckoutRef string
}

type ListAbandonedRequest struct {
	StoreID   snowflake.ID
	PageToken string
	PageSize  int
}

type ListAbandonedResponse struct {
	pagination.PageInfo
	Carts []Cart `json:"carts"`
}

type Service interface {
	// ResolveOrCreate matches the event to at most one existing cart,
	// merges identity and content, and advances the lifecycle. The
	// resolve-merge-write sequence is atomic per identity.
	ResolveOrCreate(ctx context.Context, event ActivityEvent) (ResolveOrCreateResponse, error)

	GetByID(ctx context.Context, id string) (Cart, error)
	ListAbandoned(ctx context.Context, req ListAbandonedRequest) (ListAbandonedResponse, error)

	RecordCheckout(ctx context.Context, cartID string, checkoutRef string) (Cart, error)
	RecordCheckoutEvent(ctx context.Context, event CheckoutEvent) (Cart, error)

	// ResolveOpen finds a cart in ACTIVE or CHECKOUT_CREATED for the keys.
	ResolveOpen(ctx context.Context, storeID snowflake.ID, keys IdentityKeys) (*Cart, error)

	// MarkConverted closes out the cart for an external order. Reprocessing
	// the same order id is a no-op.
	MarkConverted(ctx context.Context, cartID snowflake.ID, externalOrderID string) (Cart, error)

	// CloseIdle abandons up to limit ACTIVE carts idle longer than
	// threshold. A limit of zero or less closes every idle cart.
	CloseIdle(ctx context.Context, storeID snowflake.ID, threshold time.Duration, limit int) (int64, error)
}
