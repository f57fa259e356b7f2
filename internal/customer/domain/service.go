package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
)

var (
	ErrInvalidStore = errors.New("invalid_store")
	ErrNoContact    = errors.New("no_contact_identifiers")
)

// OrderContact is the shopper identity carried on an order notification.
type OrderContact struct {
	ExternalID string
	Email      string
	Phone      string
}

type ListCustomersRequest struct {
	StoreID   snowflake.ID
	PageToken string
	PageSize  int
}

type ListCustomersResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Service interface {
	// RecordOrderContact upserts the directory entry for a newly recorded
	// order and bumps its order count.
	RecordOrderContact(ctx context.Context, storeID snowflake.ID, contact OrderContact) (Customer, error)

	List(ctx context.Context, req ListCustomersRequest) (ListCustomersResponse, error)
}
