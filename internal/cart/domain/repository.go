package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// FindByKeys returns distinct carts matching any supplied identifier,
	// ordered by resolution priority: cart token, then session id, then
	// customer id. Matching is scoped to storeID and the given statuses.
	FindByKeys(ctx context.Context, db *gorm.DB, storeID snowflake.ID, keys IdentityKeys, statuses []CartStatus) ([]*Cart, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Cart, error)
	Insert(ctx context.Context, db *gorm.DB, cart *Cart) error
	Update(ctx context.Context, db *gorm.DB, cart *Cart) error

	ListByStatus(ctx context.Context, db *gorm.DB, storeID snowflake.ID, status CartStatus, page pagination.Pagination) ([]*Cart, error)

	// FindIdle returns ACTIVE carts whose last activity is before cutoff.
	FindIdle(ctx context.Context, db *gorm.DB, storeID snowflake.ID, cutoff time.Time, limit int) ([]*Cart, error)
}
