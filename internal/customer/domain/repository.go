package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error

	// FindMatch resolves an existing entry by external id, then email,
	// then phone. Returns nil when no identifier matches.
	FindMatch(ctx context.Context, db *gorm.DB, storeID snowflake.ID, externalID, email, phone string) (*Customer, error)

	ListByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID, page pagination.Pagination) ([]*Customer, error)
}
