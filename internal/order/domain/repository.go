package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByExternalID(ctx context.Context, db *gorm.DB, storeID snowflake.ID, externalOrderID string) (*Order, error)
	SetCartID(ctx context.Context, db *gorm.DB, orderID, cartID snowflake.ID) error
}
