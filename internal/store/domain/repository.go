package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, store *Store) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Store, error)
	FindByDomain(ctx context.Context, db *gorm.DB, domain string) (*Store, error)
	ListByPlatform(ctx context.Context, db *gorm.DB, platform string) ([]*Store, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]*Store, error)

	// Teardown deletes the store and every dependent row in referential
	// order inside one transaction.
	Teardown(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
