package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/internal/store/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).Create(store).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Store, error) {
	var store domain.Store
	err := db.WithContext(ctx).Where("id = ?", id).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (r *repo) FindByDomain(ctx context.Context, db *gorm.DB, storeDomain string) (*domain.Store, error) {
	var store domain.Store
	err := db.WithContext(ctx).Where("domain = ?", strings.ToLower(storeDomain)).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (r *repo) ListByPlatform(ctx context.Context, db *gorm.DB, platform string) ([]*domain.Store, error) {
	var stores []*domain.Store
	err := db.WithContext(ctx).
		Where("platform = ?", platform).
		Order("created_at asc").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]*domain.Store, error) {
	var stores []*domain.Store
	err := db.WithContext(ctx).Order("created_at asc").Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// Teardown encodes the deletion order as an invariant of this operation
// rather than relying on caller sequencing. The catalog and connection
// tables are owned by the platform sync but cleaned up here.
func (r *repo) Teardown(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statements := []string{
			`DELETE FROM carts WHERE store_id = ?`,
			`DELETE FROM orders WHERE store_id = ?`,
			`DELETE FROM customers WHERE store_id = ?`,
			`DELETE FROM variants WHERE store_id = ?`,
			`DELETE FROM products WHERE store_id = ?`,
			`DELETE FROM store_connections WHERE store_id = ?`,
			`DELETE FROM stores WHERE id = ?`,
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
