package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByExternalID(ctx context.Context, db *gorm.DB, storeID snowflake.ID, externalOrderID string) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Where("store_id = ? AND external_order_id = ?", storeID, externalOrderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) SetCartID(ctx context.Context, db *gorm.DB, orderID, cartID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("cart_id", cartID).Error
}
