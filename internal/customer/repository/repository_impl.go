package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/internal/customer/domain"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(customer).Error
}

func (r *repo) FindMatch(ctx context.Context, db *gorm.DB, storeID snowflake.ID, externalID, email, phone string) (*domain.Customer, error) {
	type match struct {
		column string
		value  string
	}
	candidates := []match{
		{"external_id", externalID},
		{"email", email},
		{"phone", phone},
	}

	for _, m := range candidates {
		if m.value == "" {
			continue
		}
		var customer domain.Customer
		err := db.WithContext(ctx).
			Where("store_id = ? AND "+m.column+" = ?", storeID, m.value).
			First(&customer).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		return &customer, nil
	}
	return nil, nil
}

func (r *repo) ListByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID, page pagination.Pagination) ([]*domain.Customer, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("store_id = ?", storeID)

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil && cursor.UpdatedAt != "" {
			if ts, perr := time.Parse(time.RFC3339Nano, cursor.UpdatedAt); perr == nil {
				stmt = stmt.Where("updated_at < ?", ts)
			}
		}
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 50
	}

	var customers []*domain.Customer
	err := stmt.
		Order("updated_at desc, id desc").
		Limit(limit + 1).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
