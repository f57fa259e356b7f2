package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/internal/cart/domain"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// lockRows applies a row lock on dialects that support SELECT ... FOR UPDATE.
// SQLite serializes writers on its own.
func lockRows(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repo) FindByKeys(ctx context.Context, db *gorm.DB, storeID snowflake.ID, keys domain.IdentityKeys, statuses []domain.CartStatus) ([]*domain.Cart, error) {
	type match struct {
		column string
		value  string
	}
	// Resolution priority: cart token, session id, customer id.
	candidates := []match{
		{"cart_token", keys.CartToken},
		{"session_id", keys.SessionID},
		{"customer_id", keys.CustomerID},
	}

	seen := map[snowflake.ID]bool{}
	var carts []*domain.Cart
	for _, m := range candidates {
		if m.value == "" {
			continue
		}
		var rows []*domain.Cart
		err := lockRows(db.WithContext(ctx)).
			Where("store_id = ? AND status IN ? AND "+m.column+" = ?", storeID, statuses, m.value).
			Order("last_activity_at desc").
			Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if seen[row.ID] {
				continue
			}
			seen[row.ID] = true
			carts = append(carts, row)
		}
	}
	return carts, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Cart, error) {
	var cart domain.Cart
	err := db.WithContext(ctx).Where("id = ?", id).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cart *domain.Cart) error {
	return db.WithContext(ctx).Create(cart).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(cart).Error
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, storeID snowflake.ID, status domain.CartStatus, page pagination.Pagination) ([]*domain.Cart, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Cart{}).
		Where("store_id = ? AND status = ?", storeID, status)

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

	var carts []*domain.Cart
	err := stmt.
		Order("updated_at desc, id desc").
		Limit(limit + 1).
		Find(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

func (r *repo) FindIdle(ctx context.Context, db *gorm.DB, storeID snowflake.ID, cutoff time.Time, limit int) ([]*domain.Cart, error) {
	var carts []*domain.Cart
	stmt := lockRows(db.WithContext(ctx)).
		Where("store_id = ? AND status = ? AND last_activity_at < ?", storeID, domain.StatusActive, cutoff).
		Order("last_activity_at asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}
