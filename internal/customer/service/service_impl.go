package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/internal/customer/domain"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) RecordOrderContact(ctx context.Context, storeID snowflake.ID, contact domain.OrderContact) (domain.Customer, error) {
	if storeID == 0 {
		return domain.Customer{}, domain.ErrInvalidStore
	}

	externalID := strings.TrimSpace(contact.ExternalID)
	email := strings.ToLower(strings.TrimSpace(contact.Email))
	phone := strings.TrimSpace(contact.Phone)
	if externalID == "" && email == "" && phone == "" {
		return domain.Customer{}, domain.ErrNoContact
	}

	var result domain.Customer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindMatch(ctx, tx, storeID, externalID, email, phone)
		if err != nil {
			return err
		}

		if existing == nil {
			now := time.Now().UTC()
			customer := &domain.Customer{
				ID:          s.genID.Generate(),
				StoreID:     storeID,
				ExternalID:  externalID,
				Email:       email,
				Phone:       phone,
				OrdersCount: 1,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.repo.Insert(ctx, tx, customer); err != nil {
				return err
			}
			result = *customer
			return nil
		}

		// Fill identifiers the directory has not seen yet; never overwrite.
		if existing.ExternalID == "" {
			existing.ExternalID = externalID
		}
		if existing.Email == "" {
			existing.Email = email
		}
		if existing.Phone == "" {
			existing.Phone = phone
		}
		existing.OrdersCount++
		if err := s.repo.Update(ctx, tx, existing); err != nil {
			return err
		}
		result = *existing
		return nil
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomersRequest) (domain.ListCustomersResponse, error) {
	if req.StoreID == 0 {
		return domain.ListCustomersResponse{}, domain.ErrInvalidStore
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListByStore(ctx, s.db, req.StoreID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListCustomersResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			UpdatedAt: customer.UpdatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		customers = append(customers, *item)
	}

	resp := domain.ListCustomersResponse{Customers: customers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
