package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/internal/store/domain"
	"github.com/smallbiznis/rescart/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("store.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Connect(ctx context.Context, req domain.ConnectStoreRequest) (domain.Store, error) {
	storeDomain := normalizeDomain(req.Domain)
	if storeDomain == "" {
		return domain.Store{}, domain.ErrInvalidDomain
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		return domain.Store{}, domain.ErrInvalidPlatform
	}

	now := time.Now().UTC()
	store := domain.Store{
		ID:          s.genID.Generate(),
		Domain:      storeDomain,
		Platform:    platform,
		Name:        strings.TrimSpace(req.Name),
		AccessToken: req.AccessToken,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &store); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Store{}, domain.ErrDomainExists
		}
		return domain.Store{}, err
	}
	return store, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Store, error) {
	storeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || storeID == 0 {
		return domain.Store{}, domain.ErrNotFound
	}
	store, err := s.repo.FindByID(ctx, s.db, storeID)
	if err != nil {
		return domain.Store{}, err
	}
	if store == nil {
		return domain.Store{}, domain.ErrNotFound
	}
	return *store, nil
}

func (s *Service) GetByDomain(ctx context.Context, storeDomain string) (domain.Store, error) {
	storeDomain = normalizeDomain(storeDomain)
	if storeDomain == "" {
		return domain.Store{}, domain.ErrInvalidDomain
	}
	store, err := s.repo.FindByDomain(ctx, s.db, storeDomain)
	if err != nil {
		return domain.Store{}, err
	}
	if store == nil {
		return domain.Store{}, domain.ErrNotFound
	}
	return *store, nil
}

func (s *Service) ListByPlatform(ctx context.Context, platform string) ([]domain.Store, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		return nil, domain.ErrInvalidPlatform
	}
	items, err := s.repo.ListByPlatform(ctx, s.db, platform)
	if err != nil {
		return nil, err
	}
	stores := make([]domain.Store, 0, len(items))
	for _, item := range items {
		stores = append(stores, *item)
	}
	return stores, nil
}

func (s *Service) Teardown(ctx context.Context, id string) error {
	store, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("tearing down store",
		zap.String("store_id", store.ID.String()),
		zap.String("domain", store.Domain),
	)
	return s.repo.Teardown(ctx, s.db, store.ID)
}

func normalizeDomain(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.TrimPrefix(value, "https://")
	value = strings.TrimPrefix(value, "http://")
	return strings.TrimSuffix(value, "/")
}
