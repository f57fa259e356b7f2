package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rescart/internal/cart/domain"
	"github.com/smallbiznis/rescart/internal/clock"
	obsmetrics "github.com/smallbiznis/rescart/internal/observability/metrics"
	"github.com/smallbiznis/rescart/pkg/db"
	"github.com/smallbiznis/rescart/pkg/db/pagination"
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
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("cart.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// wrapStoreErr classifies persistence-layer deadline failures as transient.
// The caller may retry the whole event; resolution is idempotent.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	return err
}

func (s *Service) ResolveOrCreate(ctx context.Context, event domain.ActivityEvent) (domain.ResolveOrCreateResponse, error) {
	if event.StoreID == 0 {
		return domain.ResolveOrCreateResponse{}, domain.ErrInvalidStore
	}
	keys := event.Keys.Normalize()
	if keys.Empty() {
		return domain.ResolveOrCreateResponse{}, domain.ErrNoIdentifiers
	}

	resp, err := s.resolveOrCreate(ctx, event, keys)
	if db.IsDuplicateKeyErr(err) {
		// Lost a concurrent first insert for this identity; the winning
		// row is committed by now and resolves as an update.
		resp, err = s.resolveOrCreate(ctx, event, keys)
	}
	if err != nil {
		return domain.ResolveOrCreateResponse{}, wrapStoreErr(err)
	}
	if resp.Merged {
		obsmetrics.ObserveReconcile("merged")
	}
	return resp, nil
}

func (s *Service) resolveOrCreate(ctx context.Context, event domain.ActivityEvent, keys domain.IdentityKeys) (domain.ResolveOrCreateResponse, error) {
	var resp domain.ResolveOrCreateResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		matches, err := s.repo.FindByKeys(ctx, tx, event.StoreID, keys, []domain.CartStatus{domain.StatusActive})
		if err != nil {
			return err
		}

		var cart *domain.Cart
		switch {
		case len(matches) == 0:
			// No active cart; a matching abandoned cart reactivates in place.
			abandoned, err := s.repo.FindByKeys(ctx, tx, event.StoreID, keys, []domain.CartStatus{domain.StatusAbandoned})
			if err != nil {
				return err
			}
			if len(abandoned) > 0 {
				cart = abandoned[0]
				if err := cart.Transition(domain.StatusActive); err != nil {
					return err
				}
				delete(cart.Metadata, domain.MetaMergedInto)
			}
		case len(matches) == 1:
			cart = matches[0]
		default:
			cart, err = s.mergeConflicting(ctx, tx, matches)
			if err != nil {
				return err
			}
			resp.Merged = true
		}

		if cart == nil {
			created, err := s.createCart(ctx, tx, event, keys)
			if err != nil {
				return err
			}
			resp.Cart = *created
			resp.Created = true
			obsmetrics.ObserveReconcile("created")
			return nil
		}

		if err := s.applyActivity(ctx, tx, cart, event, keys); err != nil {
			return err
		}
		resp.Cart = *cart
		obsmetrics.ObserveReconcile("updated")
		return nil
	})
	if err != nil {
		return domain.ResolveOrCreateResponse{}, err
	}
	return resp, nil
}

// mergeConflicting collapses carts matched through different identity keys.
// The most recently active cart survives; the others are abandoned with a
// merge marker so no shopper ever holds two active carts.
func (s *Service) mergeConflicting(ctx context.Context, tx *gorm.DB, matches []*domain.Cart) (*domain.Cart, error) {
	survivor := matches[0]
	for _, m := range matches[1:] {
		if m.LastActivityAt.After(survivor.LastActivityAt) {
			survivor = m
		}
	}

	for _, loser := range matches {
		if loser.ID == survivor.ID {
			continue
		}
		domain.FromCart(loser).ApplyTo(survivor)
		if len(survivor.Items) == 0 && len(loser.Items) > 0 {
			survivor.Items = loser.Items
			survivor.Subtotal = loser.Subtotal
		}
		// A platform cart token belongs to exactly one open cart.
		if loser.CartToken != "" && loser.CartToken == survivor.CartToken {
			loser.CartToken = ""
		}

		if err := loser.Transition(domain.StatusAbandoned); err != nil {
			return nil, err
		}
		if loser.Metadata == nil {
			loser.Metadata = datatypes.JSONMap{}
		}
		loser.Metadata[domain.MetaMergedInto] = survivor.ID.String()
		if err := s.repo.Update(ctx, tx, loser); err != nil {
			return nil, err
		}

		s.log.Warn("identity conflict merged",
			zap.String("surviving_cart_id", survivor.ID.String()),
			zap.String("abandoned_cart_id", loser.ID.String()),
		)
	}
	return survivor, nil
}

func (s *Service) createCart(ctx context.Context, tx *gorm.DB, event domain.ActivityEvent, keys domain.IdentityKeys) (*domain.Cart, error) {
	now := s.clock.Now()
	cart := &domain.Cart{
		ID:             s.genID.Generate(),
		StoreID:        event.StoreID,
		Status:         domain.StatusActive,
		Items:          datatypes.JSONSlice[domain.CartItem]{},
		Metadata:       datatypes.JSONMap{},
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	keys.ApplyTo(cart)
	applyContent(cart, event)
	applyConsents(cart, event.Consents)

	if event.Cleared {
		if err := cart.Transition(domain.StatusAbandoned); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Insert(ctx, tx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) applyActivity(ctx context.Context, tx *gorm.DB, cart *domain.Cart, event domain.ActivityEvent, keys domain.IdentityKeys) error {
	keys.ApplyTo(cart)
	applyContent(cart, event)
	applyConsents(cart, event.Consents)
	cart.LastActivityAt = s.clock.Now()

	if event.Cleared && cart.Status == domain.StatusActive {
		if err := cart.Transition(domain.StatusAbandoned); err != nil {
			return err
		}
	}
	return s.repo.Update(ctx, tx, cart)
}

// applyContent replaces items wholesale when the event carries them. The
// subtotal prefers an explicit numeric total, else is recomputed from items.
func applyContent(cart *domain.Cart, event domain.ActivityEvent) {
	if event.Items != nil {
		cart.Items = datatypes.JSONSlice[domain.CartItem](event.Items)
		if event.TotalHint != nil {
			cart.Subtotal = *event.TotalHint
		} else {
			cart.Subtotal = domain.ComputeSubtotal(event.Items)
		}
		return
	}
	if event.TotalHint != nil {
		cart.Subtotal = *event.TotalHint
	}
}

func applyConsents(cart *domain.Cart, consents map[string]any) {
	if len(consents) == 0 {
		return
	}
	if cart.Metadata == nil {
		cart.Metadata = datatypes.JSONMap{}
	}
	existing, _ := cart.Metadata[domain.MetaConsents].(map[string]any)
	if existing == nil {
		existing = map[string]any{}
	}
	for k, v := range consents {
		existing[k] = v
	}
	cart.Metadata[domain.MetaConsents] = existing
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Cart, error) {
	cartID, err := s.parseID(id)
	if err != nil {
		return domain.Cart{}, err
	}
	cart, err := s.repo.FindByID(ctx, s.db, cartID)
	if err != nil {
		return domain.Cart{}, wrapStoreErr(err)
	}
	if cart == nil {
		return domain.Cart{}, domain.ErrNotFound
	}
	return *cart, nil
}

func (s *Service) ListAbandoned(ctx context.Context, req domain.ListAbandonedRequest) (domain.ListAbandonedResponse, error) {
	if req.StoreID == 0 {
		return domain.ListAbandonedResponse{}, domain.ErrInvalidStore
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListByStatus(ctx, s.db, req.StoreID, domain.StatusAbandoned, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListAbandonedResponse{}, wrapStoreErr(err)
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(cart *domain.Cart) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        cart.ID.String(),
			UpdatedAt: cart.UpdatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	carts := make([]domain.Cart, 0, len(items))
	for _, item := range items {
		carts = append(carts, *item)
	}

	resp := domain.ListAbandonedResponse{Carts: carts}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) RecordCheckout(ctx context.Context, cartID string, checkoutRef string) (domain.Cart, error) {
	id, err := s.parseID(cartID)
	if err != nil {
		return domain.Cart{}, err
	}

	var result domain.Cart
	err = s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrNotFound
		}
		if err := s.checkout(ctx, tx, cart, checkoutRef); err != nil {
			return err
		}
		result = *cart
		return nil
	})
	return result, wrapStoreErr(err)
}

func (s *Service) RecordCheckoutEvent(ctx context.Context, event domain.CheckoutEvent) (domain.Cart, error) {
	if event.StoreID == 0 {
		return domain.Cart{}, domain.ErrInvalidStore
	}
	keys := event.Keys.Normalize()
	if keys.Empty() {
		return domain.Cart{}, domain.ErrNoIdentifiers
	}

	var result domain.Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		matches, err := s.repo.FindByKeys(ctx, tx, event.StoreID, keys,
			[]domain.CartStatus{domain.StatusActive, domain.StatusAbandoned, domain.StatusCheckoutCreated})
		if err != nil {
			return err
		}

		var cart *domain.Cart
		if len(matches) > 0 {
			cart = matches[0]
		} else {
			// A checkout can be the first observed activity for an identity.
			cart, err = s.createCart(ctx, tx, domain.ActivityEvent{
				StoreID: event.StoreID,
				Keys:    keys,
				Items:   event.Items,
			}, keys)
			if err != nil {
				return err
			}
		}

		if event.Items != nil {
			cart.Items = datatypes.JSONSlice[domain.CartItem](event.Items)
			cart.Subtotal = domain.ComputeSubtotal(event.Items)
		}
		if err := s.checkout(ctx, tx, cart, event.CheckoutRef); err != nil {
			return err
		}
		result = *cart
		return nil
	})
	return result, wrapStoreErr(err)
}

func (s *Service) checkout(ctx context.Context, tx *gorm.DB, cart *domain.Cart, checkoutRef string) error {
	if cart.Status != domain.StatusCheckoutCreated {
		if err := cart.Transition(domain.StatusCheckoutCreated); err != nil {
			return err
		}
	}
	if cart.Metadata == nil {
		cart.Metadata = datatypes.JSONMap{}
	}
	if checkoutRef = strings.TrimSpace(checkoutRef); checkoutRef != "" {
		cart.Metadata[domain.MetaCheckoutRef] = checkoutRef
	}
	cart.LastActivityAt = s.clock.Now()
	return s.repo.Update(ctx, tx, cart)
}

func (s *Service) ResolveOpen(ctx context.Context, storeID snowflake.ID, keys domain.IdentityKeys) (*domain.Cart, error) {
	if storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	keys = keys.Normalize()
	if keys.Empty() {
		return nil, domain.ErrNoIdentifiers
	}
	matches, err := s.repo.FindByKeys(ctx, s.db, storeID, keys,
		[]domain.CartStatus{domain.StatusActive, domain.StatusCheckoutCreated})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (s *Service) MarkConverted(ctx context.Context, cartID snowflake.ID, externalOrderID string) (domain.Cart, error) {
	externalOrderID = strings.TrimSpace(externalOrderID)
	if externalOrderID == "" {
		return domain.Cart{}, domain.ErrInvalidID
	}

	var result domain.Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.repo.FindByID(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return domain.ErrNotFound
		}

		// Redelivered order notification; nothing to do.
		if cart.ExternalOrderID() == externalOrderID {
			result = *cart
			return nil
		}

		if err := cart.Transition(domain.StatusConverted); err != nil {
			return err
		}
		if cart.Metadata == nil {
			cart.Metadata = datatypes.JSONMap{}
		}
		cart.Metadata[domain.MetaExternalOrderID] = externalOrderID
		cart.LastActivityAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, cart); err != nil {
			return err
		}
		result = *cart
		obsmetrics.ObserveReconcile("converted")
		return nil
	})
	return result, wrapStoreErr(err)
}

func (s *Service) CloseIdle(ctx context.Context, storeID snowflake.ID, threshold time.Duration, limit int) (int64, error) {
	if storeID == 0 {
		return 0, domain.ErrInvalidStore
	}
	if threshold <= 0 {
		return 0, domain.ErrInvalidID
	}

	cutoff := s.clock.Now().Add(-threshold)
	var closed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		carts, err := s.repo.FindIdle(ctx, tx, storeID, cutoff, limit)
		if err != nil {
			return err
		}
		for _, cart := range carts {
			if err := cart.Transition(domain.StatusAbandoned); err != nil {
				return err
			}
			if err := s.repo.Update(ctx, tx, cart); err != nil {
				return err
			}
			closed++
		}
		return nil
	})
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	obsmetrics.ObserveIdleSweep(closed)
	return closed, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
