package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	customerdomain "github.com/smallbiznis/rescart/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/rescart/internal/observability/metrics"
	"github.com/smallbiznis/rescart/internal/order/domain"
	storedomain "github.com/smallbiznis/rescart/internal/store/domain"
	"github.com/smallbiznis/rescart/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	StoreSvc    storedomain.Service
	CartSvc     cartdomain.Service
	CustomerSvc customerdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	storeSvc    storedomain.Service
	cartSvc     cartdomain.Service
	customerSvc customerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		storeSvc:    p.StoreSvc,
		cartSvc:     p.CartSvc,
		customerSvc: p.CustomerSvc,
	}
}

func (s *Service) Reconcile(ctx context.Context, event domain.OrderCreatedEvent) (domain.ReconcileResult, error) {
	externalOrderID := strings.TrimSpace(event.ExternalOrderID)
	if externalOrderID == "" {
		return domain.ReconcileResult{}, domain.ErrMissingOrderID
	}

	store, err := s.resolveStore(ctx, event)
	if err != nil {
		return domain.ReconcileResult{}, err
	}

	order, recorded, err := s.recordOrder(ctx, store.ID, externalOrderID, event)
	if err != nil {
		return domain.ReconcileResult{}, err
	}
	result := domain.ReconcileResult{OrderID: order.ID}

	if !recorded && order.CartID != nil {
		// Redelivery of an order already linked to its cart; the first
		// delivery's outcome stands.
		cartID := *order.CartID
		result.CartID = &cartID
		return result, nil
	}

	if recorded {
		s.recordContact(ctx, store.ID, event)
	}

	keys := cartdomain.IdentityKeys{
		CartToken:  event.CartToken,
		CustomerID: event.Customer.ID,
		Email:      event.Customer.Email,
		Phone:      event.Customer.Phone,
	}.Normalize()
	if keys.Empty() {
		obsmetrics.ObserveOrderReconcile("no_identifiers")
		return result, nil
	}

	cart, err := s.cartSvc.ResolveOpen(ctx, store.ID, keys)
	if err != nil {
		return domain.ReconcileResult{}, err
	}
	if cart == nil {
		// Order recorded without a tracked cart; nothing to close out.
		obsmetrics.ObserveOrderReconcile("unmatched")
		return result, nil
	}

	converted, err := s.cartSvc.MarkConverted(ctx, cart.ID, externalOrderID)
	if err != nil {
		if errors.Is(err, cartdomain.ErrInvalidTransition) {
			s.log.Warn("cart not convertible for order",
				zap.String("cart_id", cart.ID.String()),
				zap.String("external_order_id", externalOrderID),
			)
			obsmetrics.ObserveOrderReconcile("unmatched")
			return result, nil
		}
		return domain.ReconcileResult{}, err
	}

	if order.CartID == nil {
		if err := s.repo.SetCartID(ctx, s.db, order.ID, converted.ID); err != nil {
			return domain.ReconcileResult{}, err
		}
	}

	obsmetrics.ObserveOrderReconcile("converted")
	cartID := converted.ID
	result.CartID = &cartID
	return result, nil
}

// resolveStore looks the store up by domain; when that fails and exactly one
// store is registered for the platform, the event is routed there. Degraded
// mode: logged, risks misattribution in multi-tenant deployments.
func (s *Service) resolveStore(ctx context.Context, event domain.OrderCreatedEvent) (storedomain.Store, error) {
	store, err := s.storeSvc.GetByDomain(ctx, event.StoreDomain)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, storedomain.ErrNotFound) && !errors.Is(err, storedomain.ErrInvalidDomain) {
		return storedomain.Store{}, err
	}

	platform := strings.ToLower(strings.TrimSpace(event.Platform))
	if platform == "" {
		return storedomain.Store{}, storedomain.ErrNotFound
	}
	stores, err := s.storeSvc.ListByPlatform(ctx, platform)
	if err != nil {
		return storedomain.Store{}, err
	}
	if len(stores) != 1 {
		return storedomain.Store{}, storedomain.ErrNotFound
	}

	s.log.Warn("order store resolved by platform fallback",
		zap.String("payload_domain", event.StoreDomain),
		zap.String("platform", platform),
		zap.String("store_id", stores[0].ID.String()),
	)
	return stores[0], nil
}

// recordContact keeps the shopper directory current. Directory failures are
// logged, never fatal: the order record and cart lifecycle already succeeded.
func (s *Service) recordContact(ctx context.Context, storeID snowflake.ID, event domain.OrderCreatedEvent) {
	if s.customerSvc == nil {
		return
	}
	_, err := s.customerSvc.RecordOrderContact(ctx, storeID, customerdomain.OrderContact{
		ExternalID: event.Customer.ID,
		Email:      event.Customer.Email,
		Phone:      event.Customer.Phone,
	})
	if err != nil && !errors.Is(err, customerdomain.ErrNoContact) {
		s.log.Warn("customer directory update failed",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) recordOrder(ctx context.Context, storeID snowflake.ID, externalOrderID string, event domain.OrderCreatedEvent) (*domain.Order, bool, error) {
	order := &domain.Order{
		ID:              s.genID.Generate(),
		StoreID:         storeID,
		ExternalOrderID: externalOrderID,
		CustomerID:      strings.TrimSpace(event.Customer.ID),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(event.Customer.Email)),
		CustomerPhone:   strings.TrimSpace(event.Customer.Phone),
		CartToken:       strings.TrimSpace(event.CartToken),
		Total:           event.Total,
		LineItems:       datatypes.JSONSlice[cartdomain.CartItem](event.LineItems),
		CreatedAt:       time.Now().UTC(),
	}
	if order.LineItems == nil {
		order.LineItems = datatypes.JSONSlice[cartdomain.CartItem]{}
	}

	err := s.repo.Insert(ctx, s.db, order)
	if err == nil {
		return order, true, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return nil, false, err
	}

	// At-least-once delivery; reuse the existing record.
	existing, err := s.repo.FindByExternalID(ctx, s.db, storeID, externalOrderID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return order, true, nil
	}
	obsmetrics.ObserveOrderReconcile("duplicate")
	return existing, false, nil
}
