package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	cartrepository "github.com/smallbiznis/rescart/internal/cart/repository"
	cartservice "github.com/smallbiznis/rescart/internal/cart/service"
	"github.com/smallbiznis/rescart/internal/clock"
	customerdomain "github.com/smallbiznis/rescart/internal/customer/domain"
	customerrepository "github.com/smallbiznis/rescart/internal/customer/repository"
	customerservice "github.com/smallbiznis/rescart/internal/customer/service"
	"github.com/smallbiznis/rescart/internal/order/domain"
	"github.com/smallbiznis/rescart/internal/order/repository"
	storedomain "github.com/smallbiznis/rescart/internal/store/domain"
	storerepository "github.com/smallbiznis/rescart/internal/store/repository"
	storeservice "github.com/smallbiznis/rescart/internal/store/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	orderSvc    domain.Service
	cartSvc     cartdomain.Service
	storeSvc    storedomain.Service
	customerSvc customerdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&storedomain.Store{},
		&cartdomain.Cart{},
		&customerdomain.Customer{},
		&domain.Order{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	storeSvc := storeservice.New(storeservice.Params{
		DB: db, Log: logger, GenID: node, Repo: storerepository.Provide(),
	})
	cartSvc := cartservice.New(cartservice.Params{
		DB: db, Log: logger, GenID: node, Clock: clk, Repo: cartrepository.Provide(),
	})
	customerSvc := customerservice.New(customerservice.Params{
		DB: db, Log: logger, GenID: node, Repo: customerrepository.Provide(),
	})
	orderSvc := New(Params{
		DB: db, Log: logger, GenID: node,
		Repo: repository.Provide(), StoreSvc: storeSvc, CartSvc: cartSvc, CustomerSvc: customerSvc,
	})

	return &fixture{db: db, orderSvc: orderSvc, cartSvc: cartSvc, storeSvc: storeSvc, customerSvc: customerSvc}
}

func (f *fixture) connect(t *testing.T, storeDomain, platform string) storedomain.Store {
	t.Helper()
	store, err := f.storeSvc.Connect(context.Background(), storedomain.ConnectStoreRequest{
		Domain:   storeDomain,
		Platform: platform,
	})
	require.NoError(t, err)
	return store
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&count).Error)
	return count
}

func TestReconcile_ConvertsMatchedCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.connect(t, "shop.example.com", "shopify")

	created, err := f.cartSvc.ResolveOrCreate(ctx, cartdomain.ActivityEvent{
		StoreID: store.ID,
		Keys:    cartdomain.IdentityKeys{CartToken: "T1"},
		Items:   []cartdomain.CartItem{{SKU: "A", Price: 10, Quantity: 2}},
	})
	require.NoError(t, err)

	result, err := f.orderSvc.Reconcile(ctx, domain.OrderCreatedEvent{
		ExternalOrderID: "O1",
		StoreDomain:     "shop.example.com",
		CartToken:       "T1",
		Total:           20,
	})
	require.NoError(t, err)

	require.NotNil(t, result.CartID)
	assert.Equal(t, created.Cart.ID, *result.CartID)

	cart, err := f.cartSvc.GetByID(ctx, created.Cart.ID.String())
	require.NoError(t, err)
	assert.Equal(t, cartdomain.StatusConverted, cart.Status)
	assert.Equal(t, "O1", cart.ExternalOrderID())

	order, err := repository.Provide().FindByExternalID(ctx, f.db, store.ID, "O1")
	require.NoError(t, err)
	require.NotNil(t, order)
	require.NotNil(t, order.CartID)
	assert.Equal(t, created.Cart.ID, *order.CartID)
}

func TestReconcile_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.connect(t, "shop.example.com", "shopify")

	_, err := f.cartSvc.ResolveOrCreate(ctx, cartdomain.ActivityEvent{
		StoreID: store.ID,
		Keys:    cartdomain.IdentityKeys{CartToken: "T1"},
	})
	require.NoError(t, err)

	event := domain.OrderCreatedEvent{
		ExternalOrderID: "O1",
		StoreDomain:     "shop.example.com",
		CartToken:       "T1",
	}

	first, err := f.orderSvc.Reconcile(ctx, event)
	require.NoError(t, err)
	require.NotNil(t, first.CartID)

	second, err := f.orderSvc.Reconcile(ctx, event)
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	require.NotNil(t, second.CartID)
	assert.Equal(t, *first.CartID, *second.CartID)
	assert.Equal(t, int64(1), f.orderCount(t))
}

func TestReconcile_UnmatchedOrderIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.connect(t, "shop.example.com", "shopify")

	result, err := f.orderSvc.Reconcile(ctx, domain.OrderCreatedEvent{
		ExternalOrderID: "O1",
		StoreDomain:     "shop.example.com",
		Customer:        domain.OrderCustomer{Email: "walkin@example.com"},
	})
	require.NoError(t, err)

	assert.Nil(t, result.CartID)
	assert.Equal(t, int64(1), f.orderCount(t))
}

func TestReconcile_MatchesByCustomerID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.connect(t, "shop.example.com", "shopify")

	created, err := f.cartSvc.ResolveOrCreate(ctx, cartdomain.ActivityEvent{
		StoreID: store.ID,
		Keys:    cartdomain.IdentityKeys{SessionID: "S1", CustomerID: "C1"},
	})
	require.NoError(t, err)

	result, err := f.orderSvc.Reconcile(ctx, domain.OrderCreatedEvent{
		ExternalOrderID: "O1",
		StoreDomain:     "shop.example.com",
		Customer:        domain.OrderCustomer{ID: "C1"},
	})
	require.NoError(t, err)

	require.NotNil(t, result.CartID)
	assert.Equal(t, created.Cart.ID, *result.CartID)
}

func TestReconcile_PlatformFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.connect(t, "shop.example.com", "woocommerce")

	created, err := f.cartSvc.ResolveOrCreate(ctx, cartdomain.ActivityEvent{
		StoreID: store.ID,
		Keys:    cartdomain.IdentityKeys{CartToken: "T1"},
	})
	require.NoError(t, err)

	// Payload domain differs from the registered one; the single store
	// connected for the platform takes the event.
	result, err := f.orderSvc.Reconcile(ctx, domain.OrderCreatedEvent{
		ExternalOrderID: "O1",
		StoreDomain:     "legacy-alias.example.com",
		Platform:        "woocommerce",
		CartToken:       "T1",
	})
	require.NoError(t, err)
	require.NotNil(t, result.CartID)
	assert.Equal(t, created.Cart.ID, *result.CartID)
}

func TestReconcile_AmbiguousPlatformRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.connect(t, "one.example.com", "woocommerce")
	f.connect(t, "two.example.com", "woocommerce")

	_, err := f.orderSvc.Reconcile(ctx, domain.OrderCreatedEvent{
		ExternalOrderID: "O1",
		StoreDomain:     "unknown.example.com",
		Platform:        "woocommerce",
	})
	assert.ErrorIs(t, err, storedomain.ErrNotFound)
}

func TestReconcile_UpdatesCustomerDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.connect(t, "shop.example.com", "shopify")

	event := domain.OrderCreatedEvent{
		ExternalOrderID: "O1",
		StoreDomain:     "shop.example.com",
		Customer:        domain.OrderCustomer{ID: "C1", Email: "Shopper@Example.com"},
	}
	_, err := f.orderSvc.Reconcile(ctx, event)
	require.NoError(t, err)

	// Redelivery must not double-count the order.
	_, err = f.orderSvc.Reconcile(ctx, event)
	require.NoError(t, err)

	// A second order from the same shopper, identified by email only.
	_, err = f.orderSvc.Reconcile(ctx, domain.OrderCreatedEvent{
		ExternalOrderID: "O2",
		StoreDomain:     "shop.example.com",
		Customer:        domain.OrderCustomer{Email: "shopper@example.com", Phone: "+15550100"},
	})
	require.NoError(t, err)

	resp, err := f.customerSvc.List(ctx, customerdomain.ListCustomersRequest{StoreID: store.ID})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	got := resp.Customers[0]
	assert.Equal(t, "C1", got.ExternalID)
	assert.Equal(t, "shopper@example.com", got.Email)
	assert.Equal(t, "+15550100", got.Phone)
	assert.Equal(t, 2, got.OrdersCount)
}

func TestReconcile_RequiresOrderID(t *testing.T) {
	f := newFixture(t)

	_, err := f.orderSvc.Reconcile(context.Background(), domain.OrderCreatedEvent{
		StoreDomain: "shop.example.com",
	})
	assert.ErrorIs(t, err, domain.ErrMissingOrderID)
}
