package scheduler

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
	storedomain "github.com/smallbiznis/rescart/internal/store/domain"
	storerepository "github.com/smallbiznis/rescart/internal/store/repository"
	storeservice "github.com/smallbiznis/rescart/internal/store/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSweepFixture(t *testing.T) (*Scheduler, cartdomain.Service, storedomain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&storedomain.Store{}, &cartdomain.Cart{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	storeRepo := storerepository.Provide()
	storeSvc := storeservice.New(storeservice.Params{DB: db, Log: logger, GenID: node, Repo: storeRepo})
	cartSvc := cartservice.New(cartservice.Params{
		DB: db, Log: logger, GenID: node, Clock: clk, Repo: cartrepository.Provide(),
	})

	sched, err := New(Params{
		DB:        db,
		Log:       logger,
		Clock:     clk,
		CartSvc:   cartSvc,
		StoreRepo: storeRepo,
		Config:    Config{IdleThreshold: 30 * time.Minute},
	})
	require.NoError(t, err)
	return sched, cartSvc, storeSvc, clk
}

func TestRunOnceSweepsAllStores(t *testing.T) {
	sched, cartSvc, storeSvc, clk := newSweepFixture(t)
	ctx := context.Background()

	one, err := storeSvc.Connect(ctx, storedomain.ConnectStoreRequest{Domain: "one.example.com", Platform: "shopify"})
	require.NoError(t, err)
	two, err := storeSvc.Connect(ctx, storedomain.ConnectStoreRequest{Domain: "two.example.com", Platform: "shopify"})
	require.NoError(t, err)

	stale1, err := cartSvc.ResolveOrCreate(ctx, cartdomain.ActivityEvent{
		StoreID: one.ID, Keys: cartdomain.IdentityKeys{CartToken: "T1"},
	})
	require.NoError(t, err)
	stale2, err := cartSvc.ResolveOrCreate(ctx, cartdomain.ActivityEvent{
		StoreID: two.ID, Keys: cartdomain.IdentityKeys{CartToken: "T2"},
	})
	require.NoError(t, err)

	clk.Advance(45 * time.Minute)
	fresh, err := cartSvc.ResolveOrCreate(ctx, cartdomain.ActivityEvent{
		StoreID: one.ID, Keys: cartdomain.IdentityKeys{CartToken: "T3"},
	})
	require.NoError(t, err)

	require.NoError(t, sched.RunOnce(ctx))

	for _, id := range []string{stale1.Cart.ID.String(), stale2.Cart.ID.String()} {
		cart, err := cartSvc.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, cartdomain.StatusAbandoned, cart.Status)
	}

	cart, err := cartSvc.GetByID(ctx, fresh.Cart.ID.String())
	require.NoError(t, err)
	assert.Equal(t, cartdomain.StatusActive, cart.Status)

	// Re-running against an already-swept set changes nothing.
	require.NoError(t, sched.RunOnce(ctx))
	cart, err = cartSvc.GetByID(ctx, stale1.Cart.ID.String())
	require.NoError(t, err)
	assert.Equal(t, cartdomain.StatusAbandoned, cart.Status)
}

func TestRunOnceWithNoStores(t *testing.T) {
	sched, _, _, _ := newSweepFixture(t)
	require.NoError(t, sched.RunOnce(context.Background()))
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 30*time.Minute, cfg.IdleThreshold)
	assert.Equal(t, 30*time.Second, cfg.JobTimeout)
	assert.Equal(t, 100, cfg.SweepBatch)

	custom := Config{IdleThreshold: time.Hour, SweepBatch: 10}.withDefaults()
	assert.Equal(t, time.Hour, custom.IdleThreshold)
	assert.Equal(t, time.Minute, custom.SweepInterval)
	assert.Equal(t, 10, custom.SweepBatch)
}
