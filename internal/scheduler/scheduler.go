package scheduler

import (
	"context"
	"errors"
	"time"

	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	"github.com/smallbiznis/rescart/internal/clock"
	storedomain "github.com/smallbiznis/rescart/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepLockKey = "rescart:scheduler:idle_sweep"

var ErrInvalidConfig = errors.New("scheduler dependencies missing")

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	CartSvc   cartdomain.Service
	StoreRepo storedomain.Repository
	Locker    *Locker `optional:"true"`
	Config    Config  `optional:"true"`
}

// Scheduler periodically abandons carts idle past the configured threshold.
type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	cartSvc   cartdomain.Service
	storeRepo storedomain.Repository
	locker    *Locker
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.CartSvc == nil || p.StoreRepo == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler").With(zap.String("component", "idle_sweep")),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		cartSvc:   p.CartSvc,
		storeRepo: p.StoreRepo,
		locker:    p.Locker,
	}, nil
}

// RunOnce sweeps every store. With a locker configured, only the replica
// holding the lease sweeps this round.
func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.cfg.SweepInterval)
		if err != nil {
			s.log.Warn("sweep lock unavailable", zap.Error(err))
			return nil
		}
		if !ok {
			return nil
		}
		defer func() {
			if err := s.locker.Release(ctx, sweepLockKey, token); err != nil {
				s.log.Warn("sweep lock release failed", zap.Error(err))
			}
		}()
	}

	stores, err := s.storeRepo.ListAll(ctx, s.db)
	if err != nil {
		return err
	}

	var errs error
	for _, store := range stores {
		closed, err := s.cartSvc.CloseIdle(ctx, store.ID, s.cfg.IdleThreshold, s.cfg.SweepBatch)
		if err != nil {
			s.log.Error("idle sweep failed",
				zap.String("store_id", store.ID.String()),
				zap.Error(err),
			)
			errs = errors.Join(errs, err)
			continue
		}
		if closed > 0 {
			s.log.Info("idle carts abandoned",
				zap.String("store_id", store.ID.String()),
				zap.Int64("closed", closed),
			)
		}
	}
	return errs
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Error("sweep run failed", zap.Error(err))
			}
		}
	}
}
