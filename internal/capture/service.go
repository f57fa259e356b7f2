package capture

import (
	"context"

	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	"github.com/smallbiznis/rescart/internal/capture/domain"
	obsmetrics "github.com/smallbiznis/rescart/internal/observability/metrics"
	storedomain "github.com/smallbiznis/rescart/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	StoreSvc storedomain.Service
	CartSvc  cartdomain.Service
}

type Service struct {
	log      *zap.Logger
	storeSvc storedomain.Service
	cartSvc  cartdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("capture.service"),
		storeSvc: p.StoreSvc,
		cartSvc:  p.CartSvc,
	}
}

func (s *Service) Ingest(ctx context.Context, raw domain.RawEvent) (cartdomain.ResolveOrCreateResponse, error) {
	event, err := Normalize(raw)
	if err != nil {
		obsmetrics.ObserveCapture("rejected")
		return cartdomain.ResolveOrCreateResponse{}, err
	}

	store, err := s.storeSvc.GetByDomain(ctx, event.StoreDomain)
	if err != nil {
		obsmetrics.ObserveCapture("unknown_store")
		return cartdomain.ResolveOrCreateResponse{}, err
	}

	resp, err := s.cartSvc.ResolveOrCreate(ctx, cartdomain.ActivityEvent{
		StoreID:   store.ID,
		Keys:      event.Keys,
		Items:     event.Items,
		TotalHint: event.TotalHint,
		Consents:  event.Consents,
		Cleared:   event.Cleared,
	})
	if err != nil {
		obsmetrics.ObserveCapture("failed")
		return cartdomain.ResolveOrCreateResponse{}, err
	}

	obsmetrics.ObserveCapture("accepted")
	return resp, nil
}
