package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/rescart/internal/capture"
	capturedomain "github.com/smallbiznis/rescart/internal/capture/domain"
	"github.com/smallbiznis/rescart/internal/cart"
	cartdomain "github.com/smallbiznis/rescart/internal/cart/domain"
	"github.com/smallbiznis/rescart/internal/config"
	"github.com/smallbiznis/rescart/internal/customer"
	customerdomain "github.com/smallbiznis/rescart/internal/customer/domain"
	obslogger "github.com/smallbiznis/rescart/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rescart/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rescart/internal/observability/tracing"
	"github.com/smallbiznis/rescart/internal/order"
	orderdomain "github.com/smallbiznis/rescart/internal/order/domain"
	"github.com/smallbiznis/rescart/internal/store"
	storedomain "github.com/smallbiznis/rescart/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	store.Module,
	cart.Module,
	capture.Module,
	customer.Module,
	order.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	storeSvc    storedomain.Service
	cartSvc     cartdomain.Service
	captureSvc  capturedomain.Service
	customerSvc customerdomain.Service
	orderSvc    orderdomain.Service
}

type ServerParams struct {
	fx.In

	Engine      *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	StoreSvc    storedomain.Service
	CartSvc     cartdomain.Service
	CaptureSvc  capturedomain.Service
	CustomerSvc customerdomain.Service
	OrderSvc    orderdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Engine,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		storeSvc:    p.StoreSvc,
		cartSvc:     p.CartSvc,
		captureSvc:  p.CaptureSvc,
		customerSvc: p.CustomerSvc,
		orderSvc:    p.OrderSvc,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/capture", s.HandleCapture)
	v1.POST("/checkouts", s.HandleCheckoutInitiated)
	v1.POST("/webhooks/orders/:platform", s.HandleOrderWebhook)

	v1.POST("/stores", s.ConnectStore)
	v1.GET("/stores/:store_id", s.GetStore)
	v1.DELETE("/stores/:store_id", s.TeardownStore)
	v1.GET("/stores/:store_id/carts/abandoned", s.ListAbandonedCarts)
	v1.POST("/stores/:store_id/carts/sweep", s.SweepIdleCarts)
	v1.GET("/stores/:store_id/customers", s.ListCustomers)

	v1.GET("/carts/:id", s.GetCartByID)
	v1.POST("/carts/:id/checkout", s.RecordCartCheckout)
}
