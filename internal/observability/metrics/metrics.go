package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rescart",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	captureEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rescart",
		Name:      "capture_events_total",
		Help:      "Capture events received, by ingestion result.",
	}, []string{"result"})

	reconcileOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rescart",
		Name:      "cart_reconcile_total",
		Help:      "Cart reconciliation outcomes.",
	}, []string{"outcome"})

	orderReconcile = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rescart",
		Name:      "order_reconcile_total",
		Help:      "Order-completion reconciliation outcomes.",
	}, []string{"result"})

	idleSweepClosed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rescart",
		Name:      "idle_sweep_closed_total",
		Help:      "Carts abandoned by the idle sweep.",
	})
)

func ObserveCapture(result string) {
	captureEvents.WithLabelValues(result).Inc()
}

func ObserveReconcile(outcome string) {
	reconcileOutcomes.WithLabelValues(outcome).Inc()
}

func ObserveOrderReconcile(result string) {
	orderReconcile.WithLabelValues(result).Inc()
}

func ObserveIdleSweep(closed int64) {
	idleSweepClosed.Add(float64(closed))
}

// GinMiddleware records request latency per templated route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestDuration.WithLabelValues(
			route,
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
