package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector bundles the storefront metrics. One instance is created in main
// and shared through the module context.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	ordersCreatedTotal prometheus.Counter
	ordersExpiredTotal prometheus.Counter

	// result: matched, unmatched, ignored, error
	webhooksTotal *prometheus.CounterVec

	// result: claimed, stockout
	stockClaimsTotal *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		ordersCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Orders accepted by the order creation service",
		}),
		ordersExpiredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_expired_total",
			Help: "Pending orders cancelled by the expiration job",
		}),
		webhooksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_payment_webhooks_total",
				Help: "Inbound payment webhook events by outcome",
			},
			[]string{"result"},
		),
		stockClaimsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_stock_claims_total",
				Help: "Stock ledger claim attempts by outcome",
			},
			[]string{"result"},
		),
	}
}

func (c *Collector) OrderCreated()             { c.ordersCreatedTotal.Inc() }
func (c *Collector) OrdersExpired(n int)       { c.ordersExpiredTotal.Add(float64(n)) }
func (c *Collector) Webhook(result string)     { c.webhooksTotal.WithLabelValues(result).Inc() }
func (c *Collector) StockClaim(result string)  { c.stockClaimsTotal.WithLabelValues(result).Inc() }

// Middleware records request counts and latency per route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		method := ctx.Request.Method
		status := strconv.Itoa(ctx.Writer.Status())

		c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}
