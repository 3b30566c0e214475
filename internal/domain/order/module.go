package order

import (
	"context"

	catalogRepo "hashop_store/internal/domain/catalog/repository"
	catalogService "hashop_store/internal/domain/catalog/service"
	"hashop_store/internal/domain/order/handler"
	"hashop_store/internal/domain/order/job"
	"hashop_store/internal/domain/order/model"
	"hashop_store/internal/domain/order/repository"
	"hashop_store/internal/domain/order/service"
	stockRepo "hashop_store/internal/domain/stock/repository"
	stockService "hashop_store/internal/domain/stock/service"
	"hashop_store/internal/pkg/middleware"
	"hashop_store/internal/pkg/notify"
	"hashop_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// OrderModule is the purchase pipeline: checkout, payment reconciliation,
// automatic delivery and the expiration sweep.
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 20
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	oRepo := repository.NewOrderRepository(ctx.DB)
	pRepo := catalogRepo.NewProductRepository(ctx.DB)
	sRepo := stockRepo.NewStockRepository(ctx.DB)

	catalog := catalogService.NewCatalogService(pRepo, sRepo, ctx.Redis, ctx.Log)
	stock := stockService.NewStockService(sRepo, pRepo, ctx.Redis, ctx.Metrics, ctx.Log)

	orders := service.NewOrderService(oRepo, catalog, sRepo, ctx.QR, ctx.Cfg.Order, ctx.Metrics, ctx.Log)
	delivery := service.NewDeliveryService(oRepo, stock, ctx.Log)
	reconcile := service.NewReconcileService(oRepo, delivery, ctx.Notifier, ctx.Cfg.Order, ctx.Metrics, ctx.Log)

	oHandler := handler.NewOrderHandler(orders, delivery)
	wHandler := handler.NewWebhookHandler(reconcile, ctx.Cfg.Sepay.WebhookKey, ctx.Log)

	setupRoutes(ctx.Router, oHandler, wHandler, ctx.Cfg.JWT.Secret)

	sweeper := job.NewExpirationJob(oRepo, ctx.Cfg.Order, ctx.Metrics, ctx.Log)
	sweeper.OnExpired = func(order model.Order, reason string) {
		ctx.Notifier.AlertOperator(context.Background(),
			notify.OrderExpiredMessage(order.OrderCode, order.TotalAmount, reason))
	}
	sweeper.Start(context.Background())
	return nil
}

func setupRoutes(r *gin.Engine, oh *handler.OrderHandler, wh *handler.WebhookHandler, jwtSecret string) {
	public := r.Group("/api/orders")
	{
		public.POST("", oh.Create)
		public.GET("/:code", oh.Get)
		public.GET("/:code/status", oh.Status)
	}

	// Both webhook paths are live: the gateway console points at the first,
	// legacy deployments still call the second. Neither is rate limited.
	r.POST("/api/webhook/sepay", wh.Handle)
	r.POST("/hooks/sepay-payment/", wh.Handle)

	admin := r.Group("/api/admin/orders")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireAdmin())
	{
		admin.GET("", oh.List)
		admin.POST("/:id/deliver", oh.Deliver)
		admin.PUT("/:id/status", oh.UpdateStatus)
	}
}
