package stock

import (
	catalogRepo "hashop_store/internal/domain/catalog/repository"
	"hashop_store/internal/domain/stock/handler"
	"hashop_store/internal/domain/stock/repository"
	"hashop_store/internal/domain/stock/service"
	"hashop_store/internal/pkg/middleware"
	"hashop_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// StockModule manages the credential ledger behind the admin API.
type StockModule struct{}

func init() {
	registry.Register(&StockModule{})
}

func (m *StockModule) Name() string {
	return "stock"
}

func (m *StockModule) Priority() int {
	return 10
}

func (m *StockModule) Init(ctx *registry.ModuleContext) error {
	sRepo := repository.NewStockRepository(ctx.DB)
	pRepo := catalogRepo.NewProductRepository(ctx.DB)

	sService := service.NewStockService(sRepo, pRepo, ctx.Redis, ctx.Metrics, ctx.Log)
	sHandler := handler.NewStockHandler(sService)

	setupRoutes(ctx.Router, sHandler, ctx.Cfg.JWT.Secret)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.StockHandler, jwtSecret string) {
	g := r.Group("/api/admin/stock")
	g.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireAdmin())
	{
		g.POST("/import", h.Import)
		g.GET("", h.List)
		g.DELETE("/:id", h.Delete)
	}
}
