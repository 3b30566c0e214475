package catalog

import (
	"hashop_store/internal/domain/catalog/handler"
	"hashop_store/internal/domain/catalog/repository"
	"hashop_store/internal/domain/catalog/service"
	stockRepo "hashop_store/internal/domain/stock/repository"
	"hashop_store/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CatalogModule exposes the public product browse and stock-check API.
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 1
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	pRepo := repository.NewProductRepository(ctx.DB)
	// The stock-check endpoint counts ledger entries directly.
	sRepo := stockRepo.NewStockRepository(ctx.DB)

	cService := service.NewCatalogService(pRepo, sRepo, ctx.Redis, ctx.Log)
	cHandler := handler.NewCatalogHandler(cService)

	setupRoutes(ctx.Router, cHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CatalogHandler) {
	g := r.Group("/api/products")
	{
		g.GET("", h.ListProducts)
		g.GET("/:id", h.GetProduct)
		g.GET("/:id/stock", h.CheckStock)
	}
}
