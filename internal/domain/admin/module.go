package admin

import (
	"hashop_store/internal/domain/admin/handler"
	"hashop_store/internal/domain/admin/repository"
	"hashop_store/internal/domain/admin/service"
	"hashop_store/internal/pkg/middleware"
	"hashop_store/internal/pkg/registry"
	"hashop_store/pkg/database"

	"github.com/gin-gonic/gin"
)

// AdminModule serves operator login, the dashboard and gateway helpers.
type AdminModule struct{}

func init() {
	registry.Register(&AdminModule{})
}

func (m *AdminModule) Name() string {
	return "admin"
}

func (m *AdminModule) Priority() int {
	return 30
}

func (m *AdminModule) Init(ctx *registry.ModuleContext) error {
	stats, err := repository.NewStatsRepository(database.DSN(ctx.Cfg.Database))
	if err != nil {
		return err
	}

	aService := service.NewAdminService(ctx.Cfg.Admin, ctx.Cfg.JWT, stats, ctx.Log)
	aHandler := handler.NewAdminHandler(aService, ctx.Sepay)

	setupRoutes(ctx.Router, aHandler, ctx.Cfg.JWT.Secret)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.AdminHandler, jwtSecret string) {
	r.POST("/api/admin/login", h.Login)

	g := r.Group("/api/admin")
	g.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireAdmin())
	{
		g.GET("/stats", h.Dashboard)
		g.GET("/stats/revenue", h.Revenue)
		g.GET("/transactions", h.Transactions)
	}
}
