package registry

import (
	"hashop_store/internal/pkg/config"
	"hashop_store/internal/pkg/notify"
	"hashop_store/internal/pkg/qrpay"
	"hashop_store/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext carries everything a module needs for wiring. It replaces
// package-level globals: config, logger and adapters are injected here once.
type ModuleContext struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Router   *gin.Engine
	Cfg      *config.Config
	Log      *zap.Logger
	Notifier notify.Notifier
	QR       qrpay.Provider
	Sepay    *qrpay.SepayClient
	Metrics  *metrics.Collector
}

// Module is one domain module (catalog, stock, order, admin).
type Module interface {
	// Name returns the module name.
	Name() string

	// Init performs dependency injection and route registration.
	Init(ctx *ModuleContext) error

	// Priority orders initialization (smaller first); catalog and stock
	// must exist before the order module wires against them.
	Priority() int
}

var moduleRegistry = make(map[string]Module)

// Register adds a module; called from the modules' init functions.
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules returns all registered modules.
func GetModules() map[string]Module {
	return moduleRegistry
}

// InitModules initializes every registered module in priority order.
func InitModules(ctx *ModuleContext) error {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}

	// Few modules; a simple sort is plenty.
	for i := 0; i < len(modules); i++ {
		for j := i + 1; j < len(modules); j++ {
			if modules[i].Priority() > modules[j].Priority() {
				modules[i], modules[j] = modules[j], modules[i]
			}
		}
	}

	for _, module := range modules {
		if err := module.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}
