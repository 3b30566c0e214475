package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "hashop_store/internal/domain/admin"
	_ "hashop_store/internal/domain/catalog"
	_ "hashop_store/internal/domain/order"
	_ "hashop_store/internal/domain/stock"
	"hashop_store/internal/pkg/config"
	"hashop_store/internal/pkg/middleware"
	"hashop_store/internal/pkg/notify"
	"hashop_store/internal/pkg/qrpay"
	"hashop_store/internal/pkg/registry"
	"hashop_store/pkg/database"
	"hashop_store/pkg/logger"
	"hashop_store/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title HaShop Store API
// @version 1.0
// @description Digital-goods storefront: catalog, bank-transfer checkout and automatic credential delivery.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLog, err := logger.New(cfg.App.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLog.Sync()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		zapLog.Fatal("connect postgres", zap.Error(err))
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		zapLog.Fatal("connect redis", zap.Error(err))
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(promReg)

	notifier := buildNotifier(cfg, zapLog)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.TraceMiddleware())
	router.Use(middleware.LoggerMiddleware(zapLog))
	router.Use(collector.Middleware())

	// Per-IP budget on the public surface. Webhook and admin groups attach
	// their own middleware in the modules.
	limiter := middleware.NewIPRateLimiter(rate.Limit(20), 40)
	router.Use(pathScopedRateLimit(limiter))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	moduleCtx := &registry.ModuleContext{
		DB:       db,
		Redis:    rdb,
		Router:   router,
		Cfg:      cfg,
		Log:      zapLog,
		Notifier: notifier,
		QR:       qrpay.NewVietQR(cfg.Sepay),
		Sepay:    qrpay.NewSepayClient(cfg.Sepay),
		Metrics:  collector,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		zapLog.Fatal("init modules", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	zapLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildNotifier wires Telegram and SMTP when configured, falling back to a
// no-op so local development runs without external channels.
func buildNotifier(cfg *config.Config, zapLog *zap.Logger) notify.Notifier {
	var telegram *notify.TelegramClient
	if cfg.Telegram.BotToken != "" {
		telegram = notify.NewTelegramClient(cfg.Telegram, zapLog)
	}
	var mailer *notify.Mailer
	if cfg.Email.Username != "" && cfg.Email.Password != "" {
		mailer = notify.NewMailer(cfg.Email, cfg.App.SiteName, zapLog)
	}
	if telegram == nil && mailer == nil {
		zapLog.Warn("no notification channels configured, alerts disabled")
		return notify.Nop{}
	}

	dispatcher := notify.NewDispatcher(telegram, mailer, zapLog)
	dispatcher.Start()
	return dispatcher
}

// pathScopedRateLimit skips throttling for webhook deliveries; a gateway
// retry burst must never be turned into a retry storm.
func pathScopedRateLimit(limiter *middleware.IPRateLimiter) gin.HandlerFunc {
	limit := middleware.RateLimitMiddleware(limiter)
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api/webhook/sepay" || path == "/hooks/sepay-payment/" || path == "/metrics" {
			c.Next()
			return
		}
		limit(c)
	}
}
