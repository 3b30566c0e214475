// Package job hosts the background sweeps of the order domain.
package job

import (
	"context"
	"fmt"
	"time"

	"hashop_store/internal/domain/order/model"
	"hashop_store/internal/domain/order/repository"
	"hashop_store/internal/pkg/config"
	"hashop_store/pkg/metrics"

	"go.uber.org/zap"
)

const (
	startupDelay  = 30 * time.Second
	sweepInterval = time.Hour
)

// ExpirationJob cancels orders that sat unpaid past the payment window.
// It only ever touches pending orders; a payment landing mid-sweep wins.
type ExpirationJob struct {
	repo    repository.OrderRepository
	cfg     config.OrderConfig
	metrics *metrics.Collector
	log     *zap.Logger
	// OnExpired is invoked for every order the sweep actually cancelled.
	OnExpired func(order model.Order, reason string)
	now       func() time.Time
}

func NewExpirationJob(repo repository.OrderRepository, cfg config.OrderConfig,
	collector *metrics.Collector, log *zap.Logger) *ExpirationJob {
	return &ExpirationJob{repo: repo, cfg: cfg, metrics: collector, log: log, now: time.Now}
}

// Start launches the sweep loop: one pass shortly after boot to catch orders
// that expired while the service was down, then hourly until ctx is done.
func (j *ExpirationJob) Start(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(startupDelay):
			j.RunOnce(ctx)
		}

		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single sweep and returns the number of cancelled orders.
func (j *ExpirationJob) RunOnce(ctx context.Context) int {
	now := j.now()
	cutoff := now.Add(-time.Duration(j.cfg.ExpirationHours) * time.Hour)
	reason := fmt.Sprintf("Tự động hủy do quá hạn thanh toán (%d giờ)", j.cfg.ExpirationHours)

	expired, err := j.repo.FindExpiredPending(cutoff)
	if err != nil {
		j.log.Error("expiration sweep query failed", zap.Error(err))
		return 0
	}

	cancelled := 0
	for _, order := range expired {
		// Per-order CAS so a payment arriving between the query and here
		// keeps its order.
		ok, err := j.repo.Cancel(order.ID, reason, now)
		if err != nil {
			j.log.Error("expiration cancel failed",
				zap.String("order_code", order.OrderCode), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		cancelled++
		j.log.Info("order expired",
			zap.String("order_code", order.OrderCode),
			zap.Int64("total", order.TotalAmount),
			zap.Time("created_at", order.CreatedAt))
		if j.OnExpired != nil {
			j.OnExpired(order, reason)
		}
	}

	if cancelled > 0 {
		if j.metrics != nil {
			j.metrics.OrdersExpired(cancelled)
		}
		j.log.Info("expiration sweep finished", zap.Int("cancelled", cancelled))
	}
	return cancelled
}
