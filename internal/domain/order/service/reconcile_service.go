package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hashop_store/internal/domain/order/model"
	"hashop_store/internal/domain/order/repository"
	"hashop_store/internal/pkg/config"
	"hashop_store/internal/pkg/notify"
	"hashop_store/internal/pkg/qrpay"
	"hashop_store/pkg/metrics"

	"go.uber.org/zap"
)

// WebhookEvent is one bank-transfer notification from the payment gateway.
type WebhookEvent struct {
	ID              int64  `json:"id"`
	Gateway         string `json:"gateway"`
	TransactionDate string `json:"transactionDate"`
	AccountNumber   string `json:"accountNumber"`
	// Code is the explicit order code when the gateway extracted one.
	Code            string `json:"code"`
	Content         string `json:"content"`
	TransferType    string `json:"transferType"`
	TransferAmount  int64  `json:"transferAmount"`
	ReferenceCode   string `json:"referenceCode"`
}

// TransactionID is the stable identifier recorded on the paid order.
func (e WebhookEvent) TransactionID() string {
	if e.ReferenceCode != "" {
		return e.ReferenceCode
	}
	return fmt.Sprintf("%d", e.ID)
}

// Webhook outcomes for logs and metrics.
const (
	OutcomeIgnored   = "ignored"
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
)

// WebhookOutcome summarizes one processed event; the webhook always acks 200,
// so this is for logging and the JSON body only.
type WebhookOutcome struct {
	Result    string `json:"result"`
	OrderCode string `json:"orderCode,omitempty"`
	Delivered int    `json:"delivered,omitempty"`
	NeedsPrep int    `json:"needsPrep,omitempty"`
}

type ReconcileService interface {
	// HandleWebhook matches an incoming transfer against pending orders,
	// marks the match paid and triggers delivery. A non-nil error means a
	// store failure before payment was recorded; everything else acks.
	HandleWebhook(ctx context.Context, evt WebhookEvent) (*WebhookOutcome, error)
}

type reconcileService struct {
	repo     repository.OrderRepository
	delivery DeliveryService
	notifier notify.Notifier
	cfg      config.OrderConfig
	metrics  *metrics.Collector
	log      *zap.Logger
	now      func() time.Time
}

func NewReconcileService(repo repository.OrderRepository, delivery DeliveryService,
	notifier notify.Notifier, cfg config.OrderConfig, collector *metrics.Collector,
	log *zap.Logger) ReconcileService {
	return &reconcileService{
		repo:     repo,
		delivery: delivery,
		notifier: notifier,
		cfg:      cfg,
		metrics:  collector,
		log:      log,
		now:      time.Now,
	}
}

func (s *reconcileService) HandleWebhook(ctx context.Context, evt WebhookEvent) (*WebhookOutcome, error) {
	if evt.TransferType != "in" {
		s.log.Debug("webhook ignored: not an inbound transfer",
			zap.String("transfer_type", evt.TransferType),
			zap.String("tx_id", evt.TransactionID()))
		s.record(OutcomeIgnored)
		return &WebhookOutcome{Result: OutcomeIgnored}, nil
	}

	match, err := s.findMatch(evt)
	if err != nil {
		s.record("error")
		return nil, err
	}
	if match == nil {
		// Covers genuinely unknown transfers and replays of already-settled
		// ones; both end up in front of a human.
		s.log.Warn("webhook matched no pending order",
			zap.String("tx_id", evt.TransactionID()),
			zap.Int64("amount", evt.TransferAmount),
			zap.String("content", evt.Content))
		s.notifier.AlertOperator(ctx, notify.UnmatchedTransactionMessage(
			evt.TransferAmount, evt.Content, evt.Gateway, evt.TransactionID()))
		s.record(OutcomeUnmatched)
		return &WebhookOutcome{Result: OutcomeUnmatched}, nil
	}

	paid, err := s.repo.MarkPaid(match.OrderCode, evt.TransactionID(), s.now())
	if err != nil {
		s.record("error")
		return nil, err
	}
	if !paid {
		// Lost the race to a concurrent webhook; the winner handles delivery.
		s.log.Info("order no longer pending, skipping",
			zap.String("order_code", match.OrderCode),
			zap.String("tx_id", evt.TransactionID()))
		s.notifier.AlertOperator(ctx, notify.UnmatchedTransactionMessage(
			evt.TransferAmount, evt.Content, evt.Gateway, evt.TransactionID()))
		s.record(OutcomeUnmatched)
		return &WebhookOutcome{Result: OutcomeUnmatched}, nil
	}

	s.record(OutcomeMatched)
	s.log.Info("payment reconciled",
		zap.String("order_code", match.OrderCode),
		zap.String("tx_id", evt.TransactionID()),
		zap.Int64("amount", evt.TransferAmount))

	outcome := &WebhookOutcome{Result: OutcomeMatched, OrderCode: match.OrderCode}

	// Payment is committed; delivery problems must not bounce the webhook.
	order, err := s.repo.GetByCode(match.OrderCode)
	if err != nil {
		s.failDelivery(ctx, match.OrderCode, err)
		return outcome, nil
	}
	result, err := s.delivery.Deliver(ctx, order)
	if err != nil {
		s.failDelivery(ctx, order.OrderCode, err)
		return outcome, nil
	}
	outcome.Delivered = len(result.Delivered)
	outcome.NeedsPrep = len(result.NeedsPrep)

	s.notifyOutcome(ctx, order, evt.TransactionID(), result)
	return outcome, nil
}

// findMatch applies the matching ladder: explicit order code first, then
// remittance content plus amount tolerance over all pending orders.
func (s *reconcileService) findMatch(evt WebhookEvent) (*model.Order, error) {
	if evt.Code != "" {
		order, err := s.repo.GetByCode(evt.Code)
		if err == nil && order.PaymentStatus == model.PaymentPending {
			return order, nil
		}
		if err != nil && !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, err
		}
	}

	pending, err := s.repo.FindPending()
	if err != nil {
		return nil, err
	}
	for i := range pending {
		if qrpay.MatchContent(evt.Content, pending[i].OrderCode) &&
			qrpay.MatchAmount(evt.TransferAmount, pending[i].TotalAmount, s.cfg.AmountTolerance) {
			return &pending[i], nil
		}
	}
	return nil, nil
}

// notifyOutcome routes exactly one operator alert per paid order and emails
// the customer only when at least one credential went out.
func (s *reconcileService) notifyOutcome(ctx context.Context, order *model.Order, txID string, result *DeliveryResult) {
	info := notify.OrderInfo{
		OrderCode:     order.OrderCode,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		TotalAmount:   order.TotalAmount,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
	}
	creds := make([]notify.Credential, 0, len(result.Delivered))
	for _, acc := range result.Delivered {
		creds = append(creds, notify.Credential{
			VariantName: acc.VariantName,
			Username:    acc.Username,
			Password:    acc.Password,
		})
	}

	if len(result.NeedsPrep) > 0 {
		s.notifier.NotifyNeedsPreparation(ctx, info, result.NeedsPrep)
	} else {
		s.notifier.NotifyPaymentDelivered(ctx, info, txID, creds)
	}
	if len(creds) > 0 {
		s.notifier.EmailCustomer(ctx, info, creds)
	}
}

func (s *reconcileService) failDelivery(ctx context.Context, orderCode string, err error) {
	s.log.Error("delivery failed after payment was recorded",
		zap.String("order_code", orderCode), zap.Error(err))
	s.notifier.AlertOperator(ctx, fmt.Sprintf(
		"⚠️ LỖI GIAO HÀNG TỰ ĐỘNG\n\n📋 Mã đơn: %s\n📝 Lỗi: %v\n\nĐơn đã thanh toán, cần xử lý thủ công!",
		orderCode, err))
}

func (s *reconcileService) record(result string) {
	if s.metrics != nil {
		s.metrics.Webhook(result)
	}
}
