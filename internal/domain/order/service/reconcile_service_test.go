package service

import (
	"context"
	"testing"

	"hashop_store/internal/domain/order/model"
	"hashop_store/internal/pkg/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func pendingOrder(code string, total int64) model.Order {
	order := model.Order{
		OrderCode:     code,
		CustomerName:  "Nguyen Van B",
		CustomerEmail: "b@example.com",
		TotalAmount:   total,
		PaymentStatus: model.PaymentPending,
	}
	order.ID = "order-" + code
	return order
}

func inboundEvent(content string, amount int64) WebhookEvent {
	return WebhookEvent{
		ID:             42,
		Gateway:        "MBBank",
		Content:        content,
		TransferType:   "in",
		TransferAmount: amount,
		ReferenceCode:  "FT42",
	}
}

func newTestReconcile(repo *MockOrderRepository, delivery *MockDelivery, notifier *MockNotifier) ReconcileService {
	return NewReconcileService(repo, delivery, notifier, testOrderConfig(), nil, zap.NewNop())
}

func TestHandleWebhook(t *testing.T) {
	t.Run("Outbound transfers are ignored", func(t *testing.T) {
		repo := new(MockOrderRepository)
		notifier := new(MockNotifier)
		svc := newTestReconcile(repo, new(MockDelivery), notifier)

		evt := inboundEvent("THANHTOAN DH12345678", 70000)
		evt.TransferType = "out"

		outcome, err := svc.HandleWebhook(context.Background(), evt)

		assert.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome.Result)
		repo.AssertNotCalled(t, "FindPending")
		notifier.AssertNotCalled(t, "AlertOperator")
	})

	t.Run("Content and amount match marks paid and delivers", func(t *testing.T) {
		repo := new(MockOrderRepository)
		delivery := new(MockDelivery)
		notifier := new(MockNotifier)
		svc := newTestReconcile(repo, delivery, notifier)

		order := pendingOrder("DH12345678", 70000)
		paid := order
		paid.PaymentStatus = model.PaymentPaid

		repo.On("FindPending").Return([]model.Order{order}, nil)
		repo.On("MarkPaid", "DH12345678", "FT42", mock.Anything).Return(true, nil)
		repo.On("GetByCode", "DH12345678").Return(&paid, nil)
		delivery.On("Deliver", mock.Anything, &paid).Return(&DeliveryResult{
			Delivered: []model.DeliveredAccount{{VariantName: "1 tháng", Username: "acc1", Password: "p"}},
			Completed: true,
		}, nil)
		notifier.On("NotifyPaymentDelivered", mock.Anything, mock.Anything, "FT42", mock.Anything).Return()
		notifier.On("EmailCustomer", mock.Anything, mock.Anything, mock.Anything).Return()

		outcome, err := svc.HandleWebhook(context.Background(), inboundEvent("MBVCB thanhtoan dh12345678", 70000))

		assert.NoError(t, err)
		assert.Equal(t, OutcomeMatched, outcome.Result)
		assert.Equal(t, "DH12345678", outcome.OrderCode)
		assert.Equal(t, 1, outcome.Delivered)
		notifier.AssertExpectations(t)
		notifier.AssertNotCalled(t, "NotifyNeedsPreparation")
	})

	t.Run("Amount off by more than the tolerance does not match", func(t *testing.T) {
		repo := new(MockOrderRepository)
		notifier := new(MockNotifier)
		svc := newTestReconcile(repo, new(MockDelivery), notifier)

		repo.On("FindPending").Return([]model.Order{pendingOrder("DH12345678", 70000)}, nil)
		notifier.On("AlertOperator", mock.Anything, mock.Anything).Return()

		outcome, err := svc.HandleWebhook(context.Background(), inboundEvent("THANHTOAN DH12345678", 68000))

		assert.NoError(t, err)
		assert.Equal(t, OutcomeUnmatched, outcome.Result)
		repo.AssertNotCalled(t, "MarkPaid")
		notifier.AssertExpectations(t)
	})

	t.Run("Amount within tolerance matches", func(t *testing.T) {
		repo := new(MockOrderRepository)
		delivery := new(MockDelivery)
		notifier := new(MockNotifier)
		svc := newTestReconcile(repo, delivery, notifier)

		order := pendingOrder("DH12345678", 70000)
		paid := order
		paid.PaymentStatus = model.PaymentPaid

		repo.On("FindPending").Return([]model.Order{order}, nil)
		repo.On("MarkPaid", "DH12345678", "FT42", mock.Anything).Return(true, nil)
		repo.On("GetByCode", "DH12345678").Return(&paid, nil)
		delivery.On("Deliver", mock.Anything, &paid).Return(&DeliveryResult{Completed: true}, nil)
		notifier.On("NotifyPaymentDelivered", mock.Anything, mock.Anything, "FT42", mock.Anything).Return()

		outcome, err := svc.HandleWebhook(context.Background(), inboundEvent("THANHTOAN DH12345678", 70500))

		assert.NoError(t, err)
		assert.Equal(t, OutcomeMatched, outcome.Result)
		// No credentials went out, so no customer email.
		notifier.AssertNotCalled(t, "EmailCustomer")
	})

	t.Run("Explicit order code skips the content scan", func(t *testing.T) {
		repo := new(MockOrderRepository)
		delivery := new(MockDelivery)
		notifier := new(MockNotifier)
		svc := newTestReconcile(repo, delivery, notifier)

		order := pendingOrder("DH12345678", 70000)
		paid := order
		paid.PaymentStatus = model.PaymentPaid

		repo.On("GetByCode", "DH12345678").Return(&order, nil).Once()
		repo.On("MarkPaid", "DH12345678", "FT42", mock.Anything).Return(true, nil)
		repo.On("GetByCode", "DH12345678").Return(&paid, nil)
		delivery.On("Deliver", mock.Anything, mock.Anything).Return(&DeliveryResult{
			NeedsPrep: []notify.PrepItem{{ProductName: "Netflix", Requested: 1, Reason: ReasonOutOfStock}},
		}, nil)
		notifier.On("NotifyNeedsPreparation", mock.Anything, mock.Anything, mock.Anything).Return()

		evt := inboundEvent("random text", 70000)
		evt.Code = "DH12345678"

		outcome, err := svc.HandleWebhook(context.Background(), evt)

		assert.NoError(t, err)
		assert.Equal(t, OutcomeMatched, outcome.Result)
		assert.Equal(t, 1, outcome.NeedsPrep)
		repo.AssertNotCalled(t, "FindPending")
		// Needs-prep orders get exactly the preparation alert, nothing else.
		notifier.AssertNotCalled(t, "NotifyPaymentDelivered")
		notifier.AssertNotCalled(t, "EmailCustomer")
	})

	t.Run("Replayed webhook finds nothing pending and alerts", func(t *testing.T) {
		repo := new(MockOrderRepository)
		notifier := new(MockNotifier)
		svc := newTestReconcile(repo, new(MockDelivery), notifier)

		// The order was settled by the first delivery of this event.
		repo.On("FindPending").Return([]model.Order{}, nil)
		notifier.On("AlertOperator", mock.Anything, mock.Anything).Return()

		outcome, err := svc.HandleWebhook(context.Background(), inboundEvent("THANHTOAN DH12345678", 70000))

		assert.NoError(t, err)
		assert.Equal(t, OutcomeUnmatched, outcome.Result)
		notifier.AssertExpectations(t)
	})

	t.Run("Lost CAS race degrades to unmatched", func(t *testing.T) {
		repo := new(MockOrderRepository)
		notifier := new(MockNotifier)
		svc := newTestReconcile(repo, new(MockDelivery), notifier)

		order := pendingOrder("DH12345678", 70000)
		repo.On("FindPending").Return([]model.Order{order}, nil)
		repo.On("MarkPaid", "DH12345678", "FT42", mock.Anything).Return(false, nil)
		notifier.On("AlertOperator", mock.Anything, mock.Anything).Return()

		outcome, err := svc.HandleWebhook(context.Background(), inboundEvent("THANHTOAN DH12345678", 70000))

		assert.NoError(t, err)
		assert.Equal(t, OutcomeUnmatched, outcome.Result)
	})

	t.Run("Delivery failure after payment still acks", func(t *testing.T) {
		repo := new(MockOrderRepository)
		delivery := new(MockDelivery)
		notifier := new(MockNotifier)
		svc := newTestReconcile(repo, delivery, notifier)

		order := pendingOrder("DH12345678", 70000)
		paid := order
		paid.PaymentStatus = model.PaymentPaid

		repo.On("FindPending").Return([]model.Order{order}, nil)
		repo.On("MarkPaid", "DH12345678", "FT42", mock.Anything).Return(true, nil)
		repo.On("GetByCode", "DH12345678").Return(&paid, nil)
		delivery.On("Deliver", mock.Anything, mock.Anything).Return(nil, assert.AnError)
		notifier.On("AlertOperator", mock.Anything, mock.Anything).Return()

		outcome, err := svc.HandleWebhook(context.Background(), inboundEvent("THANHTOAN DH12345678", 70000))

		assert.NoError(t, err)
		assert.Equal(t, OutcomeMatched, outcome.Result)
		notifier.AssertExpectations(t)
	})
}
