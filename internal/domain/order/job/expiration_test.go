package job

import (
	"context"
	"testing"
	"time"

	"hashop_store/internal/domain/order/model"
	"hashop_store/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *model.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*model.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByCode(code string) (*model.Order, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindPending() ([]model.Order, error) {
	args := m.Called()
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindExpiredPending(cutoff time.Time) ([]model.Order, error) {
	args := m.Called(cutoff)
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(paymentStatus, deliveryStatus string, offset, limit int) ([]model.Order, int64, error) {
	args := m.Called(paymentStatus, deliveryStatus, offset, limit)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) MarkPaid(orderCode, transactionID string, paidAt time.Time) (bool, error) {
	args := m.Called(orderCode, transactionID, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Cancel(orderID, reason string, at time.Time) (bool, error) {
	args := m.Called(orderID, reason, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) AppendDelivered(orderID string, accounts []model.DeliveredAccount, status string, deliveredAt *time.Time) error {
	args := m.Called(orderID, accounts, status, deliveredAt)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(orderID string, paymentStatus, deliveryStatus string, now time.Time) error {
	args := m.Called(orderID, paymentStatus, deliveryStatus, now)
	return args.Error(0)
}

func staleOrder(id, code string) model.Order {
	order := model.Order{
		OrderCode:     code,
		TotalAmount:   70000,
		PaymentStatus: model.PaymentPending,
	}
	order.ID = id
	order.CreatedAt = time.Now().Add(-2 * time.Hour)
	return order
}

func testJob(repo *MockOrderRepository) *ExpirationJob {
	return NewExpirationJob(repo, config.OrderConfig{ExpirationHours: 1}, nil, zap.NewNop())
}

func TestRunOnce(t *testing.T) {
	t.Run("Cancels stale pending orders and fires the hook", func(t *testing.T) {
		repo := new(MockOrderRepository)
		j := testJob(repo)

		var expired []string
		j.OnExpired = func(order model.Order, reason string) {
			expired = append(expired, order.OrderCode)
			assert.Contains(t, reason, "quá hạn thanh toán (1 giờ)")
		}

		stale := []model.Order{staleOrder("o-1", "DH00000001"), staleOrder("o-2", "DH00000002")}
		repo.On("FindExpiredPending", mock.Anything).Return(stale, nil)
		repo.On("Cancel", "o-1", mock.Anything, mock.Anything).Return(true, nil)
		repo.On("Cancel", "o-2", mock.Anything, mock.Anything).Return(true, nil)

		cancelled := j.RunOnce(context.Background())

		assert.Equal(t, 2, cancelled)
		assert.Equal(t, []string{"DH00000001", "DH00000002"}, expired)
		repo.AssertExpectations(t)
	})

	t.Run("Payment racing the sweep keeps its order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		j := testJob(repo)

		hookCalls := 0
		j.OnExpired = func(model.Order, string) { hookCalls++ }

		stale := []model.Order{staleOrder("o-1", "DH00000001")}
		repo.On("FindExpiredPending", mock.Anything).Return(stale, nil)
		// The CAS lost: a webhook marked the order paid in between.
		repo.On("Cancel", "o-1", mock.Anything, mock.Anything).Return(false, nil)

		cancelled := j.RunOnce(context.Background())

		assert.Equal(t, 0, cancelled)
		assert.Equal(t, 0, hookCalls)
	})

	t.Run("Nothing stale is a no-op", func(t *testing.T) {
		repo := new(MockOrderRepository)
		j := testJob(repo)

		repo.On("FindExpiredPending", mock.Anything).Return([]model.Order{}, nil)

		assert.Equal(t, 0, j.RunOnce(context.Background()))
		repo.AssertNotCalled(t, "Cancel")
	})

	t.Run("Cutoff honors the configured window", func(t *testing.T) {
		repo := new(MockOrderRepository)
		j := testJob(repo)
		fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		j.now = func() time.Time { return fixed }

		repo.On("FindExpiredPending", fixed.Add(-time.Hour)).Return([]model.Order{}, nil)

		j.RunOnce(context.Background())
		repo.AssertExpectations(t)
	})
}
