package service

import (
	"context"
	"time"

	catalogModel "hashop_store/internal/domain/catalog/model"
	catalogService "hashop_store/internal/domain/catalog/service"
	"hashop_store/internal/domain/order/model"
	stockModel "hashop_store/internal/domain/stock/model"
	"hashop_store/internal/pkg/notify"
	"hashop_store/internal/pkg/qrpay"

	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock of repository.OrderRepository.
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

// MockCatalog is a mock of the catalog service.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListProducts() ([]catalogModel.Product, error) {
	args := m.Called()
	return args.Get(0).([]catalogModel.Product), args.Error(1)
}

func (m *MockCatalog) GetProduct(id string) (*catalogModel.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogModel.Product), args.Error(1)
}

func (m *MockCatalog) ResolveVariant(product *catalogModel.Product, selector string) (*catalogModel.Variant, bool) {
	args := m.Called(product, selector)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*catalogModel.Variant), args.Bool(1)
}

func (m *MockCatalog) CheckStock(ctx context.Context, productID, selector string) (*catalogService.StockStatus, error) {
	args := m.Called(ctx, productID, selector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogService.StockStatus), args.Error(1)
}

// MockCounter is a mock of catalogService.StockCounter.
type MockCounter struct {
	mock.Mock
}

func (m *MockCounter) CountAvailable(productID, variantName string) (int64, error) {
	args := m.Called(productID, variantName)
	return args.Get(0).(int64), args.Error(1)
}

// MockClaimer is a mock of StockClaimer.
type MockClaimer struct {
	mock.Mock
}

func (m *MockClaimer) Claim(ctx context.Context, productID, variantName, orderID string) (*stockModel.StockEntry, error) {
	args := m.Called(ctx, productID, variantName, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stockModel.StockEntry), args.Error(1)
}

// MockDelivery is a mock of DeliveryService.
type MockDelivery struct {
	mock.Mock
}

func (m *MockDelivery) Deliver(ctx context.Context, order *model.Order) (*DeliveryResult, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DeliveryResult), args.Error(1)
}

// MockNotifier records notification routing.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) AlertOperator(ctx context.Context, text string) {
	m.Called(ctx, text)
}

func (m *MockNotifier) NotifyPaymentDelivered(ctx context.Context, order notify.OrderInfo, txID string, creds []notify.Credential) {
	m.Called(ctx, order, txID, creds)
}

func (m *MockNotifier) NotifyNeedsPreparation(ctx context.Context, order notify.OrderInfo, items []notify.PrepItem) {
	m.Called(ctx, order, items)
}

func (m *MockNotifier) EmailCustomer(ctx context.Context, order notify.OrderInfo, creds []notify.Credential) {
	m.Called(ctx, order, creds)
}

// fakeQR is a deterministic qrpay.Provider for assertions on instructions.
type fakeQR struct{}

func (fakeQR) ImageURL(amount int64, content string) string {
	return "https://qr.test/" + content
}

func (fakeQR) TransferContent(orderCode string) string {
	return "THANHTOAN " + orderCode
}

func (fakeQR) Bank() qrpay.BankInfo {
	return qrpay.BankInfo{BankCode: "MB", BankName: "MB Bank", AccountNumber: "0123456789"}
}
