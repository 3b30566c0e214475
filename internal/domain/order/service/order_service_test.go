package service

import (
	"context"
	"strings"
	"testing"
	"time"

	catalogModel "hashop_store/internal/domain/catalog/model"
	catalogRepo "hashop_store/internal/domain/catalog/repository"
	"hashop_store/internal/domain/order/model"
	"hashop_store/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func testOrderConfig() config.OrderConfig {
	return config.OrderConfig{
		ExpirationHours: 1,
		AmountTolerance: 1000,
		WorkStartHour:   7,
		WorkEndHour:     24,
		PrepMinutes:     30,
	}
}

func catalogProduct(id, name string, variants ...catalogModel.Variant) *catalogModel.Product {
	p := &catalogModel.Product{Name: name, Variants: variants, IsActive: true}
	p.ID = id
	return p
}

func newCreationService(repo *MockOrderRepository, catalog *MockCatalog, counter *MockCounter) *orderService {
	svc := NewOrderService(repo, catalog, counter, fakeQR{}, testOrderConfig(), nil, zap.NewNop())
	return svc.(*orderService)
}

func TestCreateOrder(t *testing.T) {
	monthly := catalogModel.Variant{ID: "v-1", Name: "1 tháng", Price: 70000, StockPolicy: catalogModel.PolicyAvailable}
	yearly := catalogModel.Variant{ID: "v-2", Name: "1 năm", Price: 600000, StockPolicy: catalogModel.PolicyContact}

	t.Run("Totals come from catalog snapshots", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalog)
		counter := new(MockCounter)
		svc := newCreationService(repo, catalog, counter)

		product := catalogProduct("prod-1", "Netflix", monthly)
		catalog.On("GetProduct", "prod-1").Return(product, nil)
		catalog.On("ResolveVariant", product, "v-1").Return(&monthly, false)
		counter.On("CountAvailable", "prod-1", "1 tháng").Return(int64(10), nil)
		repo.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)

		result, err := svc.Create(context.Background(), CreateOrderInput{
			CustomerName:  "Nguyen Van B",
			CustomerEmail: "b@example.com",
			Items: []OrderItemInput{
				{ProductID: "prod-1", VariantID: "v-1", Quantity: 3},
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(210000), result.Order.TotalAmount)
		assert.Len(t, result.Order.Items, 1)
		assert.Equal(t, "Netflix", result.Order.Items[0].ProductName)
		assert.False(t, result.Order.Items[0].IsOutOfStock)
		assert.Nil(t, result.Order.EstimatedDeliveryAt)
		assert.Equal(t, model.PaymentPending, result.Order.PaymentStatus)
		assert.True(t, strings.HasPrefix(result.Order.OrderCode, "DH"))
		assert.Len(t, result.Order.OrderCode, 10)
		assert.Equal(t, "THANHTOAN "+result.Order.OrderCode, result.Payment.TransferContent)
		assert.Equal(t, int64(210000), result.Payment.Amount)
		assert.Contains(t, result.Order.QRCodeURL, result.Order.OrderCode)
		repo.AssertExpectations(t)
	})

	t.Run("Insufficient stock flags the line and sets an estimate", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalog)
		counter := new(MockCounter)
		svc := newCreationService(repo, catalog, counter)
		svc.now = func() time.Time {
			return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
		}

		product := catalogProduct("prod-1", "Netflix", monthly)
		catalog.On("GetProduct", "prod-1").Return(product, nil)
		catalog.On("ResolveVariant", product, "v-1").Return(&monthly, false)
		counter.On("CountAvailable", "prod-1", "1 tháng").Return(int64(1), nil)
		repo.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)

		result, err := svc.Create(context.Background(), CreateOrderInput{
			CustomerName:  "Nguyen Van B",
			CustomerEmail: "b@example.com",
			Items: []OrderItemInput{
				{ProductID: "prod-1", VariantID: "v-1", Quantity: 2},
			},
		})

		assert.NoError(t, err)
		assert.True(t, result.Order.Items[0].IsOutOfStock)
		assert.Equal(t, int64(1), result.Order.Items[0].AvailableAtOrder)
		// Still charged in full; backorders are fulfilled manually.
		assert.Equal(t, int64(140000), result.Order.TotalAmount)
		if assert.NotNil(t, result.Order.EstimatedDeliveryAt) {
			assert.Equal(t, time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC), *result.Order.EstimatedDeliveryAt)
		}
	})

	t.Run("Contact-only variant is charged but marked for manual prep", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalog)
		counter := new(MockCounter)
		svc := newCreationService(repo, catalog, counter)

		product := catalogProduct("prod-2", "Spotify", yearly)
		catalog.On("GetProduct", "prod-2").Return(product, nil)
		catalog.On("ResolveVariant", product, "v-2").Return(&yearly, false)
		repo.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)

		result, err := svc.Create(context.Background(), CreateOrderInput{
			CustomerName:  "Nguyen Van B",
			CustomerEmail: "b@example.com",
			Items: []OrderItemInput{
				{ProductID: "prod-2", VariantID: "v-2", Quantity: 1},
			},
		})

		assert.NoError(t, err)
		assert.True(t, result.Order.Items[0].IsOutOfStock)
		assert.Equal(t, catalogModel.PolicyContact, result.Order.Items[0].StockPolicy)
		assert.Equal(t, int64(600000), result.Order.TotalAmount)
		counter.AssertNotCalled(t, "CountAvailable")
	})

	t.Run("Unknown products are skipped, valid lines survive", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalog)
		counter := new(MockCounter)
		svc := newCreationService(repo, catalog, counter)

		product := catalogProduct("prod-1", "Netflix", monthly)
		catalog.On("GetProduct", "ghost").Return(nil, catalogRepo.ErrProductNotFound)
		catalog.On("GetProduct", "prod-1").Return(product, nil)
		catalog.On("ResolveVariant", product, "v-1").Return(&monthly, false)
		counter.On("CountAvailable", "prod-1", "1 tháng").Return(int64(5), nil)
		repo.On("Create", mock.AnythingOfType("*model.Order")).Return(nil)

		result, err := svc.Create(context.Background(), CreateOrderInput{
			CustomerName:  "Nguyen Van B",
			CustomerEmail: "b@example.com",
			Items: []OrderItemInput{
				{ProductID: "ghost", VariantID: "x", Quantity: 1},
				{ProductID: "prod-1", VariantID: "v-1", Quantity: 1},
			},
		})

		assert.NoError(t, err)
		assert.Len(t, result.Order.Items, 1)
		assert.Equal(t, int64(70000), result.Order.TotalAmount)
	})

	t.Run("All lines invalid rejects the order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		catalog := new(MockCatalog)
		counter := new(MockCounter)
		svc := newCreationService(repo, catalog, counter)

		catalog.On("GetProduct", "ghost").Return(nil, catalogRepo.ErrProductNotFound)

		result, err := svc.Create(context.Background(), CreateOrderInput{
			CustomerName:  "Nguyen Van B",
			CustomerEmail: "b@example.com",
			Items: []OrderItemInput{
				{ProductID: "ghost", VariantID: "x", Quantity: 1},
			},
		})

		assert.ErrorIs(t, err, ErrNoValidItems)
		assert.Nil(t, result)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestGenerateOrderCode(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	code := GenerateOrderCode(now)

	assert.Len(t, code, 10)
	assert.True(t, strings.HasPrefix(code, "DH"))
	for _, r := range code[2:] {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestEstimateDelivery(t *testing.T) {
	cfg := testOrderConfig()

	t.Run("Inside working hours adds the prep window", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, now.Add(30*time.Minute), EstimateDelivery(now, cfg))
	})

	t.Run("Overnight orders promise the next morning", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 2, 15, 0, 0, time.UTC)
		assert.Equal(t,
			time.Date(2025, 3, 11, 7, 30, 0, 0, time.UTC),
			EstimateDelivery(now, cfg))
	})

	t.Run("After closing rolls to next morning", func(t *testing.T) {
		short := cfg
		short.WorkEndHour = 18
		now := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
		assert.Equal(t,
			time.Date(2025, 3, 11, 7, 30, 0, 0, time.UTC),
			EstimateDelivery(now, short))
	})
}

func TestGetOrder(t *testing.T) {
	t.Run("Code takes precedence over id", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := newCreationService(repo, new(MockCatalog), new(MockCounter))

		order := &model.Order{OrderCode: "DH12345678"}
		repo.On("GetByCode", "DH12345678").Return(order, nil)

		got, err := svc.Get("DH12345678")

		assert.NoError(t, err)
		assert.Equal(t, order, got)
		repo.AssertNotCalled(t, "GetByID")
	})
}
