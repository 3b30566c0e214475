package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogModel "hashop_store/internal/domain/catalog/model"
	catalogRepo "hashop_store/internal/domain/catalog/repository"
	catalogService "hashop_store/internal/domain/catalog/service"
	"hashop_store/internal/domain/order/model"
	"hashop_store/internal/domain/order/repository"
	"hashop_store/internal/pkg/config"
	"hashop_store/internal/pkg/qrpay"
	"hashop_store/pkg/metrics"

	"go.uber.org/zap"
)

// ErrNoValidItems: every requested line referenced an unknown product or an
// empty catalog entry, so there is nothing to charge for.
var ErrNoValidItems = errors.New("order has no valid items")

const orderCodeRetries = 3

// OrderItemInput is one requested line. VariantID carries the selector:
// a variant id, a positional index, or a variant name.
type OrderItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderInput struct {
	CustomerName  string           `json:"customerName" binding:"required"`
	CustomerEmail string           `json:"customerEmail" binding:"required,email"`
	CustomerPhone string           `json:"customerPhone"`
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Notes         string           `json:"notes"`
}

// PaymentInstructions is everything the storefront needs to render the
// pay-by-transfer screen.
type PaymentInstructions struct {
	QRCodeURL       string         `json:"qrCodeUrl"`
	Bank            qrpay.BankInfo `json:"bank"`
	Amount          int64          `json:"amount"`
	TransferContent string         `json:"transferContent"`
}

type CreateOrderResult struct {
	Order   *model.Order        `json:"order"`
	Payment PaymentInstructions `json:"payment"`
}

// OrderStatus is the public polling answer keyed by order code.
type OrderStatus struct {
	OrderCode           string     `json:"orderCode"`
	PaymentStatus       string     `json:"paymentStatus"`
	DeliveryStatus      string     `json:"deliveryStatus"`
	TotalAmount         int64      `json:"totalAmount"`
	DeliveredCount      int        `json:"deliveredCount"`
	EstimatedDeliveryAt *time.Time `json:"estimatedDeliveryAt,omitempty"`
}

type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	// Get resolves an order by code first, then by id.
	Get(idOrCode string) (*model.Order, error)
	Status(orderCode string) (*OrderStatus, error)
	List(paymentStatus, deliveryStatus string, offset, limit int) ([]model.Order, int64, error)
	UpdateStatus(orderID, paymentStatus, deliveryStatus string) error
}

type orderService struct {
	repo    repository.OrderRepository
	catalog catalogService.CatalogService
	counter catalogService.StockCounter
	qr      qrpay.Provider
	cfg     config.OrderConfig
	metrics *metrics.Collector
	log     *zap.Logger
	now     func() time.Time
}

func NewOrderService(repo repository.OrderRepository, catalog catalogService.CatalogService,
	counter catalogService.StockCounter, qr qrpay.Provider, cfg config.OrderConfig,
	collector *metrics.Collector, log *zap.Logger) OrderService {
	return &orderService{
		repo:    repo,
		catalog: catalog,
		counter: counter,
		qr:      qr,
		cfg:     cfg,
		metrics: collector,
		log:     log,
		now:     time.Now,
	}
}

func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	items, anyOutOfStock := s.buildLineItems(input.Items)
	if len(items) == 0 {
		return nil, ErrNoValidItems
	}

	var total int64
	for _, item := range items {
		total += item.Total
	}

	now := s.now()
	order := &model.Order{
		CustomerName:      input.CustomerName,
		CustomerEmail:     input.CustomerEmail,
		CustomerPhone:     input.CustomerPhone,
		Items:             items,
		TotalAmount:       total,
		PaymentStatus:     model.PaymentPending,
		DeliveryStatus:    model.DeliveryPending,
		PaymentMethod:     "bank_transfer",
		DeliveredAccounts: model.DeliveredAccounts{},
		Notes:             input.Notes,
	}
	if anyOutOfStock {
		eta := EstimateDelivery(now, s.cfg)
		order.EstimatedDeliveryAt = &eta
	}

	if err := s.persistWithFreshCode(order); err != nil {
		return nil, err
	}
	content := s.qr.TransferContent(order.OrderCode)

	if s.metrics != nil {
		s.metrics.OrderCreated()
	}
	s.log.Info("order created",
		zap.String("order_code", order.OrderCode),
		zap.Int64("total", total),
		zap.Int("items", len(items)),
		zap.Bool("backorder", anyOutOfStock))

	return &CreateOrderResult{
		Order: order,
		Payment: PaymentInstructions{
			QRCodeURL:       order.QRCodeURL,
			Bank:            s.qr.Bank(),
			Amount:          total,
			TransferContent: content,
		},
	}, nil
}

// buildLineItems resolves every requested line against the catalog. Lines
// naming unknown products are skipped with a log entry rather than failing
// the whole order.
func (s *orderService) buildLineItems(inputs []OrderItemInput) (model.OrderItems, bool) {
	items := make(model.OrderItems, 0, len(inputs))
	anyOutOfStock := false

	for _, in := range inputs {
		product, err := s.catalog.GetProduct(in.ProductID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrProductNotFound) {
				s.log.Warn("order line skipped: product not found",
					zap.String("product_id", in.ProductID))
				continue
			}
			s.log.Error("order line skipped: product lookup failed",
				zap.String("product_id", in.ProductID), zap.Error(err))
			continue
		}

		variant, _ := s.catalog.ResolveVariant(product, in.VariantID)
		if variant == nil {
			s.log.Warn("order line skipped: product has no variants",
				zap.String("product_id", in.ProductID))
			continue
		}

		policy := catalogModel.ParseStockPolicy(string(variant.StockPolicy))
		var available int64
		outOfStock := false
		switch policy {
		case catalogModel.PolicyContact:
			outOfStock = true
		case catalogModel.PolicyAvailable:
			count, err := s.counter.CountAvailable(in.ProductID, variant.Name)
			if err != nil {
				s.log.Error("stock count failed during order creation",
					zap.String("product_id", in.ProductID), zap.Error(err))
			}
			available = count
			outOfStock = count < int64(in.Quantity)
		}
		if outOfStock {
			anyOutOfStock = true
		}

		items = append(items, model.OrderLineItem{
			ProductID:        in.ProductID,
			ProductName:      product.Name,
			VariantName:      variant.Name,
			Price:            variant.Price,
			Quantity:         in.Quantity,
			Total:            variant.Price * int64(in.Quantity),
			StockPolicy:      policy,
			IsOutOfStock:     outOfStock,
			AvailableAtOrder: available,
		})
	}
	return items, anyOutOfStock
}

// persistWithFreshCode generates an order code, derives the QR image from
// it and retries on the rare unique-index collision.
func (s *orderService) persistWithFreshCode(order *model.Order) error {
	var err error
	for i := 0; i < orderCodeRetries; i++ {
		order.OrderCode = GenerateOrderCode(s.now())
		order.QRCodeURL = s.qr.ImageURL(order.TotalAmount, s.qr.TransferContent(order.OrderCode))
		err = s.repo.Create(order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateCode) {
			return err
		}
		time.Sleep(time.Millisecond)
	}
	return err
}

func (s *orderService) Get(idOrCode string) (*model.Order, error) {
	order, err := s.repo.GetByCode(idOrCode)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, err
	}
	return s.repo.GetByID(idOrCode)
}

func (s *orderService) Status(orderCode string) (*OrderStatus, error) {
	order, err := s.repo.GetByCode(orderCode)
	if err != nil {
		return nil, err
	}
	return &OrderStatus{
		OrderCode:           order.OrderCode,
		PaymentStatus:       order.PaymentStatus,
		DeliveryStatus:      order.DeliveryStatus,
		TotalAmount:         order.TotalAmount,
		DeliveredCount:      len(order.DeliveredAccounts),
		EstimatedDeliveryAt: order.EstimatedDeliveryAt,
	}, nil
}

func (s *orderService) List(paymentStatus, deliveryStatus string, offset, limit int) ([]model.Order, int64, error) {
	return s.repo.List(paymentStatus, deliveryStatus, offset, limit)
}

func (s *orderService) UpdateStatus(orderID, paymentStatus, deliveryStatus string) error {
	return s.repo.UpdateStatus(orderID, paymentStatus, deliveryStatus, s.now())
}

// GenerateOrderCode builds the customer-facing code: "DH" plus the last
// eight digits of the unix-millisecond clock.
func GenerateOrderCode(now time.Time) string {
	ms := now.UnixMilli()
	return fmt.Sprintf("DH%08d", ms%100000000)
}

// EstimateDelivery implements the manual-prep promise: inside working hours
// the order ships after a short prep window, otherwise early next morning.
func EstimateDelivery(now time.Time, cfg config.OrderConfig) time.Time {
	hour := now.Hour()
	if hour >= cfg.WorkStartHour && hour < cfg.WorkEndHour {
		return now.Add(time.Duration(cfg.PrepMinutes) * time.Minute)
	}
	// Outside the window the promise is the next morning shortly after
	// opening.
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(),
		cfg.WorkStartHour, cfg.PrepMinutes, 0, 0, now.Location())
}
