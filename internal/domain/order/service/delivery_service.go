package service

import (
	"context"
	"errors"
	"time"

	catalogModel "hashop_store/internal/domain/catalog/model"
	"hashop_store/internal/domain/order/model"
	"hashop_store/internal/domain/order/repository"
	stockModel "hashop_store/internal/domain/stock/model"
	stockRepo "hashop_store/internal/domain/stock/repository"
	"hashop_store/internal/pkg/notify"

	"go.uber.org/zap"
)

var (
	ErrOrderNotPaid     = errors.New("order is not paid")
	ErrAlreadyDelivered = errors.New("order already delivered")
)

// Prep-list reasons shown to operators.
const (
	ReasonOutOfStock  = "Hết hàng"
	ReasonContactOnly = "Cần liên hệ"
)

// StockClaimer draws credentials from the ledger.
type StockClaimer interface {
	Claim(ctx context.Context, productID, variantName, orderID string) (*stockModel.StockEntry, error)
}

// DeliveryResult reports what happened to each requested unit.
type DeliveryResult struct {
	Delivered []model.DeliveredAccount
	NeedsPrep []notify.PrepItem
	// Completed is true when every requested unit across the order has been
	// delivered, counting earlier partial deliveries.
	Completed bool
}

type DeliveryService interface {
	// Deliver attempts automatic fulfilment of a paid order. Safe to call
	// again after manual stock import; already-delivered units are not
	// claimed twice.
	Deliver(ctx context.Context, order *model.Order) (*DeliveryResult, error)
}

type deliveryService struct {
	repo  repository.OrderRepository
	stock StockClaimer
	log   *zap.Logger
	now   func() time.Time
}

func NewDeliveryService(repo repository.OrderRepository, stock StockClaimer, log *zap.Logger) DeliveryService {
	return &deliveryService{repo: repo, stock: stock, log: log, now: time.Now}
}

func (s *deliveryService) Deliver(ctx context.Context, order *model.Order) (*DeliveryResult, error) {
	if order.PaymentStatus != model.PaymentPaid {
		return nil, ErrOrderNotPaid
	}
	if order.DeliveryStatus == model.DeliveryCompleted {
		return nil, ErrAlreadyDelivered
	}

	now := s.now()
	result := &DeliveryResult{}
	// Units delivered in an earlier pass count against each line so a
	// re-delivery after restock only claims the shortfall.
	remaining := deliveredPerLine(order)

	for _, item := range order.Items {
		already := remaining[lineKey(item.ProductID, item.VariantName)]
		want := item.Quantity - already
		if want <= 0 {
			continue
		}

		switch item.StockPolicy {
		case catalogModel.PolicyContact:
			result.NeedsPrep = append(result.NeedsPrep, notify.PrepItem{
				ProductName: item.ProductName,
				VariantName: item.VariantName,
				Requested:   item.Quantity,
				Available:   0,
				Reason:      ReasonContactOnly,
			})
		case catalogModel.PolicyAvailable:
			claimed := 0
			for i := 0; i < want; i++ {
				entry, err := s.stock.Claim(ctx, item.ProductID, item.VariantName, order.ID)
				if err != nil {
					if !errors.Is(err, stockRepo.ErrNoStock) {
						return nil, err
					}
					break
				}
				claimed++
				result.Delivered = append(result.Delivered, model.DeliveredAccount{
					ProductID:   item.ProductID,
					VariantName: item.VariantName,
					Username:    entry.Username,
					Password:    entry.Password,
					DeliveredAt: now,
				})
			}
			if claimed < want {
				result.NeedsPrep = append(result.NeedsPrep, notify.PrepItem{
					ProductName: item.ProductName,
					VariantName: item.VariantName,
					Requested:   item.Quantity,
					Available:   int64(already + claimed),
					Reason:      ReasonOutOfStock,
				})
			}
		default:
			s.log.Warn("unknown stock policy on order line, treating as manual",
				zap.String("order_code", order.OrderCode),
				zap.String("product_id", item.ProductID),
				zap.String("policy", string(item.StockPolicy)))
			result.NeedsPrep = append(result.NeedsPrep, notify.PrepItem{
				ProductName: item.ProductName,
				VariantName: item.VariantName,
				Requested:   item.Quantity,
				Available:   0,
				Reason:      ReasonContactOnly,
			})
		}
	}

	totalDelivered := len(order.DeliveredAccounts) + len(result.Delivered)
	result.Completed = totalDelivered >= order.TotalQuantity()

	status := model.DeliveryProcessing
	var deliveredAt *time.Time
	if result.Completed {
		status = model.DeliveryCompleted
		deliveredAt = &now
	}
	if err := s.repo.AppendDelivered(order.ID, result.Delivered, status, deliveredAt); err != nil {
		return nil, err
	}

	order.DeliveredAccounts = append(order.DeliveredAccounts, result.Delivered...)
	order.DeliveryStatus = status
	order.DeliveredAt = deliveredAt

	s.log.Info("order delivery pass finished",
		zap.String("order_code", order.OrderCode),
		zap.Int("delivered", len(result.Delivered)),
		zap.Int("needs_prep", len(result.NeedsPrep)),
		zap.Bool("completed", result.Completed))
	return result, nil
}

func deliveredPerLine(order *model.Order) map[string]int {
	counts := make(map[string]int, len(order.Items))
	for _, acc := range order.DeliveredAccounts {
		counts[lineKey(acc.ProductID, acc.VariantName)]++
	}
	return counts
}

func lineKey(productID, variantName string) string {
	return productID + "|" + variantName
}
