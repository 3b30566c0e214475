package repository

import (
	"errors"
	"time"

	"hashop_store/internal/domain/order/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateCode: the generated order code collided with an existing
	// row; the caller regenerates and retries.
	ErrDuplicateCode = errors.New("order code already exists")
)

type OrderRepository interface {
	Create(order *model.Order) error
	GetByID(id string) (*model.Order, error)
	GetByCode(code string) (*model.Order, error)
	// FindPending returns all orders still awaiting payment, oldest first.
	FindPending() ([]model.Order, error)
	// FindExpiredPending returns pending orders created before the cutoff.
	FindExpiredPending(cutoff time.Time) ([]model.Order, error)
	List(paymentStatus, deliveryStatus string, offset, limit int) ([]model.Order, int64, error)
	// MarkPaid transitions pending->paid. Returns false when the order was
	// not pending anymore; that is the caller's idempotence signal.
	MarkPaid(orderCode, transactionID string, paidAt time.Time) (bool, error)
	// Cancel transitions pending->cancelled. Same CAS contract as MarkPaid.
	Cancel(orderID, reason string, at time.Time) (bool, error)
	// AppendDelivered adds credentials to the order under a row lock and
	// advances the delivery status.
	AppendDelivered(orderID string, accounts []model.DeliveredAccount, status string, deliveredAt *time.Time) error
	UpdateStatus(orderID string, paymentStatus, deliveryStatus string, now time.Time) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	err := r.db.Create(order).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *orderRepository) GetByID(id string) (*model.Order, error) {
	var order model.Order
	err := r.db.Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByCode(code string) (*model.Order, error) {
	var order model.Order
	err := r.db.Where("order_code = ?", code).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindPending() ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("payment_status = ?", model.PaymentPending).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) FindExpiredPending(cutoff time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("payment_status = ? AND created_at < ?", model.PaymentPending, cutoff).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(paymentStatus, deliveryStatus string, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.Model(&model.Order{})
	if paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}
	if deliveryStatus != "" {
		query = query.Where("delivery_status = ?", deliveryStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) MarkPaid(orderCode, transactionID string, paidAt time.Time) (bool, error) {
	result := r.db.Model(&model.Order{}).
		Where("order_code = ? AND payment_status = ?", orderCode, model.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status":      model.PaymentPaid,
			"bank_transaction_id": transactionID,
			"paid_at":             paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepository) Cancel(orderID, reason string, at time.Time) (bool, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentPending).
		Updates(map[string]interface{}{
			"payment_status":      model.PaymentCancelled,
			"delivery_status":     model.DeliveryCancelled,
			"cancelled_at":        at,
			"cancellation_reason": reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepository) AppendDelivered(orderID string, accounts []model.DeliveredAccount, status string, deliveredAt *time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order model.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		merged := append(order.DeliveredAccounts, accounts...)
		updates := map[string]interface{}{
			"delivered_accounts": model.DeliveredAccounts(merged),
			"delivery_status":    status,
		}
		if deliveredAt != nil {
			updates["delivered_at"] = *deliveredAt
		}
		return tx.Model(&model.Order{}).Where("id = ?", orderID).Updates(updates).Error
	})
}

func (r *orderRepository) UpdateStatus(orderID string, paymentStatus, deliveryStatus string, now time.Time) error {
	updates := map[string]interface{}{}
	if paymentStatus != "" {
		updates["payment_status"] = paymentStatus
		if paymentStatus == model.PaymentPaid {
			updates["paid_at"] = now
		}
	}
	if deliveryStatus != "" {
		updates["delivery_status"] = deliveryStatus
		if deliveryStatus == model.DeliveryCompleted {
			updates["delivered_at"] = now
		}
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.Model(&model.Order{}).Where("id = ?", orderID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
