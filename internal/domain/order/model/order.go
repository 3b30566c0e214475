package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	catalogModel "hashop_store/internal/domain/catalog/model"
	baseModel "hashop_store/pkg/model"
)

// Payment statuses. pending is the only state the reconciliation engine and
// the expiration job will ever transition away from; paid is terminal for
// payment purposes.
const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
	PaymentCancelled = "cancelled"
)

// Delivery statuses. completed means every requested unit was delivered;
// processing means the order is paid but some lines await manual prep.
const (
	DeliveryPending    = "pending"
	DeliveryProcessing = "processing"
	DeliveryCompleted  = "completed"
	DeliveryCancelled  = "cancelled"
)

// OrderLineItem snapshots a purchased variant at creation time. Price and
// names must not drift when the catalog changes later.
type OrderLineItem struct {
	ProductID        string                   `json:"productId"`
	ProductName      string                   `json:"productName"`
	VariantName      string                   `json:"variantName"`
	Price            int64                    `json:"price"`
	Quantity         int                      `json:"quantity"`
	Total            int64                    `json:"total"`
	StockPolicy      catalogModel.StockPolicy `json:"stockPolicy"`
	IsOutOfStock     bool                     `json:"isOutOfStock"`
	AvailableAtOrder int64                    `json:"availableAtOrder"`
}

// OrderItems is stored as a jsonb column.
type OrderItems []OrderLineItem

func (v OrderItems) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	return json.Marshal(v)
}

func (v *OrderItems) Scan(value interface{}) error {
	return scanJSON(value, v)
}

// DeliveredAccount is one credential handed to the customer.
type DeliveredAccount struct {
	ProductID   string    `json:"productId"`
	VariantName string    `json:"variantName"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// DeliveredAccounts is stored as a jsonb column.
type DeliveredAccounts []DeliveredAccount

func (v DeliveredAccounts) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	return json.Marshal(v)
}

func (v *DeliveredAccounts) Scan(value interface{}) error {
	return scanJSON(value, v)
}

// Order is the purchase aggregate. Orders are never deleted; cancellation
// and refunds are recorded as status transitions.
type Order struct {
	baseModel.BaseModel
	OrderCode           string            `gorm:"type:varchar(32);uniqueIndex;not null" json:"orderCode"`
	CustomerName        string            `gorm:"not null" json:"customerName"`
	CustomerEmail       string            `gorm:"not null" json:"customerEmail"`
	CustomerPhone       string            `gorm:"default:''" json:"customerPhone"`
	Items               OrderItems        `gorm:"type:jsonb" json:"items"`
	TotalAmount         int64             `gorm:"not null" json:"totalAmount"`
	PaymentStatus       string            `gorm:"type:varchar(20);index;default:'pending'" json:"paymentStatus"`
	DeliveryStatus      string            `gorm:"type:varchar(20);default:'pending'" json:"deliveryStatus"`
	PaymentMethod       string            `gorm:"type:varchar(30);default:'bank_transfer'" json:"paymentMethod"`
	BankTransactionID   string            `json:"bankTransactionId,omitempty"`
	QRCodeURL           string            `json:"qrCodeUrl"`
	DeliveredAccounts   DeliveredAccounts `gorm:"type:jsonb" json:"deliveredAccounts"`
	Notes               string            `json:"notes,omitempty"`
	EstimatedDeliveryAt *time.Time        `json:"estimatedDeliveryAt,omitempty"`
	PaidAt              *time.Time        `json:"paidAt,omitempty"`
	DeliveredAt         *time.Time        `json:"deliveredAt,omitempty"`
	CancelledAt         *time.Time        `json:"cancelledAt,omitempty"`
	CancellationReason  string            `json:"cancellationReason,omitempty"`
}

// TotalQuantity is the number of units across all line items.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch raw := value.(type) {
	case []byte:
		data = raw
	case string:
		data = []byte(raw)
	default:
		return errors.New("unsupported jsonb source type")
	}
	return json.Unmarshal(data, dest)
}
