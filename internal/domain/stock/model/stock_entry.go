package model

import (
	"time"

	baseModel "hashop_store/pkg/model"
)

// Entry statuses. available→sold happens exactly once, via the atomic claim
// in the repository; sold entries are immutable audit records.
const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusSold      = "sold"
)

// StockEntry is one credential held in inventory for a product variant.
type StockEntry struct {
	baseModel.BaseModel
	ProductID      string     `gorm:"type:uuid;index:idx_stock_pool;not null" json:"productId"`
	VariantName    string     `gorm:"type:varchar(255);index:idx_stock_pool" json:"variantName"`
	Username       string     `gorm:"not null" json:"username"`
	Password       string     `gorm:"not null" json:"password"`
	AdditionalInfo string     `json:"additionalInfo"`
	Status         string     `gorm:"type:varchar(20);index:idx_stock_pool;default:'available'" json:"status"`
	SoldToOrderID  *string    `gorm:"type:uuid" json:"soldToOrderId,omitempty"`
	SoldAt         *time.Time `json:"soldAt,omitempty"`
}
