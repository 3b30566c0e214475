package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	baseModel "hashop_store/pkg/model"
)

// StockPolicy decides how a variant is fulfilled after payment.
type StockPolicy string

const (
	// PolicyAvailable: delivered automatically from the credential pool.
	PolicyAvailable StockPolicy = "available"
	// PolicyContact: always fulfilled manually by an operator.
	PolicyContact StockPolicy = "contact"
)

// ParseStockPolicy normalizes stored/legacy values; empty means available.
func ParseStockPolicy(s string) StockPolicy {
	if StockPolicy(s) == PolicyContact {
		return PolicyContact
	}
	return PolicyAvailable
}

// Variant is one purchasable package of a product (e.g. "1 tháng").
type Variant struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         int64       `json:"price"` // VND
	DurationValue int         `json:"duration_value"`
	DurationUnit  string      `json:"duration_unit"` // day, month, year
	StockPolicy   StockPolicy `json:"stockType"`
}

// Variants is stored as a jsonb column.
type Variants []Variant

func (v Variants) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	return json.Marshal(v)
}

func (v *Variants) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	var data []byte
	switch raw := value.(type) {
	case []byte:
		data = raw
	case string:
		data = []byte(raw)
	default:
		return errors.New("unsupported type for Variants")
	}
	return json.Unmarshal(data, v)
}

// Product is a sellable digital good with one or more variants.
type Product struct {
	baseModel.BaseModel
	Name        string   `gorm:"type:varchar(255);not null" json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Category    string   `gorm:"type:varchar(100);default:'other'" json:"category"`
	Variants    Variants `gorm:"type:jsonb" json:"variants"`
	IsActive    bool     `gorm:"default:true" json:"isActive"`
}
