package repository

import (
	"errors"
	"time"

	"hashop_store/internal/domain/stock/model"

	"gorm.io/gorm"
)

var (
	// ErrNoStock: no available entry remained at claim time. This is a
	// normal stockout outcome, not a failure.
	ErrNoStock = errors.New("no available stock entry")
	// ErrEntrySold: sold entries are audit records and cannot be deleted.
	ErrEntrySold = errors.New("stock entry already sold")
	// ErrEntryNotFound is returned for unknown entry ids.
	ErrEntryNotFound = errors.New("stock entry not found")
)

type StockRepository interface {
	CountAvailable(productID, variantName string) (int64, error)
	BulkInsert(entries []model.StockEntry) (int, error)
	// ClaimOne atomically takes one available entry for the given order:
	// the selected row flips available→sold only if nobody else got there
	// first. Safe under concurrent claims on the same pool.
	ClaimOne(productID, variantName, orderID string) (*model.StockEntry, error)
	GetByID(id string) (*model.StockEntry, error)
	List(productID, status string, offset, limit int) ([]model.StockEntry, int64, error)
	Delete(id string) error
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) CountAvailable(productID, variantName string) (int64, error) {
	var count int64
	err := r.db.Model(&model.StockEntry{}).
		Where("product_id = ? AND variant_name = ? AND status = ?",
			productID, variantName, model.StatusAvailable).
		Count(&count).Error
	return count, err
}

func (r *stockRepository) BulkInsert(entries []model.StockEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if err := r.db.CreateInBatches(entries, 100).Error; err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ClaimOne picks the oldest available entry and performs a conditional
// update guarded on status. RowsAffected == 0 means another claimer won the
// race for that row; the pool shrank, so retry with the next candidate.
// Terminates because every lost race removes one candidate.
func (r *stockRepository) ClaimOne(productID, variantName, orderID string) (*model.StockEntry, error) {
	for {
		var candidate model.StockEntry
		err := r.db.Where("product_id = ? AND variant_name = ? AND status = ?",
			productID, variantName, model.StatusAvailable).
			Order("created_at ASC").
			First(&candidate).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoStock
		}
		if err != nil {
			return nil, err
		}

		now := time.Now()
		result := r.db.Model(&model.StockEntry{}).
			Where("id = ? AND status = ?", candidate.ID, model.StatusAvailable).
			Updates(map[string]interface{}{
				"status":           model.StatusSold,
				"sold_to_order_id": orderID,
				"sold_at":          now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			candidate.Status = model.StatusSold
			candidate.SoldToOrderID = &orderID
			candidate.SoldAt = &now
			return &candidate, nil
		}
	}
}

func (r *stockRepository) GetByID(id string) (*model.StockEntry, error) {
	var entry model.StockEntry
	if err := r.db.Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *stockRepository) List(productID, status string, offset, limit int) ([]model.StockEntry, int64, error) {
	query := r.db.Model(&model.StockEntry{})
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.StockEntry
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Delete refuses to touch sold entries; the conditional delete doubles as
// the guard so a concurrent sale cannot slip through between check and
// delete.
func (r *stockRepository) Delete(id string) error {
	result := r.db.Where("id = ? AND status <> ?", id, model.StatusSold).Delete(&model.StockEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(id); err != nil {
			return err
		}
		return ErrEntrySold
	}
	return nil
}
