package repository

import (
	"errors"

	"hashop_store/internal/domain/catalog/model"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when the id matches no product.
var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	GetByID(id string) (*model.Product, error)
	ListActive() ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListActive() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Where("is_active = ?", true).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
