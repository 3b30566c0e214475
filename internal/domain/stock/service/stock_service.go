package service

import (
	"context"
	"errors"
	"fmt"

	catalogRepo "hashop_store/internal/domain/catalog/repository"
	"hashop_store/internal/domain/stock/model"
	"hashop_store/internal/domain/stock/repository"
	"hashop_store/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrInvalidVariant: the import named a variant the product does not have.
var ErrInvalidVariant = errors.New("variant does not exist on product")

// ImportRow is one credential in an admin stock import.
type ImportRow struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	AdditionalInfo string `json:"additionalInfo"`
}

type StockService interface {
	CountAvailable(productID, variantName string) (int64, error)
	Import(ctx context.Context, productID, variantName string, rows []ImportRow) (int, error)
	// Claim draws one credential for an order. Returns repository.ErrNoStock
	// when the pool is exhausted.
	Claim(ctx context.Context, productID, variantName, orderID string) (*model.StockEntry, error)
	List(productID, status string, offset, limit int) ([]model.StockEntry, int64, error)
	Delete(id string) error
}

type stockService struct {
	repo     repository.StockRepository
	products catalogRepo.ProductRepository
	rdb      *redis.Client
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewStockService(repo repository.StockRepository, products catalogRepo.ProductRepository,
	rdb *redis.Client, collector *metrics.Collector, log *zap.Logger) StockService {
	return &stockService{repo: repo, products: products, rdb: rdb, metrics: collector, log: log}
}

func (s *stockService) CountAvailable(productID, variantName string) (int64, error) {
	return s.repo.CountAvailable(productID, variantName)
}

func (s *stockService) Import(ctx context.Context, productID, variantName string, rows []ImportRow) (int, error) {
	product, err := s.products.GetByID(productID)
	if err != nil {
		return 0, err
	}

	found := false
	for _, v := range product.Variants {
		if v.Name == variantName {
			found = true
			break
		}
	}
	if !found {
		return 0, ErrInvalidVariant
	}

	entries := make([]model.StockEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.StockEntry{
			ProductID:      productID,
			VariantName:    variantName,
			Username:       row.Username,
			Password:       row.Password,
			AdditionalInfo: row.AdditionalInfo,
			Status:         model.StatusAvailable,
		})
	}

	count, err := s.repo.BulkInsert(entries)
	if err != nil {
		return 0, err
	}

	s.invalidateCount(ctx, productID, variantName)
	s.log.Info("stock imported",
		zap.String("product_id", productID),
		zap.String("variant", variantName),
		zap.Int("count", count))
	return count, nil
}

func (s *stockService) Claim(ctx context.Context, productID, variantName, orderID string) (*model.StockEntry, error) {
	entry, err := s.repo.ClaimOne(productID, variantName, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNoStock) && s.metrics != nil {
			s.metrics.StockClaim("stockout")
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.StockClaim("claimed")
	}
	s.invalidateCount(ctx, productID, variantName)
	return entry, nil
}

func (s *stockService) List(productID, status string, offset, limit int) ([]model.StockEntry, int64, error) {
	return s.repo.List(productID, status, offset, limit)
}

func (s *stockService) Delete(id string) error {
	return s.repo.Delete(id)
}

// invalidateCount drops the cached public stock count; best-effort.
func (s *stockService) invalidateCount(ctx context.Context, productID, variantName string) {
	if s.rdb == nil {
		return
	}
	key := fmt.Sprintf("stock:count:%s:%s", productID, variantName)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Debug("stock count cache invalidation failed", zap.Error(err))
	}
}
