package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"hashop_store/internal/domain/catalog/model"
	"hashop_store/internal/domain/catalog/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StockCounter is the slice of the stock ledger the catalog needs for the
// public stock-check endpoint.
type StockCounter interface {
	CountAvailable(productID, variantName string) (int64, error)
}

// StockStatus is the public answer to "can I buy this right now".
type StockStatus struct {
	ProductID   string            `json:"productId"`
	VariantName string            `json:"variantName"`
	StockPolicy model.StockPolicy `json:"stockType"`
	StockCount  int64             `json:"stockCount"`
	HasStock    bool              `json:"hasStock"`
	Message     string            `json:"message"`
}

type CatalogService interface {
	ListProducts() ([]model.Product, error)
	GetProduct(id string) (*model.Product, error)
	// ResolveVariant applies the selector chain: exact id, positional
	// index, name, then first variant. The bool reports whether the
	// first-variant fallback was taken.
	ResolveVariant(product *model.Product, selector string) (*model.Variant, bool)
	CheckStock(ctx context.Context, productID, selector string) (*StockStatus, error)
}

type catalogService struct {
	repo    repository.ProductRepository
	counter StockCounter
	rdb     *redis.Client
	log     *zap.Logger
}

func NewCatalogService(repo repository.ProductRepository, counter StockCounter, rdb *redis.Client, log *zap.Logger) CatalogService {
	return &catalogService{repo: repo, counter: counter, rdb: rdb, log: log}
}

func (s *catalogService) ListProducts() ([]model.Product, error) {
	return s.repo.ListActive()
}

func (s *catalogService) GetProduct(id string) (*model.Product, error) {
	return s.repo.GetByID(id)
}

func (s *catalogService) ResolveVariant(product *model.Product, selector string) (*model.Variant, bool) {
	if len(product.Variants) == 0 {
		return nil, false
	}

	if selector != "" {
		for i := range product.Variants {
			if product.Variants[i].ID == selector {
				return &product.Variants[i], false
			}
		}
		if idx, err := strconv.Atoi(selector); err == nil && idx >= 0 && idx < len(product.Variants) {
			return &product.Variants[idx], false
		}
		for i := range product.Variants {
			if product.Variants[i].Name == selector {
				return &product.Variants[i], false
			}
		}
	}

	// Ambiguous or missing selectors silently meant "first variant" in the
	// legacy storefront; keep the behavior but make it visible to operators.
	s.log.Warn("variant selector fell back to first variant",
		zap.String("product_id", product.ID),
		zap.String("selector", selector))
	return &product.Variants[0], true
}

const stockCacheTTL = 30 * time.Second

// CheckStock answers the storefront's availability probe. The count is
// advisory (the delivery-time claim is the source of truth), so a short
// redis cache in front of the ledger is acceptable.
func (s *catalogService) CheckStock(ctx context.Context, productID, selector string) (*StockStatus, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	variant, _ := s.ResolveVariant(product, selector)
	if variant == nil {
		return nil, repository.ErrProductNotFound
	}

	status := &StockStatus{
		ProductID:   productID,
		VariantName: variant.Name,
		StockPolicy: model.ParseStockPolicy(string(variant.StockPolicy)),
	}

	switch status.StockPolicy {
	case model.PolicyContact:
		status.HasStock = false
		status.StockCount = 0
		status.Message = "Cần liên hệ"
	case model.PolicyAvailable:
		count, err := s.cachedCount(ctx, productID, variant.Name)
		if err != nil {
			return nil, err
		}
		status.StockCount = count
		status.HasStock = count > 0
		if status.HasStock {
			status.Message = "Có sẵn hàng"
		} else {
			status.Message = "Hết hàng"
		}
	}
	return status, nil
}

func (s *catalogService) cachedCount(ctx context.Context, productID, variantName string) (int64, error) {
	key := fmt.Sprintf("stock:count:%s:%s", productID, variantName)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Int64(); err == nil {
			return cached, nil
		}
	}

	count, err := s.counter.CountAvailable(productID, variantName)
	if err != nil {
		return 0, err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, count, stockCacheTTL).Err(); err != nil {
			s.log.Debug("stock count cache write failed", zap.Error(err))
		}
	}
	return count, nil
}
