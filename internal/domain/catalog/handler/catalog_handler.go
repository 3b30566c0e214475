package handler

import (
	"errors"
	"net/http"

	"hashop_store/internal/domain/catalog/repository"
	"hashop_store/internal/domain/catalog/service"
	"hashop_store/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// ListProducts returns all active products.
// @Summary List active products
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, products)
}

// GetProduct returns a single product with its variants.
// @Summary Get product detail
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response.Response
// @Router /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Không tìm thấy sản phẩm")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, product)
}

// CheckStock reports availability for a product variant.
// @Summary Check variant stock
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Param variant query string false "Variant selector (id, index or name)"
// @Success 200 {object} response.Response{data=service.StockStatus}
// @Router /api/products/{id}/stock [get]
func (h *CatalogHandler) CheckStock(c *gin.Context) {
	status, err := h.service.CheckStock(c.Request.Context(), c.Param("id"), c.Query("variant"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Không tìm thấy sản phẩm")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, status)
}
