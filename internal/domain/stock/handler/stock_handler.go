package handler

import (
	"errors"
	"net/http"

	catalogRepo "hashop_store/internal/domain/catalog/repository"
	"hashop_store/internal/domain/stock/repository"
	"hashop_store/internal/domain/stock/service"
	"hashop_store/pkg/response"
	"hashop_store/pkg/utils"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

type ImportInput struct {
	ProductID   string              `json:"productId" binding:"required"`
	VariantName string              `json:"variantName" binding:"required"`
	Entries     []service.ImportRow `json:"entries" binding:"required,min=1,dive"`
}

// Import bulk-inserts credentials into the ledger.
// @Summary Import stock entries
// @Tags Stock
// @Accept json
// @Produce json
// @Param input body ImportInput true "Entries"
// @Success 200 {object} response.Response
// @Router /api/admin/stock/import [post]
func (h *StockHandler) Import(c *gin.Context) {
	var input ImportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	count, err := h.service.Import(c.Request.Context(), input.ProductID, input.VariantName, input.Entries)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVariant):
			response.Error(c, http.StatusBadRequest, response.ErrStockInvalidVariant, "Gói sản phẩm không tồn tại")
		case errors.Is(err, catalogRepo.ErrProductNotFound):
			response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Không tìm thấy sản phẩm")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}
	response.Success(c, gin.H{"imported": count})
}

// List pages through ledger entries with optional filters.
// @Summary List stock entries
// @Tags Stock
// @Produce json
// @Param productId query string false "Product ID"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /api/admin/stock [get]
func (h *StockHandler) List(c *gin.Context) {
	var page utils.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := page.GetPageOffset()

	entries, total, err := h.service.List(c.Query("productId"), c.Query("status"), offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  entries,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

// Delete removes an unsold entry.
// @Summary Delete stock entry
// @Tags Stock
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Response
// @Router /api/admin/stock/{id} [delete]
func (h *StockHandler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEntrySold):
			response.Error(c, http.StatusBadRequest, response.ErrStockEntrySold, "Tài khoản đã bán, không thể xóa")
		case errors.Is(err, repository.ErrEntryNotFound):
			response.Error(c, http.StatusNotFound, response.ErrStockNotFound, "Không tìm thấy tài khoản")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
