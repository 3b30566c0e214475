package handler

import (
	"errors"
	"net/http"

	"hashop_store/internal/domain/order/repository"
	"hashop_store/internal/domain/order/service"
	"hashop_store/pkg/response"
	"hashop_store/pkg/utils"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders   service.OrderService
	delivery service.DeliveryService
}

func NewOrderHandler(orders service.OrderService, delivery service.DeliveryService) *OrderHandler {
	return &OrderHandler{orders: orders, delivery: delivery}
}

// Create places a new order and returns payment instructions.
// @Summary Create order
// @Tags Order
// @Accept json
// @Produce json
// @Param input body service.CreateOrderInput true "Order"
// @Success 200 {object} response.Response{data=service.CreateOrderResult}
// @Router /api/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.orders.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrNoValidItems) {
			response.Error(c, http.StatusBadRequest, response.ErrOrderNoValidItems, "Đơn hàng không có sản phẩm hợp lệ")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, result)
}

// Get returns an order by code or id.
// @Summary Get order
// @Tags Order
// @Produce json
// @Param code path string true "Order code or ID"
// @Success 200 {object} response.Response
// @Router /api/orders/{code} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Không tìm thấy đơn hàng")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, order)
}

// Status is the storefront's lightweight payment-status poll.
// @Summary Poll order status
// @Tags Order
// @Produce json
// @Param code path string true "Order code"
// @Success 200 {object} response.Response{data=service.OrderStatus}
// @Router /api/orders/{code}/status [get]
func (h *OrderHandler) Status(c *gin.Context) {
	status, err := h.orders.Status(c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Không tìm thấy đơn hàng")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, status)
}

// List pages through orders for the admin console.
// @Summary List orders
// @Tags Order
// @Produce json
// @Param paymentStatus query string false "Payment status filter"
// @Param deliveryStatus query string false "Delivery status filter"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /api/admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var page utils.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := page.GetPageOffset()

	orders, total, err := h.orders.List(c.Query("paymentStatus"), c.Query("deliveryStatus"), offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, utils.PageResult{
		List:  orders,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

// Deliver re-runs automatic fulfilment, typically after a stock import.
// @Summary Retry order delivery
// @Tags Order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response
// @Router /api/admin/orders/{id}/deliver [post]
func (h *OrderHandler) Deliver(c *gin.Context) {
	order, err := h.orders.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Không tìm thấy đơn hàng")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	result, err := h.delivery.Deliver(c.Request.Context(), order)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotPaid):
			response.Error(c, http.StatusBadRequest, response.ErrOrderNotPaid, "Đơn hàng chưa thanh toán")
		case errors.Is(err, service.ErrAlreadyDelivered):
			response.Error(c, http.StatusBadRequest, response.ErrOrderDelivered, "Đơn hàng đã giao đủ")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}
	response.Success(c, gin.H{
		"delivered": len(result.Delivered),
		"needsPrep": result.NeedsPrep,
		"completed": result.Completed,
	})
}

type updateStatusInput struct {
	PaymentStatus  string `json:"paymentStatus"`
	DeliveryStatus string `json:"deliveryStatus"`
}

// UpdateStatus lets an operator override order statuses.
// @Summary Update order status
// @Tags Order
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param input body updateStatusInput true "New statuses"
// @Success 200 {object} response.Response
// @Router /api/admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input updateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	err := h.orders.UpdateStatus(c.Param("id"), input.PaymentStatus, input.DeliveryStatus)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "Không tìm thấy đơn hàng")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, gin.H{"updated": true})
}
