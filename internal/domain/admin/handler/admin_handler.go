package handler

import (
	"errors"
	"net/http"
	"strconv"

	"hashop_store/internal/domain/admin/service"
	"hashop_store/internal/pkg/qrpay"
	"hashop_store/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service service.AdminService
	sepay   *qrpay.SepayClient
}

func NewAdminHandler(s service.AdminService, sepay *qrpay.SepayClient) *AdminHandler {
	return &AdminHandler{service: s, sepay: sepay}
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the operator account and issues a JWT.
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param input body loginInput true "Credentials"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Router /api/admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Login(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Sai tài khoản hoặc mật khẩu")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, result)
}

// Dashboard returns the order and stock summary.
// @Summary Admin dashboard stats
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response{data=repository.DashboardStats}
// @Router /api/admin/stats [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, stats)
}

// Revenue returns the daily revenue series for the chart.
// @Summary Daily revenue
// @Tags Admin
// @Produce json
// @Param days query int false "Window in days (default 30)"
// @Success 200 {object} response.Response
// @Router /api/admin/stats/revenue [get]
func (h *AdminHandler) Revenue(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	points, err := h.service.RevenueByDay(c.Request.Context(), days)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, points)
}

// Transactions proxies the gateway's recent-transaction list for manual
// reconciliation.
// @Summary Recent bank transactions
// @Tags Admin
// @Produce json
// @Param limit query int false "Max rows (default 20)"
// @Success 200 {object} response.Response
// @Router /api/admin/transactions [get]
func (h *AdminHandler) Transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	txs, err := h.sepay.GetTransactions(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, http.StatusBadGateway, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, gin.H{"transactions": txs, "configured": h.sepay.Configured()})
}
