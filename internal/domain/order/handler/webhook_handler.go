package handler

import (
	"net/http"
	"strings"

	"hashop_store/internal/domain/order/service"
	"hashop_store/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives bank-transfer notifications from the payment
// gateway. The gateway retries on non-200, so every processed event acks 200
// even when it matches nothing; only a store failure returns 5xx.
type WebhookHandler struct {
	reconcile service.ReconcileService
	apiKey    string
	log       *zap.Logger
}

func NewWebhookHandler(reconcile service.ReconcileService, apiKey string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{reconcile: reconcile, apiKey: apiKey, log: log}
}

// Handle processes one gateway event.
// @Summary Payment gateway webhook
// @Tags Webhook
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/webhook/sepay [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	if !h.authorized(c) {
		h.log.Warn("webhook rejected: bad api key", zap.String("ip", c.ClientIP()))
		response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Unauthorized")
		return
	}

	var evt service.WebhookEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		// Malformed payloads still ack so the gateway stops retrying junk.
		h.log.Warn("webhook payload unparseable", zap.Error(err))
		response.Success(c, gin.H{"result": "ignored"})
		return
	}

	outcome, err := h.reconcile.HandleWebhook(c.Request.Context(), evt)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, outcome)
}

// authorized checks the gateway's "Apikey <key>" Authorization scheme. An
// unconfigured key means the check is disabled (local development).
func (h *WebhookHandler) authorized(c *gin.Context) bool {
	if h.apiKey == "" {
		return true
	}
	auth := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(auth, "Apikey "); ok {
		return after == h.apiKey
	}
	return false
}
