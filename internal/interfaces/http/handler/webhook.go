package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/receipt-relay/backend/internal/application/relay"
	"github.com/receipt-relay/backend/internal/infrastructure/logger"
	"github.com/receipt-relay/backend/internal/interfaces/http/router"
)

// maxWebhookPayloadSize bounds the webhook body (64KB, receipts are small)
const maxWebhookPayloadSize = 65536

// Relayer runs the receipt relay pipeline for one raw payload
type Relayer interface {
	Relay(ctx context.Context, raw []byte) *relay.Result
}

// WebhookHandler receives receipt notifications from the commerce platform.
// The platform retries on non-200 responses, and a malformed or undeliverable
// receipt will not improve on retry, so every processed request is answered
// with 200 regardless of the pipeline outcome.
type WebhookHandler struct {
	relayer Relayer
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(relayer Relayer) *WebhookHandler {
	return &WebhookHandler{relayer: relayer}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("webhook", "").
		POST("/webhook", h.HandleReceiptWebhook).
		RegisterRoutes(rg)
}

// HandleReceiptWebhook processes one receipt notification
func (h *WebhookHandler) HandleReceiptWebhook(c *gin.Context) {
	log := logger.GetGinLogger(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize))
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	result := h.relayer.Relay(c.Request.Context(), payload)

	log.Info("webhook processed",
		zap.String("receipt", result.ReceiptNumber),
		zap.String("stage", string(result.Stage)))

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
