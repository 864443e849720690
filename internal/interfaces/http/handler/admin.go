package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/receipt-relay/backend/internal/infrastructure/logger"
	"github.com/receipt-relay/backend/internal/interfaces/http/router"
)

// LatestReceiptFetcher reads the most recent receipt back from the platform
type LatestReceiptFetcher interface {
	FetchLatestReceipt(ctx context.Context) ([]byte, error)
}

// AdminHandler exposes operator endpoints. Unlike the webhook, these are
// called by a human who wants to know what actually happened, so failures
// surface in the response.
type AdminHandler struct {
	fetcher LatestReceiptFetcher
	relayer Relayer
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(fetcher LatestReceiptFetcher, relayer Relayer) *AdminHandler {
	return &AdminHandler{fetcher: fetcher, relayer: relayer}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("admin", "/admin").
		POST("/receipts/resend-latest", h.ResendLatestReceipt).
		RegisterRoutes(rg)
}

// ResendLatestReceipt fetches the newest receipt from the platform and runs
// it through the relay pipeline, as if the webhook had just fired
func (h *AdminHandler) ResendLatestReceipt(c *gin.Context) {
	log := logger.GetGinLogger(c)

	payload, err := h.fetcher.FetchLatestReceipt(c.Request.Context())
	if err != nil {
		log.Error("failed to fetch latest receipt from platform", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"status": "error",
			"error":  "failed to fetch latest receipt from platform",
		})
		return
	}

	result := h.relayer.Relay(c.Request.Context(), payload)

	delivered := result.Outcome != nil && result.Outcome.Delivered
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"receipt":   result.ReceiptNumber,
		"stage":     string(result.Stage),
		"delivered": delivered,
	})
}
