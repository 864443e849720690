package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/receipt-relay/backend/internal/interfaces/http/router"
)

// SystemHandler handles liveness and service metadata endpoints
type SystemHandler struct {
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("system", "").
		GET("/healthz", h.Healthz).
		RegisterRoutes(rg)
}

// Healthz reports process liveness
func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"go_version": runtime.Version(),
		"uptime":     time.Since(h.startTime).Round(time.Second).String(),
	})
}
