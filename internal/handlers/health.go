package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const serviceName = "pos-terminal"

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// Ready handles GET /ready
func (h *Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	h.checksMu.RLock()
	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	h.checksMu.RUnlock()

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"service": serviceName,
			"checks":  failed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": serviceName,
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Version handles GET /version
func (h *Handlers) Version(c *gin.Context) {
	resp := gin.H{
		"version":    "1.0.0",
		"service":    serviceName,
		"go_version": runtime.Version(),
		"built_at":   startTime.Format(time.RFC3339),
	}
	if h.config != nil {
		resp["terminal_id"] = h.config.POS.TerminalID
		resp["features"] = gin.H{
			"enable_cart_persistence": h.config.Features.EnableCartPersistence,
			"enable_order_events":     h.config.Features.EnableOrderEvents,
			"enable_journal":          h.config.Features.EnableJournal,
			"enable_status_sync":      h.config.Features.EnableStatusSync,
		}
	}
	c.JSON(http.StatusOK, resp)
}
