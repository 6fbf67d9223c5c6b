package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calder-labs/provider-hub/internal/store"
)

type HealthHandler struct {
	repo      store.Repository
	startTime time.Time
}

func NewHealthHandler(repo store.Repository) *HealthHandler {
	return &HealthHandler{
		repo:      repo,
		startTime: time.Now(),
	}
}

// Health returns the health status and uptime of the API.
//
// This endpoint is used by load balancers and monitoring systems
// to verify the service is running.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(h.startTime).String(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready checks if the service is ready to handle requests.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if _, err := h.repo.Models().ProviderStatistics(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
