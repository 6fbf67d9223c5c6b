package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calder-labs/provider-hub/internal/sync"
	"github.com/calder-labs/provider-hub/pkg/api"
)

type SyncHandler struct {
	service *sync.Service
}

func NewSyncHandler(service *sync.Service) *SyncHandler {
	return &SyncHandler{service: service}
}

// Sync runs a full catalog sync against all sources and returns the merged
// report. Source failures are reported in the body, not as HTTP errors.
//
// POST /models/sync?force_refresh=
func (h *SyncHandler) Sync(c *gin.Context) {
	forceRefresh := c.Query("force_refresh") == "true"

	report := h.service.FullSync(c.Request.Context(), forceRefresh)
	c.JSON(http.StatusOK, report)
}

// SyncStatus summarizes the synced catalog per provider.
//
// GET /models/sync/status
func (h *SyncHandler) SyncStatus(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to read sync status", err))
		return
	}
	c.JSON(http.StatusOK, status)
}

// Initialize runs a full sync and returns the resulting catalog summary in
// one call, for first-boot setup flows.
//
// POST /models/initialize?force_refresh=
func (h *SyncHandler) Initialize(c *gin.Context) {
	forceRefresh := c.Query("force_refresh") == "true"

	report := h.service.FullSync(c.Request.Context(), forceRefresh)

	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to read catalog status after sync", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sync_result": report,
		"status":      status,
	})
}
