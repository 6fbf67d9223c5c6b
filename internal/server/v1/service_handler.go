package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calder-labs/provider-hub/internal/registry"
	"github.com/calder-labs/provider-hub/internal/server/validator"
	"github.com/calder-labs/provider-hub/pkg/api"
)

type ServiceHandler struct {
	registry *registry.Service
}

func NewServiceHandler(reg *registry.Service) *ServiceHandler {
	return &ServiceHandler{registry: reg}
}

// Register creates or updates a registry entry.
//
// POST /services/register
func (h *ServiceHandler) Register(c *gin.Context) {
	var req api.RegisterServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationProblem(validator.ParseError(err)))
		return
	}

	entry, err := h.registry.Register(c.Request.Context(), registry.Registration{
		ServiceName:         req.ServiceName,
		DisplayName:         req.DisplayName,
		Description:         req.Description,
		Icon:                req.Icon,
		Category:            req.Category,
		ServiceType:         req.ServiceType,
		ModelType:           req.ModelType,
		Location:            req.Location,
		SupportsTemperature: req.SupportsTemperature,
		SupportsMaxTokens:   req.SupportsMaxTokens,
		DefaultModel:        req.DefaultModel,
		CostProfile:         req.CostProfile,
		OwnerTeam:           req.OwnerTeam,
		ContactEmail:        req.ContactEmail,
		DocumentationURL:    req.DocumentationURL,
	})
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to register service", err))
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListRegistry returns the full registry.
//
// GET /services/registry?active_only=&category=
func (h *ServiceHandler) ListRegistry(c *gin.Context) {
	activeOnly := c.DefaultQuery("active_only", "true") != "false"

	entries, err := h.registry.GetAll(c.Request.Context(), activeOnly, c.Query("category"))
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to list registry", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"count":  len(entries),
		"data":   entries,
	})
}

// Agents lists registered agents.
//
// GET /services/agents
func (h *ServiceHandler) Agents(c *gin.Context) {
	entries, err := h.registry.Agents(c.Request.Context(), true)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to list agents", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"object": "list", "count": len(entries), "data": entries})
}

// Backend lists registered backend services.
//
// GET /services/backend
func (h *ServiceHandler) Backend(c *gin.Context) {
	entries, err := h.registry.BackendServices(c.Request.Context(), true)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to list backend services", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"object": "list", "count": len(entries), "data": entries})
}

// Get returns one registry entry.
//
// GET /services/:service_name
func (h *ServiceHandler) Get(c *gin.Context) {
	name := c.Param("service_name")

	entry, err := h.registry.Get(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to read service", err))
		return
	}
	if entry == nil {
		_ = c.Error(api.NotFoundProblem("Service not found: " + name))
		return
	}

	c.JSON(http.StatusOK, entry)
}

// SyncRegistry reconciles the registry against observed model configs,
// auto-registering anything missing.
//
// POST /services/registry/sync
func (h *ServiceHandler) SyncRegistry(c *gin.Context) {
	report := h.registry.SyncWithModelConfigs(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

// InitializeRegistry reconciles and returns the resulting statistics.
//
// POST /services/registry/initialize
func (h *ServiceHandler) InitializeRegistry(c *gin.Context) {
	report := h.registry.SyncWithModelConfigs(c.Request.Context())

	stats, err := h.registry.Statistics(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to read registry statistics", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sync_result": report,
		"statistics":  stats,
	})
}

// Validate audits the registry without changing it.
//
// GET /services/registry/validate
func (h *ServiceHandler) Validate(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.ValidateCompleteness(c.Request.Context()))
}

// Statistics summarizes the registry.
//
// GET /services/registry/statistics
func (h *ServiceHandler) Statistics(c *gin.Context) {
	stats, err := h.registry.Statistics(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to read registry statistics", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Deprecate soft-deprecates a service.
//
// POST /services/:service_name/deprecate?reason=&replacement_service=
func (h *ServiceHandler) Deprecate(c *gin.Context) {
	name := c.Param("service_name")
	reason := c.Query("reason")
	replacement := c.Query("replacement_service")

	if !h.registry.Deprecate(c.Request.Context(), name, reason, replacement) {
		_ = c.Error(api.NotFoundProblem("Service not found: " + name))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service_name": name,
		"deprecated":   true,
	})
}
