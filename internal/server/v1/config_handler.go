package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calder-labs/provider-hub/internal/modelconfig"
	"github.com/calder-labs/provider-hub/internal/server/validator"
	"github.com/calder-labs/provider-hub/pkg/api"
)

type ConfigHandler struct {
	configs *modelconfig.Service
}

func NewConfigHandler(configs *modelconfig.Service) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

// Get returns a service's model configuration, defaulted when unset.
//
// GET /config/:service_name
func (h *ConfigHandler) Get(c *gin.Context) {
	cfg, err := h.configs.Get(c.Request.Context(), c.Param("service_name"))
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to read configuration", err))
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Set assigns a model to a service.
//
// POST /config
func (h *ConfigHandler) Set(c *gin.Context) {
	var req api.SetConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationProblem(validator.ParseError(err)))
		return
	}

	cfg, err := h.configs.Set(c.Request.Context(), req.ServiceName, req.ModelString, req.Temperature, req.MaxTokens)
	if err != nil {
		if errors.Is(err, modelconfig.ErrInvalidModelString) {
			_ = c.Error(api.BadRequestProblem(err.Error()))
			return
		}
		_ = c.Error(api.InternalProblem("Failed to save configuration", err))
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// List maps every service to its model string, defaults included.
//
// GET /config
func (h *ConfigHandler) List(c *gin.Context) {
	all, err := h.configs.GetAll(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to list configurations", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": all})
}

// Delete removes a stored configuration, reverting the service to its
// default model.
//
// DELETE /config/:service_name
func (h *ConfigHandler) Delete(c *gin.Context) {
	name := c.Param("service_name")

	ok, err := h.configs.Delete(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to delete configuration", err))
		return
	}
	if !ok {
		_ = c.Error(api.NotFoundProblem("No configuration for service: " + name))
		return
	}

	c.JSON(http.StatusOK, gin.H{"service_name": name, "deleted": true})
}
