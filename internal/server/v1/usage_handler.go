package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/calder-labs/provider-hub/internal/registry"
	"github.com/calder-labs/provider-hub/internal/server/validator"
	"github.com/calder-labs/provider-hub/internal/usage"
	"github.com/calder-labs/provider-hub/pkg/api"
)

type UsageHandler struct {
	usage    *usage.Service
	registry *registry.Service
}

func NewUsageHandler(usageSvc *usage.Service, reg *registry.Service) *UsageHandler {
	return &UsageHandler{
		usage:    usageSvc,
		registry: reg,
	}
}

// Track records one request's token usage and stamps the service's
// last_used in the registry.
//
// POST /usage/track
func (h *UsageHandler) Track(c *gin.Context) {
	var req api.TrackUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationProblem(validator.ParseError(err)))
		return
	}

	cost, err := h.usage.Track(c.Request.Context(), req.ServiceName, req.ModelString, req.InputTokens, req.OutputTokens)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to track usage", err))
		return
	}

	h.registry.TouchLastUsed(c.Request.Context(), req.ServiceName)

	c.JSON(http.StatusCreated, gin.H{
		"service_name": req.ServiceName,
		"model_string": req.ModelString,
		"cost":         cost,
	})
}

// Summary aggregates usage by service over the window.
//
// GET /usage/summary?days=
func (h *UsageHandler) Summary(c *gin.Context) {
	days, ok := h.days(c, 30)
	if !ok {
		return
	}

	summary, err := h.usage.Summary(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to summarize usage", err))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Daily returns per-day cost totals.
//
// GET /usage/daily?days=
func (h *UsageHandler) Daily(c *gin.Context) {
	days, ok := h.days(c, 7)
	if !ok {
		return
	}

	costs, err := h.usage.DailyCosts(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to read daily costs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "data": costs})
}

// EstimateMonthly projects a 30-day cost from recent spend.
//
// GET /usage/estimate/monthly?days=
func (h *UsageHandler) EstimateMonthly(c *gin.Context) {
	days, ok := h.days(c, 7)
	if !ok {
		return
	}

	estimate, err := h.usage.EstimateMonthly(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to estimate monthly cost", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"based_on_days":          days,
		"estimated_monthly_cost": estimate,
	})
}

// TopModels returns the most expensive models by tracked cost.
//
// GET /usage/models/top?limit=
func (h *UsageHandler) TopModels(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit <= 0 {
		_ = c.Error(api.BadRequestProblem("Invalid 'limit' parameter"))
		return
	}

	models, err := h.usage.TopModels(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to read top models", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"object": "list", "data": models})
}

func (h *UsageHandler) days(c *gin.Context, fallback int) (int, bool) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(fallback)))
	if err != nil || days <= 0 {
		_ = c.Error(api.BadRequestProblem("Invalid 'days' parameter"))
		return 0, false
	}
	return days, true
}
