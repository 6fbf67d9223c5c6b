package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calder-labs/provider-hub/internal/catalog"
	"github.com/calder-labs/provider-hub/internal/credentials"
	"github.com/calder-labs/provider-hub/internal/server/validator"
	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
	"github.com/calder-labs/provider-hub/internal/sync"
	"github.com/calder-labs/provider-hub/pkg/api"
)

type ModelHandler struct {
	repo    store.Repository
	service *sync.Service
	creds   *credentials.Service
}

func NewModelHandler(repo store.Repository, service *sync.Service, creds *credentials.Service) *ModelHandler {
	return &ModelHandler{
		repo:    repo,
		service: service,
		creds:   creds,
	}
}

// List returns the synced catalog, optionally filtered.
//
// GET /models?provider=&type=
func (h *ModelHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	activeOnly := c.DefaultQuery("active_only", "true") != "false"

	var (
		models []model.ModelRecord
		err    error
	)
	switch {
	case c.Query("provider") != "":
		models, err = h.repo.Models().GetByProvider(ctx, c.Query("provider"), activeOnly)
	case c.Query("type") == model.ModelTypeEmbedding:
		models, err = h.repo.Models().GetByType(ctx, true, activeOnly)
	case c.Query("type") == model.ModelTypeLLM:
		models, err = h.repo.Models().GetByType(ctx, false, activeOnly)
	default:
		models, err = h.repo.Models().GetAll(ctx, activeOnly)
	}
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to list models", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"count":  len(models),
		"data":   models,
	})
}

// Available returns models from providers the caller can actually use:
// those with an active credential, plus local ollama.
//
// GET /models/available
func (h *ModelHandler) Available(c *gin.Context) {
	ctx := c.Request.Context()

	providers, err := h.creds.ActiveProviders(ctx)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to resolve active providers", err))
		return
	}
	if len(providers) == 0 {
		_ = c.Error(api.NotFoundProblem("No providers with active credentials"))
		return
	}

	models, err := h.service.AvailableForProviders(ctx, providers)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to list available models", err))
		return
	}
	if len(models) == 0 {
		_ = c.Error(api.NotFoundProblem("No models available for the configured providers"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object":    "list",
		"providers": providers,
		"count":     len(models),
		"data":      models,
	})
}

// Activate puts a model back in rotation.
//
// POST /models/:model_string/activate
func (h *ModelHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate pulls a model from rotation without deleting it.
//
// POST /models/:model_string/deactivate
func (h *ModelHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *ModelHandler) setActive(c *gin.Context, active bool) {
	modelString := c.Param("model_string")

	var ok bool
	if active {
		ok = h.service.ReactivateModel(c.Request.Context(), modelString)
	} else {
		ok = h.service.DeactivateModel(c.Request.Context(), modelString)
	}
	if !ok {
		_ = c.Error(api.NotFoundProblem("Model not found: " + modelString))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"model_string": modelString,
		"is_active":    active,
	})
}

// Add inserts a model into the catalog by hand, for providers the
// aggregator doesn't cover.
//
// POST /models
func (h *ModelHandler) Add(c *gin.Context) {
	var req api.AddModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationProblem(validator.ParseError(err)))
		return
	}

	ok := h.service.AddManualModel(c.Request.Context(), toRawModel(req))
	if !ok {
		_ = c.Error(api.InternalProblem("Failed to store model", nil))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"model_string": req.Provider + ":" + req.ModelID,
	})
}

func toRawModel(req api.AddModelRequest) catalog.RawModel {
	return catalog.RawModel{
		Provider:          req.Provider,
		ModelID:           req.ModelID,
		DisplayName:       req.Name,
		Description:       req.Description,
		ContextLength:     req.ContextLength,
		InputCost:         req.InputCost,
		OutputCost:        req.OutputCost,
		IsFree:            req.IsFree,
		SupportsVision:    req.SupportsVision,
		SupportsTools:     req.SupportsTools,
		SupportsReasoning: req.SupportsReasoning,
		IsEmbedding:       req.IsEmbedding,
	}
}
