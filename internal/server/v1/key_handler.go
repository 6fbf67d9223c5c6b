package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calder-labs/provider-hub/internal/credentials"
	"github.com/calder-labs/provider-hub/internal/server/validator"
	"github.com/calder-labs/provider-hub/pkg/api"
)

type KeyHandler struct {
	creds *credentials.Service
}

func NewKeyHandler(creds *credentials.Service) *KeyHandler {
	return &KeyHandler{creds: creds}
}

// Set stores a provider API key. The key never appears in responses.
//
// POST /keys
func (h *KeyHandler) Set(c *gin.Context) {
	var req api.SetKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationProblem(validator.ParseError(err)))
		return
	}

	if err := h.creds.Set(c.Request.Context(), req.Provider, req.APIKey, req.BaseURL); err != nil {
		_ = c.Error(api.InternalProblem("Failed to store credential", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"provider": req.Provider, "stored": true})
}

// Providers lists providers with a usable key.
//
// GET /keys/providers
func (h *KeyHandler) Providers(c *gin.Context) {
	providers, err := h.creds.ActiveProviders(c.Request.Context())
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to list providers", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

// Delete deactivates a stored key.
//
// DELETE /keys/:provider
func (h *KeyHandler) Delete(c *gin.Context) {
	provider := c.Param("provider")

	ok, err := h.creds.Deactivate(c.Request.Context(), provider)
	if err != nil {
		_ = c.Error(api.InternalProblem("Failed to deactivate credential", err))
		return
	}
	if !ok {
		_ = c.Error(api.NotFoundProblem("No credential for provider: " + provider))
		return
	}

	c.JSON(http.StatusOK, gin.H{"provider": provider, "deactivated": true})
}
