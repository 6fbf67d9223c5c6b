package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/cache"
	"github.com/calder-labs/provider-hub/internal/httpclient"
)

const catalogCacheKey = "catalog:openrouter"

// wireModel mirrors the aggregator's model listing entry. Prices arrive as
// per-token decimal strings.
type wireModel struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ContextLength int    `json:"context_length"`
	Pricing       struct {
		Prompt     string `json:"prompt"`
		Completion string `json:"completion"`
	} `json:"pricing"`
	Architecture struct {
		InputModalities []string `json:"input_modalities"`
	} `json:"architecture"`
	SupportedParameters []string `json:"supported_parameters"`
}

type wireResponse struct {
	Data []wireModel `json:"data"`
}

// OpenRouterClient fetches the remote catalog with a short-lived injected
// cache in front of it.
type OpenRouterClient struct {
	httpClient *http.Client
	baseURL    string
	cache      cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

func NewOpenRouterClient(baseURL string, timeout, ttl time.Duration, c cache.Cache, logger *zap.Logger) *OpenRouterClient {
	return &OpenRouterClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cache:      c,
		ttl:        ttl,
		logger:     logger,
	}
}

// FetchRemote returns the current catalog grouped by provider. Results are
// served from the cache until the TTL lapses; forceRefresh drops the cached
// entry first. A single malformed upstream record is logged and skipped,
// never failing the whole fetch.
func (c *OpenRouterClient) FetchRemote(ctx context.Context, forceRefresh bool) (map[string][]RawModel, error) {
	if forceRefresh {
		_ = c.cache.Delete(ctx, catalogCacheKey)
	} else {
		var cached map[string][]RawModel
		if err := c.cache.Get(ctx, catalogCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	headers := map[string]string{"Accept": "application/json"}

	var wire wireResponse
	if err := httpclient.SendRequest(ctx, c.httpClient, http.MethodGet, c.baseURL+"/models", headers, nil, &wire); err != nil {
		return nil, fmt.Errorf("catalog fetch failed: %w", err)
	}

	byProvider := make(map[string][]RawModel)
	for _, entry := range wire.Data {
		raw, err := c.parseEntry(entry)
		if err != nil {
			c.logger.Warn("Skipping malformed catalog entry",
				zap.String("id", entry.ID),
				zap.Error(err))
			continue
		}
		byProvider[raw.Provider] = append(byProvider[raw.Provider], raw)
	}

	if err := c.cache.Set(ctx, catalogCacheKey, byProvider, c.ttl); err != nil {
		c.logger.Warn("Failed to cache catalog", zap.Error(err))
	}

	return byProvider, nil
}

func (c *OpenRouterClient) parseEntry(entry wireModel) (RawModel, error) {
	provider, modelID, ok := strings.Cut(entry.ID, "/")
	if !ok || provider == "" || modelID == "" {
		return RawModel{}, fmt.Errorf("model id %q is not provider/model", entry.ID)
	}

	// Per-token price string to USD per million tokens.
	inputCost, err := parsePrice(entry.Pricing.Prompt)
	if err != nil {
		return RawModel{}, fmt.Errorf("prompt price: %w", err)
	}
	outputCost, err := parsePrice(entry.Pricing.Completion)
	if err != nil {
		return RawModel{}, fmt.Errorf("completion price: %w", err)
	}

	name := entry.Name
	if name == "" {
		name = modelID
	}

	return RawModel{
		Provider:          provider,
		ModelID:           modelID,
		DisplayName:       name,
		Description:       entry.Description,
		ContextLength:     entry.ContextLength,
		InputCost:         inputCost,
		OutputCost:        outputCost,
		IsFree:            inputCost == 0 && outputCost == 0,
		SupportsVision:    contains(entry.Architecture.InputModalities, "image"),
		SupportsTools:     contains(entry.SupportedParameters, "tools"),
		SupportsReasoning: contains(entry.SupportedParameters, "reasoning"),
	}, nil
}

func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	perToken, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if perToken < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return perToken * tokensPerMillion, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
