// Package modelconfig manages per-service model selection: which
// provider:model string each service runs, with sane defaults for
// well-known services.
package modelconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

// ErrInvalidModelString marks a model string that failed validation.
var ErrInvalidModelString = errors.New("invalid model string")

const (
	defaultTemperature = 0.7
	fallbackModel      = "openai:gpt-4o-mini"

	// maxCatalogAge is how stale the model catalog may get before a config
	// write opportunistically kicks off a background refresh.
	maxCatalogAge = 24 * time.Hour
)

// defaultModels covers the well-known services so a fresh install works
// before anyone writes a config.
var defaultModels = map[string]string{
	"rag_agent":      "openai:gpt-4o-mini",
	"document_agent": "anthropic:claude-3-haiku-20240307",
	"embeddings":     "openai:text-embedding-3-small",
	"chat_agent":     "openai:gpt-4o",
	"code_agent":     "anthropic:claude-3-5-sonnet-20241022",
	"vision_agent":   "openai:gpt-4o",
}

var validProviders = map[string]struct{}{
	"openai":     {},
	"anthropic":  {},
	"google":     {},
	"groq":       {},
	"mistral":    {},
	"cohere":     {},
	"ai21":       {},
	"replicate":  {},
	"together":   {},
	"fireworks":  {},
	"openrouter": {},
	"deepseek":   {},
	"xai":        {},
	"ollama":     {},
}

// RegistryNotifier keeps the service registry's cached default model in
// step with configuration writes.
type RegistryNotifier interface {
	UpdateDefaultModel(ctx context.Context, serviceName, modelString string) bool
}

// CatalogRefresher lets a config write opportunistically refresh a stale
// model catalog in the background.
type CatalogRefresher interface {
	ShouldSync(ctx context.Context, maxAge time.Duration) bool
	TriggerBackground(forceRefresh bool)
}

type Service struct {
	logger    *zap.Logger
	repo      store.Repository
	registry  RegistryNotifier
	refresher CatalogRefresher
}

// NewService builds the configuration service. registry and refresher may
// be nil; both are best-effort side channels.
func NewService(logger *zap.Logger, repo store.Repository, registry RegistryNotifier, refresher CatalogRefresher) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		registry:  registry,
		refresher: refresher,
	}
}

// Get returns the stored configuration, or a default one when the service
// has never been configured.
func (s *Service) Get(ctx context.Context, serviceName string) (model.ModelConfig, error) {
	cfg, err := s.repo.Configs().Get(ctx, serviceName)
	if err != nil {
		return model.ModelConfig{}, err
	}
	if cfg != nil {
		return *cfg, nil
	}

	modelString, ok := defaultModels[serviceName]
	if !ok {
		modelString = fallbackModel
	}
	return model.ModelConfig{
		ServiceName: serviceName,
		ModelString: modelString,
		Temperature: defaultTemperature,
	}, nil
}

// Set validates and persists a configuration, then (detached) keeps the
// registry's default model aligned and refreshes the catalog if stale.
func (s *Service) Set(ctx context.Context, serviceName, modelString string, temperature *float64, maxTokens *int64) (model.ModelConfig, error) {
	if err := ValidateModelString(modelString); err != nil {
		return model.ModelConfig{}, err
	}

	cfg := model.ModelConfig{
		ServiceName: serviceName,
		ModelString: modelString,
		Temperature: defaultTemperature,
	}
	if temperature != nil {
		cfg.Temperature = *temperature
	}
	if maxTokens != nil {
		cfg.MaxTokens = sql.NullInt64{Int64: *maxTokens, Valid: true}
	}

	saved, err := s.repo.Configs().Save(ctx, cfg)
	if err != nil {
		return model.ModelConfig{}, err
	}

	s.logger.Info("Model configuration updated",
		zap.String("service", serviceName),
		zap.String("model", modelString))

	// Side effects must never fail the write that triggered them.
	if s.registry != nil {
		go s.registry.UpdateDefaultModel(context.Background(), serviceName, modelString)
	}
	if s.refresher != nil && s.refresher.ShouldSync(ctx, maxCatalogAge) {
		s.refresher.TriggerBackground(false)
	}

	return *saved, nil
}

// GetAll maps every service to its model string, filling in defaults for
// well-known services that have no stored config.
func (s *Service) GetAll(ctx context.Context) (map[string]string, error) {
	configs, err := s.repo.Configs().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(configs)+len(defaultModels))
	for _, cfg := range configs {
		out[cfg.ServiceName] = cfg.ModelString
	}
	for service, modelString := range defaultModels {
		if _, ok := out[service]; !ok {
			out[service] = modelString
		}
	}
	return out, nil
}

// Delete returns false when the service had no stored configuration.
func (s *Service) Delete(ctx context.Context, serviceName string) (bool, error) {
	return s.repo.Configs().Delete(ctx, serviceName)
}

// Provider returns the provider half of the service's current model string.
func (s *Service) Provider(ctx context.Context, serviceName string) (string, error) {
	cfg, err := s.Get(ctx, serviceName)
	if err != nil {
		return "", err
	}
	provider, _, _ := strings.Cut(cfg.ModelString, ":")
	return provider, nil
}

// BulkUpdateProvider moves every service off oldProvider. modelMappings
// overrides the target model per old model string; otherwise the model id
// is kept under the new provider. Returns the number of configs rewritten.
func (s *Service) BulkUpdateProvider(ctx context.Context, oldProvider, newProvider string, modelMappings map[string]string) (int, error) {
	if _, ok := validProviders[newProvider]; !ok {
		return 0, fmt.Errorf("%w: unknown provider: %s", ErrInvalidModelString, newProvider)
	}

	configs, err := s.repo.Configs().GetAll(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, cfg := range configs {
		provider, modelID, _ := strings.Cut(cfg.ModelString, ":")
		if provider != oldProvider {
			continue
		}

		target, ok := modelMappings[cfg.ModelString]
		if !ok {
			target = newProvider + ":" + modelID
		}

		cfg.ModelString = target
		if _, err := s.repo.Configs().Save(ctx, cfg); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// ValidateModelString checks the provider:model format against the known
// provider list.
func ValidateModelString(modelString string) error {
	provider, _, found := strings.Cut(modelString, ":")
	if !found || provider == "" {
		return fmt.Errorf("%w: %s (expected provider:model)", ErrInvalidModelString, modelString)
	}
	if _, ok := validProviders[provider]; !ok {
		return fmt.Errorf("%w: unknown provider: %s (valid: %s)", ErrInvalidModelString, provider, strings.Join(providerList(), ", "))
	}
	return nil
}

func providerList() []string {
	out := make([]string, 0, len(validProviders))
	for p := range validProviders {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
