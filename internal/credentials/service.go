// Package credentials stores provider API keys encrypted at rest.
// Environment variables always win over stored keys, so deployments can
// inject secrets without touching the database.
package credentials

import (
	"context"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

// baseURLDefaults fills in the API endpoint for providers with a well-known
// one when the caller doesn't supply an override.
var baseURLDefaults = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"anthropic":  "https://api.anthropic.com/v1",
	"google":     "https://generativelanguage.googleapis.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
}

type Service struct {
	logger *zap.Logger
	repo   store.Repository
	sealer *Sealer
}

func NewService(logger *zap.Logger, repo store.Repository, sealer *Sealer) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
		sealer: sealer,
	}
}

// envVar is the override variable for a provider, e.g. OPENAI_API_KEY.
func envVar(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// keyHint keeps just enough of the key to recognize it in listings.
func keyHint(apiKey string) string {
	if len(apiKey) <= 4 {
		return "****"
	}
	return "..." + apiKey[len(apiKey)-4:]
}

// Set seals and stores an API key. An empty baseURL falls back to the
// provider's default endpoint when one is known.
func (s *Service) Set(ctx context.Context, provider, apiKey, baseURL string) error {
	sealed, err := s.sealer.Seal(apiKey)
	if err != nil {
		return err
	}

	if baseURL == "" {
		baseURL = baseURLDefaults[provider]
	}

	err = s.repo.Credentials().Save(ctx, model.ProviderCredential{
		Provider:  provider,
		SealedKey: sealed,
		KeyHint:   keyHint(apiKey),
		BaseURL:   baseURL,
	})
	if err != nil {
		return err
	}

	s.logger.Info("Stored provider credential", zap.String("provider", provider))
	return nil
}

// Get returns the plaintext key for a provider, or "" when none is
// available. The {PROVIDER}_API_KEY environment variable takes priority
// over the stored key; an unsealable stored key (secret rotated, row
// corrupted) logs and reads as absent.
func (s *Service) Get(ctx context.Context, provider string) (string, error) {
	if key := os.Getenv(envVar(provider)); key != "" {
		return key, nil
	}

	cred, err := s.repo.Credentials().Get(ctx, provider)
	if err != nil {
		return "", err
	}
	if cred == nil || !cred.IsActive {
		return "", nil
	}

	plaintext, err := s.sealer.Open(cred.SealedKey)
	if err != nil {
		s.logger.Warn("Failed to unseal stored credential",
			zap.String("provider", provider),
			zap.Error(err))
		return "", nil
	}
	return plaintext, nil
}

// Deactivate returns false when the provider has no stored credential.
func (s *Service) Deactivate(ctx context.Context, provider string) (bool, error) {
	ok, err := s.repo.Credentials().Deactivate(ctx, provider)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Info("Deactivated provider credential", zap.String("provider", provider))
	}
	return ok, nil
}

// Rotate replaces an existing credential's key, keeping its base URL.
// Returns false when the provider has no stored credential.
func (s *Service) Rotate(ctx context.Context, provider, newAPIKey string) (bool, error) {
	cred, err := s.repo.Credentials().Get(ctx, provider)
	if err != nil {
		return false, err
	}
	if cred == nil {
		return false, nil
	}

	if err := s.Set(ctx, provider, newAPIKey, cred.BaseURL); err != nil {
		return false, err
	}
	return true, nil
}

// ActiveProviders lists providers with a usable key: stored credentials,
// environment overrides, and ollama (which needs no key). Sorted.
func (s *Service) ActiveProviders(ctx context.Context) ([]string, error) {
	stored, err := s.repo.Credentials().ActiveProviders(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(stored)+1)
	for _, p := range stored {
		seen[p] = struct{}{}
	}
	for _, p := range envProviders {
		if os.Getenv(envVar(p)) != "" {
			seen[p] = struct{}{}
		}
	}
	seen["ollama"] = struct{}{}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// Usable reports whether a provider can be called right now. Ollama runs
// locally and never needs a key.
func (s *Service) Usable(ctx context.Context, provider string) (bool, error) {
	if provider == "ollama" {
		return true, nil
	}
	key, err := s.Get(ctx, provider)
	if err != nil {
		return false, err
	}
	return len(key) > 10, nil
}

// envProviders are the providers checked for environment overrides in
// ActiveProviders.
var envProviders = []string{
	"openai", "anthropic", "google", "groq", "mistral",
	"cohere", "ai21", "replicate", "together", "fireworks",
	"openrouter", "deepseek", "xai",
}
