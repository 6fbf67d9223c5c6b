package store

import (
	"context"
	"time"

	"github.com/calder-labs/provider-hub/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Models() ModelRepository
	Services() ServiceRepository
	Configs() ConfigRepository
	Credentials() CredentialRepository
	Usage() UsageRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

// ModelRepository persists the canonical model catalog.
type ModelRepository interface {
	// BulkUpsert writes all records in one set-based statement keyed on
	// (provider, model_id), marking each row active and refreshing
	// last_updated. Returns the number of records written.
	BulkUpsert(ctx context.Context, records []model.ModelRecord, source string) (int, error)
	// Upsert writes a single record (manual additions).
	Upsert(ctx context.Context, record model.ModelRecord) error
	// DeactivateStale flips is_active off for rows of the given source whose
	// last_updated precedes syncStartedAt. Returns the number of rows flipped.
	DeactivateStale(ctx context.Context, source string, syncStartedAt time.Time) (int, error)
	// GetAll returns the catalog ordered by provider, cost_tier, display_name.
	GetAll(ctx context.Context, activeOnly bool) ([]model.ModelRecord, error)
	GetByProvider(ctx context.Context, provider string, activeOnly bool) ([]model.ModelRecord, error)
	GetByType(ctx context.Context, isEmbedding bool, activeOnly bool) ([]model.ModelRecord, error)
	// GetByString returns nil when the model is unknown.
	GetByString(ctx context.Context, modelString string) (*model.ModelRecord, error)
	// GetForProviders returns active models for the given providers only.
	GetForProviders(ctx context.Context, providers []string) ([]model.ModelRecord, error)
	ProviderStatistics(ctx context.Context) (map[string]model.ProviderStats, error)
	// SetActive returns false when no row matches the model string.
	SetActive(ctx context.Context, modelString string, active bool) (bool, error)
}

// ServiceRepository persists the service registry.
type ServiceRepository interface {
	GetAll(ctx context.Context, activeOnly bool) ([]model.ServiceEntry, error)
	// GetByName returns nil when the service is unknown.
	GetByName(ctx context.Context, serviceName string) (*model.ServiceEntry, error)
	// Register upserts by service_name, preserving first_seen and created_at
	// on existing rows. Returns the entry id.
	Register(ctx context.Context, entry model.ServiceEntry) (string, error)
	// UpdateMetadata applies a partial update; false when the service is unknown.
	UpdateMetadata(ctx context.Context, serviceName string, patch map[string]any) (bool, error)
	// Deprecate soft-deprecates an entry; false when the service is unknown.
	Deprecate(ctx context.Context, serviceName, reason, replacement string) (bool, error)
	GetByCategory(ctx context.Context, category string, activeOnly bool) ([]model.ServiceEntry, error)
	// GetUnregistered returns services that have a model configuration but no
	// registry entry.
	GetUnregistered(ctx context.Context) ([]model.UnregisteredService, error)
	// GetOrphaned returns registry entries without a model configuration.
	GetOrphaned(ctx context.Context) ([]model.ServiceEntry, error)
	// TouchLastUsed stamps last_used; unknown services are a no-op.
	TouchLastUsed(ctx context.Context, serviceName string) error
}

// ConfigRepository persists per-service model configurations.
type ConfigRepository interface {
	// Get returns nil when no configuration exists for the service.
	Get(ctx context.Context, serviceName string) (*model.ModelConfig, error)
	GetAll(ctx context.Context) ([]model.ModelConfig, error)
	Save(ctx context.Context, cfg model.ModelConfig) (*model.ModelConfig, error)
	// Delete returns false when no configuration exists for the service.
	Delete(ctx context.Context, serviceName string) (bool, error)
}

// CredentialRepository persists sealed provider API keys.
type CredentialRepository interface {
	// Get returns nil when the provider has no stored credential.
	Get(ctx context.Context, provider string) (*model.ProviderCredential, error)
	Save(ctx context.Context, cred model.ProviderCredential) error
	// Deactivate returns false when the provider has no stored credential.
	Deactivate(ctx context.Context, provider string) (bool, error)
	ActiveProviders(ctx context.Context) ([]string, error)
}

// UsageRepository persists tracked usage rows.
type UsageRepository interface {
	Record(ctx context.Context, rec model.UsageRecord) error
	DailyCosts(ctx context.Context, days int) ([]model.DailyCost, error)
	SummaryByService(ctx context.Context, days int) (map[string]model.ModelUsage, error)
	TopModels(ctx context.Context, limit int) ([]model.ModelUsage, error)
	TotalCost(ctx context.Context, days int) (float64, error)
}
