package model

import (
	"database/sql"
	"time"
)

// Cost tiers derived from per-token pricing.
const (
	TierFree   = "free"
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// Model record sources.
const (
	SourceOpenRouter = "openrouter"
	SourceLocal      = "local"
	SourceManual     = "manual"
)

// Service registry categories and types.
const (
	CategoryAgent   = "agent"
	CategoryService = "service"

	ServiceTypeLLMAgent  = "llm_agent"
	ServiceTypeBackend   = "backend_service"
	ServiceTypeEmbedding = "embedding_service"

	ModelTypeLLM       = "llm"
	ModelTypeEmbedding = "embedding"
)

// ModelRecord is one row of the model catalog, keyed by (provider, model_id).
// InputCost/OutputCost are per-token; conversion from per-million happens at
// ingestion time in the catalog package.
type ModelRecord struct {
	ID                int64     `db:"id" json:"id"`
	Provider          string    `db:"provider" json:"provider"`
	ModelID           string    `db:"model_id" json:"model_id"`
	ModelString       string    `db:"model_string" json:"model_string"`
	DisplayName       string    `db:"display_name" json:"display_name"`
	Description       string    `db:"description" json:"description"`
	ContextLength     int       `db:"context_length" json:"context_length"`
	InputCost         float64   `db:"input_cost" json:"input_cost"`
	OutputCost        float64   `db:"output_cost" json:"output_cost"`
	SupportsVision    bool      `db:"supports_vision" json:"supports_vision"`
	SupportsTools     bool      `db:"supports_tools" json:"supports_tools"`
	SupportsReasoning bool      `db:"supports_reasoning" json:"supports_reasoning"`
	IsEmbedding       bool      `db:"is_embedding" json:"is_embedding"`
	IsFree            bool      `db:"is_free" json:"is_free"`
	CostTier          string    `db:"cost_tier" json:"cost_tier"`
	Source            string    `db:"source" json:"source"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	LastUpdated       time.Time `db:"last_updated" json:"last_updated"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// ProviderStats is the aggregate view the sync engine reports per provider.
type ProviderStats struct {
	Provider         string       `db:"provider" json:"provider"`
	TotalModels      int          `db:"total_models" json:"total_models"`
	ActiveModels     int          `db:"active_models" json:"active_models"`
	EmbeddingModels  int          `db:"embedding_models" json:"embedding_models"`
	LLMModels        int          `db:"llm_models" json:"llm_models"`
	FreeModels       int          `db:"free_models" json:"free_models"`
	VisionModels     int          `db:"vision_models" json:"vision_models"`
	ToolModels       int          `db:"tool_models" json:"tool_models"`
	MaxContextLength int          `db:"max_context_length" json:"max_context_length"`
	MinCost          float64      `db:"min_cost" json:"min_cost"`
	MaxCost          float64      `db:"max_cost" json:"max_cost"`
	LastSync         sql.NullTime `db:"last_sync" json:"last_sync"`
}

// ServiceEntry is one row of the service registry: a named consumer of a
// model (an agent or a backend service).
type ServiceEntry struct {
	ID                  string         `db:"id" json:"id"`
	ServiceName         string         `db:"service_name" json:"service_name"`
	DisplayName         string         `db:"display_name" json:"display_name"`
	Description         string         `db:"description" json:"description"`
	Icon                string         `db:"icon" json:"icon"`
	Category            string         `db:"category" json:"category"`
	ServiceType         string         `db:"service_type" json:"service_type"`
	ModelType           string         `db:"model_type" json:"model_type"`
	Location            string         `db:"location" json:"location"`
	SupportsTemperature bool           `db:"supports_temperature" json:"supports_temperature"`
	SupportsMaxTokens   bool           `db:"supports_max_tokens" json:"supports_max_tokens"`
	DefaultModel        string         `db:"default_model" json:"default_model"`
	CostProfile         string         `db:"cost_profile" json:"cost_profile"`
	OwnerTeam           string         `db:"owner_team" json:"owner_team"`
	ContactEmail        string         `db:"contact_email" json:"contact_email,omitempty"`
	DocumentationURL    string         `db:"documentation_url" json:"documentation_url,omitempty"`
	IsActive            bool           `db:"is_active" json:"is_active"`
	IsDeprecated        bool           `db:"is_deprecated" json:"is_deprecated"`
	DeprecationReason   sql.NullString `db:"deprecation_reason" json:"deprecation_reason,omitempty"`
	ReplacementService  sql.NullString `db:"replacement_service" json:"replacement_service,omitempty"`
	FirstSeen           sql.NullTime   `db:"first_seen" json:"first_seen,omitempty"`
	LastUsed            sql.NullTime   `db:"last_used" json:"last_used,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// UnregisteredService is a drift row: a service that has a model
// configuration but no registry entry.
type UnregisteredService struct {
	ServiceName string `db:"service_name" json:"service_name"`
	ModelString string `db:"model_string" json:"model_string"`
}

// ModelConfig maps a service to its model selection and generation knobs.
type ModelConfig struct {
	ServiceName string        `db:"service_name" json:"service_name"`
	ModelString string        `db:"model_string" json:"model_string"`
	Temperature float64       `db:"temperature" json:"temperature"`
	MaxTokens   sql.NullInt64 `db:"max_tokens" json:"max_tokens,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// ProviderCredential holds a sealed provider API key. KeyHint is the last
// four characters of the plaintext, kept for display only.
type ProviderCredential struct {
	Provider  string    `db:"provider" json:"provider"`
	SealedKey string    `db:"sealed_key" json:"-"`
	KeyHint   string    `db:"key_hint" json:"key_hint"`
	BaseURL   string    `db:"base_url" json:"base_url,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UsageRecord is one tracked inference call with its computed cost.
type UsageRecord struct {
	ID           string    `db:"id" json:"id"`
	ServiceName  string    `db:"service_name" json:"service_name"`
	ModelString  string    `db:"model_string" json:"model_string"`
	InputTokens  int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens int       `db:"output_tokens" json:"output_tokens"`
	Cost         float64   `db:"cost" json:"cost"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DailyCost aggregates tracked usage per calendar day.
type DailyCost struct {
	Date          string  `db:"date" json:"date"`
	TotalRequests int     `db:"total_requests" json:"total_requests"`
	TotalTokens   int     `db:"total_tokens" json:"total_tokens"`
	TotalCost     float64 `db:"total_cost" json:"total_cost"`
}

// ModelUsage aggregates tracked usage per model.
type ModelUsage struct {
	ModelString   string  `db:"model_string" json:"model_string"`
	TotalRequests int     `db:"total_requests" json:"total_requests"`
	TotalTokens   int     `db:"total_tokens" json:"total_tokens"`
	TotalCost     float64 `db:"total_cost" json:"total_cost"`
}
