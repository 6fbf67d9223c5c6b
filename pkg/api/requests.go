package api

// RegisterServiceRequest registers or updates a service registry entry.
type RegisterServiceRequest struct {
	ServiceName         string `json:"service_name" binding:"required"`
	DisplayName         string `json:"display_name" binding:"required"`
	Description         string `json:"description"`
	Icon                string `json:"icon"`
	Category            string `json:"category" binding:"required,oneof=agent service"`
	ServiceType         string `json:"service_type" binding:"required,oneof=llm_agent backend_service embedding_service"`
	ModelType           string `json:"model_type" binding:"omitempty,oneof=llm embedding"`
	Location            string `json:"location"`
	SupportsTemperature bool   `json:"supports_temperature"`
	SupportsMaxTokens   bool   `json:"supports_max_tokens"`
	DefaultModel        string `json:"default_model"`
	CostProfile         string `json:"cost_profile" binding:"omitempty,oneof=free low medium high"`
	OwnerTeam           string `json:"owner_team"`
	ContactEmail        string `json:"contact_email" binding:"omitempty,email"`
	DocumentationURL    string `json:"documentation_url" binding:"omitempty,url"`
}

// SetConfigRequest assigns a model to a service.
type SetConfigRequest struct {
	ServiceName string   `json:"service_name" binding:"required"`
	ModelString string   `json:"model_string" binding:"required"`
	Temperature *float64 `json:"temperature" binding:"omitempty,gte=0,lte=2"`
	MaxTokens   *int64   `json:"max_tokens" binding:"omitempty,gt=0"`
}

// SetKeyRequest stores a provider API key.
type SetKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
	BaseURL  string `json:"base_url" binding:"omitempty,url"`
}

// TrackUsageRequest records one request's token usage.
type TrackUsageRequest struct {
	ServiceName  string `json:"service_name" binding:"required"`
	ModelString  string `json:"model_string" binding:"required"`
	InputTokens  int    `json:"input_tokens" binding:"gte=0"`
	OutputTokens int    `json:"output_tokens" binding:"gte=0"`
}

// AddModelRequest adds a model to the catalog by hand.
type AddModelRequest struct {
	Provider          string  `json:"provider" binding:"required"`
	ModelID           string  `json:"model_id" binding:"required"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	ContextLength     int     `json:"context_length" binding:"gte=0"`
	InputCost         float64 `json:"input_cost" binding:"gte=0"`
	OutputCost        float64 `json:"output_cost" binding:"gte=0"`
	SupportsVision    bool    `json:"supports_vision"`
	SupportsTools     bool    `json:"supports_tools"`
	SupportsReasoning bool    `json:"supports_reasoning"`
	IsEmbedding       *bool   `json:"is_embedding"`
	IsFree            bool    `json:"is_free"`
}
