// Package catalog fetches the model catalog from external sources and
// converts it into the persisted record shape.
package catalog

import "context"

// RawModel is one model as reported by a catalog source. Costs are USD per
// million tokens, the unit upstream aggregators quote in; the conversion to
// per-token storage happens in Convert.
type RawModel struct {
	Provider          string  `json:"provider"`
	ModelID           string  `json:"model_id"`
	DisplayName       string  `json:"display_name"`
	Description       string  `json:"description"`
	ContextLength     int     `json:"context_length"`
	InputCost         float64 `json:"input_cost"`
	OutputCost        float64 `json:"output_cost"`
	IsFree            bool    `json:"is_free"`
	SupportsVision    bool    `json:"supports_vision"`
	SupportsTools     bool    `json:"supports_tools"`
	SupportsReasoning bool    `json:"supports_reasoning"`

	// IsEmbedding is nil when the source does not say; Convert then infers
	// from the model id.
	IsEmbedding *bool `json:"is_embedding,omitempty"`
}

// Source fetches the current remote catalog grouped by provider. A short
// read-through cache backs the fetch; forceRefresh drops it first.
type Source interface {
	FetchRemote(ctx context.Context, forceRefresh bool) (map[string][]RawModel, error)
}
