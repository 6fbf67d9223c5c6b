package catalog

import (
	"strings"

	"github.com/calder-labs/provider-hub/internal/store/model"
)

const (
	maxDescriptionLength = 500
	tokensPerMillion     = 1_000_000
)

// Convert maps a raw catalog entry to the persisted record shape.
// Cost tiers consult the free flag first, then the per-million input cost at
// the 0.5 and 5 USD thresholds. Stored costs are per token.
func Convert(raw RawModel) model.ModelRecord {
	provider := strings.ToLower(raw.Provider)

	tier := model.TierHigh
	switch {
	case raw.IsFree:
		tier = model.TierFree
	case raw.InputCost < 0.5:
		tier = model.TierLow
	case raw.InputCost < 5:
		tier = model.TierMedium
	}

	isEmbedding := strings.Contains(strings.ToLower(raw.ModelID), "embedding")
	if raw.IsEmbedding != nil {
		isEmbedding = *raw.IsEmbedding
	}

	description := raw.Description
	if len(description) > maxDescriptionLength {
		description = description[:maxDescriptionLength]
	}

	return model.ModelRecord{
		Provider:          provider,
		ModelID:           raw.ModelID,
		ModelString:       provider + ":" + raw.ModelID,
		DisplayName:       raw.DisplayName,
		Description:       description,
		ContextLength:     raw.ContextLength,
		InputCost:         raw.InputCost / tokensPerMillion,
		OutputCost:        raw.OutputCost / tokensPerMillion,
		SupportsVision:    raw.SupportsVision,
		SupportsTools:     raw.SupportsTools,
		SupportsReasoning: raw.SupportsReasoning,
		IsEmbedding:       isEmbedding,
		IsFree:            raw.IsFree,
		CostTier:          tier,
	}
}

// ConvertAll converts a provider-grouped catalog into a flat record list.
func ConvertAll(byProvider map[string][]RawModel) []model.ModelRecord {
	var records []model.ModelRecord
	for _, models := range byProvider {
		for _, raw := range models {
			records = append(records, Convert(raw))
		}
	}
	return records
}
