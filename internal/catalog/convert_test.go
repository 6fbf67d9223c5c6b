package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calder-labs/provider-hub/internal/store/model"
)

func TestConvertCostTiers(t *testing.T) {
	tests := []struct {
		name      string
		inputCost float64
		isFree    bool
		want      string
	}{
		{"free flag wins", 10.0, true, model.TierFree},
		{"zero cost is low when not flagged free", 0, false, model.TierLow},
		{"below half dollar", 0.49, false, model.TierLow},
		{"exactly half dollar", 0.5, false, model.TierMedium},
		{"below five", 4.99, false, model.TierMedium},
		{"exactly five", 5.0, false, model.TierHigh},
		{"expensive", 75.0, false, model.TierHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Convert(RawModel{
				Provider:  "openai",
				ModelID:   "gpt-test",
				InputCost: tt.inputCost,
				IsFree:    tt.isFree,
			})
			assert.Equal(t, tt.want, rec.CostTier)
		})
	}
}

func TestConvertStoresPerTokenCosts(t *testing.T) {
	rec := Convert(RawModel{
		Provider:   "openai",
		ModelID:    "gpt-4o",
		InputCost:  5.0,
		OutputCost: 15.0,
	})

	assert.InDelta(t, 0.000005, rec.InputCost, 1e-12)
	assert.InDelta(t, 0.000015, rec.OutputCost, 1e-12)
}

func TestConvertModelString(t *testing.T) {
	rec := Convert(RawModel{Provider: "OpenAI", ModelID: "gpt-4o"})

	assert.Equal(t, "openai", rec.Provider)
	assert.Equal(t, "openai:gpt-4o", rec.ModelString)
}

func TestConvertEmbeddingInference(t *testing.T) {
	// Inferred from the model id when the source doesn't say.
	assert.True(t, Convert(RawModel{Provider: "openai", ModelID: "text-embedding-3-small"}).IsEmbedding)
	assert.False(t, Convert(RawModel{Provider: "openai", ModelID: "gpt-4o"}).IsEmbedding)

	// An explicit flag overrides the inference either way.
	no := false
	yes := true
	assert.False(t, Convert(RawModel{Provider: "openai", ModelID: "text-embedding-3-small", IsEmbedding: &no}).IsEmbedding)
	assert.True(t, Convert(RawModel{Provider: "openai", ModelID: "gpt-4o", IsEmbedding: &yes}).IsEmbedding)
}

func TestConvertTruncatesDescription(t *testing.T) {
	long := strings.Repeat("x", 600)
	rec := Convert(RawModel{Provider: "openai", ModelID: "gpt-4o", Description: long})

	assert.Len(t, rec.Description, 500)

	short := Convert(RawModel{Provider: "openai", ModelID: "gpt-4o", Description: "short"})
	assert.Equal(t, "short", short.Description)
}

func TestConvertAllFlattens(t *testing.T) {
	records := ConvertAll(map[string][]RawModel{
		"openai":    {{Provider: "openai", ModelID: "gpt-4o"}, {Provider: "openai", ModelID: "gpt-4o-mini"}},
		"anthropic": {{Provider: "anthropic", ModelID: "claude-3-haiku"}},
	})

	assert.Len(t, records, 3)
}

func TestLocalCatalog(t *testing.T) {
	models := LocalCatalog()

	assert.Len(t, models, 4)
	for _, m := range models {
		assert.Equal(t, "ollama", m.Provider)
		assert.True(t, m.IsFree)

		rec := Convert(m)
		assert.Equal(t, model.TierFree, rec.CostTier)
		assert.False(t, rec.IsEmbedding)
	}
}
