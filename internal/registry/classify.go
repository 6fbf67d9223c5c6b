package registry

import (
	"strings"

	"github.com/calder-labs/provider-hub/internal/store/model"
)

// Classification is the metadata derived for a discovered service.
type Classification struct {
	Category            string
	ServiceType         string
	ModelType           string
	Location            string
	Icon                string
	SupportsTemperature bool
	SupportsMaxTokens   bool
}

// Classify derives registry metadata from naming conventions alone. Agents
// are recognized by an "_agent" suffix or "agent_" prefix; embedding
// consumers by "embedding" appearing in the service name or model string.
func Classify(serviceName, modelString string) Classification {
	isAgent := strings.HasSuffix(serviceName, "_agent") || strings.HasPrefix(serviceName, "agent_")
	isEmbedding := strings.Contains(serviceName, "embedding") || strings.Contains(modelString, "embedding")

	switch {
	case isAgent:
		return Classification{
			Category:            model.CategoryAgent,
			ServiceType:         model.ServiceTypeLLMAgent,
			ModelType:           model.ModelTypeLLM,
			Location:            "agents_server",
			Icon:                "🤖",
			SupportsTemperature: true,
			SupportsMaxTokens:   true,
		}
	case isEmbedding:
		return Classification{
			Category:    model.CategoryService,
			ServiceType: model.ServiceTypeEmbedding,
			ModelType:   model.ModelTypeEmbedding,
			Location:    "main_server",
			Icon:        "🧩",
		}
	default:
		return Classification{
			Category:            model.CategoryService,
			ServiceType:         model.ServiceTypeBackend,
			ModelType:           model.ModelTypeLLM,
			Location:            "main_server",
			Icon:                "🔧",
			SupportsTemperature: true,
			SupportsMaxTokens:   true,
		}
	}
}

// displayName turns a snake_case service name into a title-cased label.
func displayName(serviceName string) string {
	words := strings.Split(serviceName, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
