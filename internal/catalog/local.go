package catalog

// LocalCatalog returns the fixed set of local-inference models. These never
// come from the remote source and are available even when it is unreachable.
func LocalCatalog() []RawModel {
	no := false
	return []RawModel{
		{
			Provider:      "ollama",
			ModelID:       "llama3",
			DisplayName:   "Llama 3 (Local)",
			Description:   "Local Llama 3 model for offline inference",
			ContextLength: 8192,
			IsFree:        true,
			SupportsTools: true,
			IsEmbedding:   &no,
		},
		{
			Provider:      "ollama",
			ModelID:       "mistral",
			DisplayName:   "Mistral (Local)",
			Description:   "Local Mistral model for offline inference",
			ContextLength: 8192,
			IsFree:        true,
			SupportsTools: true,
			IsEmbedding:   &no,
		},
		{
			Provider:      "ollama",
			ModelID:       "codellama",
			DisplayName:   "Code Llama (Local)",
			Description:   "Local Code Llama model specialized for programming tasks",
			ContextLength: 8192,
			IsFree:        true,
			SupportsTools: true,
			IsEmbedding:   &no,
		},
		{
			Provider:      "ollama",
			ModelID:       "phi3",
			DisplayName:   "Phi-3 (Local)",
			Description:   "Local Microsoft Phi-3 model optimized for efficiency",
			ContextLength: 8192,
			IsFree:        true,
			SupportsTools: true,
			IsEmbedding:   &no,
		},
	}
}
