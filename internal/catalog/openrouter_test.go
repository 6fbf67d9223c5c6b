package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/cache/memory"
)

const catalogPayload = `{
	"data": [
		{
			"id": "openai/gpt-4o",
			"name": "GPT-4o",
			"description": "Flagship model",
			"context_length": 128000,
			"pricing": {"prompt": "0.000005", "completion": "0.000015"},
			"architecture": {"input_modalities": ["text", "image"]},
			"supported_parameters": ["tools", "temperature"]
		},
		{
			"id": "meta-llama/llama-3.1-8b-instruct",
			"name": "Llama 3.1 8B",
			"context_length": 131072,
			"pricing": {"prompt": "0", "completion": "0"}
		},
		{
			"id": "not-a-valid-id",
			"pricing": {"prompt": "0.000001", "completion": "0.000001"}
		},
		{
			"id": "openai/broken",
			"pricing": {"prompt": "not-a-number", "completion": "0"}
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenRouterClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewOpenRouterClient(srv.URL, 5*time.Second, time.Minute, memory.New(), zap.NewNop())
	return client, srv
}

func TestFetchRemoteParsesCatalog(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(catalogPayload))
	})

	byProvider, err := client.FetchRemote(context.Background(), false)
	require.NoError(t, err)

	// Malformed entries are skipped, the rest grouped by provider.
	require.Len(t, byProvider, 2)
	require.Len(t, byProvider["openai"], 1)
	require.Len(t, byProvider["meta-llama"], 1)

	gpt := byProvider["openai"][0]
	assert.Equal(t, "gpt-4o", gpt.ModelID)
	assert.Equal(t, "GPT-4o", gpt.DisplayName)
	assert.Equal(t, 128000, gpt.ContextLength)
	assert.InDelta(t, 5.0, gpt.InputCost, 1e-9)
	assert.InDelta(t, 15.0, gpt.OutputCost, 1e-9)
	assert.False(t, gpt.IsFree)
	assert.True(t, gpt.SupportsVision)
	assert.True(t, gpt.SupportsTools)
	assert.False(t, gpt.SupportsReasoning)

	llama := byProvider["meta-llama"][0]
	assert.True(t, llama.IsFree)
	assert.False(t, llama.SupportsVision)
}

func TestFetchRemoteServesFromCache(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(catalogPayload))
	})

	_, err := client.FetchRemote(context.Background(), false)
	require.NoError(t, err)
	_, err = client.FetchRemote(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestFetchRemoteForceRefreshBypassesCache(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(catalogPayload))
	})

	_, err := client.FetchRemote(context.Background(), false)
	require.NoError(t, err)
	_, err = client.FetchRemote(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestFetchRemoteUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchRemote(context.Background(), false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchRemoteBadJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := client.FetchRemote(context.Background(), false)
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	got, err := parsePrice("0.0000025")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got, 1e-9)

	got, err = parsePrice("")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = parsePrice("-0.000001")
	assert.Error(t, err)
}
