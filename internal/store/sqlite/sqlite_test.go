package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	repo, err := NewSQLiteStorage(dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testRecord(provider, modelID string) model.ModelRecord {
	return model.ModelRecord{
		Provider:    provider,
		ModelID:     modelID,
		ModelString: provider + ":" + modelID,
		DisplayName: modelID,
		CostTier:    model.TierLow,
	}
}

func TestBulkUpsertConflictMerge(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := testRecord("openai", "gpt-4o")
	first.DisplayName = "GPT-4o"
	first.InputCost = 0.0000025

	n, err := repo.Models().BulkUpsert(ctx, []model.ModelRecord{first}, model.SourceOpenRouter)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a second pass for the same (provider, model_id) must merge, not
	// duplicate, and the latest metadata wins
	second := first
	second.DisplayName = "GPT-4o (updated)"
	second.InputCost = 0.000005

	n, err = repo.Models().BulkUpsert(ctx, []model.ModelRecord{second}, model.SourceOpenRouter)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := repo.Models().GetAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "GPT-4o (updated)", all[0].DisplayName)
	assert.InDelta(t, 0.000005, all[0].InputCost, 1e-12)
	assert.True(t, all[0].IsActive)
}

func TestBulkUpsertReactivatesRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := testRecord("openai", "gpt-4o")
	_, err := repo.Models().BulkUpsert(ctx, []model.ModelRecord{rec}, model.SourceOpenRouter)
	require.NoError(t, err)

	ok, err := repo.Models().SetActive(ctx, "openai:gpt-4o", false)
	require.NoError(t, err)
	require.True(t, ok)

	// a manual deactivation lasts only until the model shows up upstream again
	_, err = repo.Models().BulkUpsert(ctx, []model.ModelRecord{rec}, model.SourceOpenRouter)
	require.NoError(t, err)

	got, err := repo.Models().GetByString(ctx, "openai:gpt-4o")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsActive)
}

func TestDeactivateStaleIsSourceAndTimestampGated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	remote := []model.ModelRecord{
		testRecord("openai", "m1"), testRecord("openai", "m2"), testRecord("openai", "m3"),
		testRecord("openai", "m4"), testRecord("openai", "m5"), testRecord("openai", "m6"),
	}
	_, err := repo.Models().BulkUpsert(ctx, remote, model.SourceOpenRouter)
	require.NoError(t, err)

	local := []model.ModelRecord{
		testRecord("ollama", "llama3"), testRecord("ollama", "mistral"),
		testRecord("ollama", "codellama"), testRecord("ollama", "phi3"),
	}
	_, err = repo.Models().BulkUpsert(ctx, local, model.SourceLocal)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	syncStart := time.Now().UTC()

	// the next pass only sees three of the six remote models
	_, err = repo.Models().BulkUpsert(ctx, remote[:3], model.SourceOpenRouter)
	require.NoError(t, err)

	flipped, err := repo.Models().DeactivateStale(ctx, model.SourceOpenRouter, syncStart)
	require.NoError(t, err)
	assert.Equal(t, 3, flipped)

	active, err := repo.Models().GetAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 7)

	// local rows are outside the sweep even though they predate syncStart
	localRows, err := repo.Models().GetByProvider(ctx, "ollama", true)
	require.NoError(t, err)
	assert.Len(t, localRows, 4)

	// a repeated sweep with the same cutoff finds nothing new
	flipped, err = repo.Models().DeactivateStale(ctx, model.SourceOpenRouter, syncStart)
	require.NoError(t, err)
	assert.Zero(t, flipped)
}

func TestProviderStatistics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stats, err := repo.Models().ProviderStatistics(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats)

	records := []model.ModelRecord{
		testRecord("openai", "gpt-4o"),
		testRecord("openai", "text-embedding-3-small"),
	}
	records[0].ContextLength = 128000
	records[1].IsEmbedding = true
	records[1].IsFree = true
	_, err = repo.Models().BulkUpsert(ctx, records, model.SourceOpenRouter)
	require.NoError(t, err)

	stats, err = repo.Models().ProviderStatistics(ctx)
	require.NoError(t, err)
	require.Contains(t, stats, "openai")

	openai := stats["openai"]
	assert.Equal(t, 2, openai.TotalModels)
	assert.Equal(t, 2, openai.ActiveModels)
	assert.Equal(t, 1, openai.EmbeddingModels)
	assert.Equal(t, 1, openai.LLMModels)
	assert.Equal(t, 1, openai.FreeModels)
	assert.Equal(t, 128000, openai.MaxContextLength)

	// MAX(last_updated) comes back as text and must still parse
	require.True(t, openai.LastSync.Valid)
	assert.WithinDuration(t, time.Now().UTC(), openai.LastSync.Time, time.Minute)
}

func TestParseDBTime(t *testing.T) {
	valid := []string{
		"2024-03-01 10:30:00.123456789-07:00",
		"2024-03-01 10:30:00.5",
		"2024-03-01 10:30:00",
		"2024-03-01T10:30:00Z",
	}
	for _, s := range valid {
		got := parseDBTime(sql.NullString{String: s, Valid: true})
		assert.True(t, got.Valid, s)
	}

	invalid := []sql.NullString{
		{},
		{String: "", Valid: true},
		{String: "   ", Valid: true},
		{String: "not a time", Valid: true},
	}
	for _, s := range invalid {
		got := parseDBTime(s)
		assert.False(t, got.Valid, s.String)
	}
}

func testEntry(name string) model.ServiceEntry {
	return model.ServiceEntry{
		ServiceName: name,
		DisplayName: name,
		Category:    model.CategoryAgent,
		ServiceType: model.ServiceTypeLLMAgent,
		ModelType:   model.ModelTypeLLM,
		Location:    "main_server",
		CostProfile: "medium",
		OwnerTeam:   "platform",
	}
}

func TestRegisterUpsertPreservesFirstSeen(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, err := repo.Services().Register(ctx, testEntry("rag_agent"))
	require.NoError(t, err)

	before, err := repo.Services().GetByName(ctx, "rag_agent")
	require.NoError(t, err)
	require.NotNil(t, before)
	require.True(t, before.FirstSeen.Valid)

	time.Sleep(20 * time.Millisecond)

	updated := testEntry("rag_agent")
	updated.DisplayName = "RAG Agent v2"
	id2, err := repo.Services().Register(ctx, updated)
	require.NoError(t, err)

	after, err := repo.Services().GetByName(ctx, "rag_agent")
	require.NoError(t, err)
	require.NotNil(t, after)

	assert.Equal(t, id1, id2)
	assert.Equal(t, "RAG Agent v2", after.DisplayName)
	assert.True(t, after.FirstSeen.Time.Equal(before.FirstSeen.Time))
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestRegistryDiffQueries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// configured but unregistered
	_, err := repo.Configs().Save(ctx, model.ModelConfig{
		ServiceName: "rag_agent",
		ModelString: "openai:gpt-4o-mini",
		Temperature: 0.7,
	})
	require.NoError(t, err)

	// configured and registered
	_, err = repo.Configs().Save(ctx, model.ModelConfig{
		ServiceName: "chat_agent",
		ModelString: "openai:gpt-4o",
		Temperature: 0.7,
	})
	require.NoError(t, err)
	_, err = repo.Services().Register(ctx, testEntry("chat_agent"))
	require.NoError(t, err)

	// registered with no config
	_, err = repo.Services().Register(ctx, testEntry("old_service"))
	require.NoError(t, err)

	unregistered, err := repo.Services().GetUnregistered(ctx)
	require.NoError(t, err)
	require.Len(t, unregistered, 1)
	assert.Equal(t, "rag_agent", unregistered[0].ServiceName)
	assert.Equal(t, "openai:gpt-4o-mini", unregistered[0].ModelString)

	orphaned, err := repo.Services().GetOrphaned(ctx)
	require.NoError(t, err)
	require.Len(t, orphaned, 1)
	assert.Equal(t, "old_service", orphaned[0].ServiceName)
}

func TestDeprecateAndActiveFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Services().Register(ctx, testEntry("rag_agent"))
	require.NoError(t, err)
	_, err = repo.Services().Register(ctx, testEntry("legacy_agent"))
	require.NoError(t, err)

	ok, err := repo.Services().Deprecate(ctx, "legacy_agent", "superseded", "rag_agent")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Services().Deprecate(ctx, "ghost", "nope", "")
	require.NoError(t, err)
	assert.False(t, ok)

	active, err := repo.Services().GetAll(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "rag_agent", active[0].ServiceName)

	all, err := repo.Services().GetAll(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	legacy, err := repo.Services().GetByName(ctx, "legacy_agent")
	require.NoError(t, err)
	require.NotNil(t, legacy)
	assert.True(t, legacy.IsDeprecated)
	assert.Equal(t, "superseded", legacy.DeprecationReason.String)
	assert.Equal(t, "rag_agent", legacy.ReplacementService.String)
}

func TestCredentialRoundtrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Credentials().Save(ctx, model.ProviderCredential{
		Provider:  "openai",
		SealedKey: "sealed-blob",
		KeyHint:   "...1234",
		BaseURL:   "https://api.openai.com/v1",
	})
	require.NoError(t, err)

	cred, err := repo.Credentials().Get(ctx, "openai")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "sealed-blob", cred.SealedKey)
	assert.Equal(t, "...1234", cred.KeyHint)
	assert.Equal(t, "https://api.openai.com/v1", cred.BaseURL)
	assert.True(t, cred.IsActive)

	// save for the same provider replaces, keeping one row
	err = repo.Credentials().Save(ctx, model.ProviderCredential{
		Provider:  "openai",
		SealedKey: "sealed-blob-2",
		KeyHint:   "...5678",
		BaseURL:   "",
	})
	require.NoError(t, err)

	cred, err = repo.Credentials().Get(ctx, "openai")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "sealed-blob-2", cred.SealedKey)
	assert.Equal(t, "", cred.BaseURL)

	providers, err := repo.Credentials().ActiveProviders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"openai"}, providers)

	ok, err := repo.Credentials().Deactivate(ctx, "openai")
	require.NoError(t, err)
	require.True(t, ok)

	providers, err = repo.Credentials().ActiveProviders(ctx)
	require.NoError(t, err)
	assert.Empty(t, providers)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	failed := errors.New("abort")
	err := repo.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.Services().Register(ctx, testEntry("rag_agent")); err != nil {
			return err
		}
		return failed
	})
	require.ErrorIs(t, err, failed)

	entry, err := repo.Services().GetByName(ctx, "rag_agent")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
