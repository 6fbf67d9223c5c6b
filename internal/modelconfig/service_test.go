package modelconfig

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

type fakeConfigRepo struct {
	configs map[string]model.ModelConfig
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{configs: make(map[string]model.ModelConfig)}
}

func (f *fakeConfigRepo) Get(_ context.Context, serviceName string) (*model.ModelConfig, error) {
	cfg, ok := f.configs[serviceName]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (f *fakeConfigRepo) GetAll(_ context.Context) ([]model.ModelConfig, error) {
	var out []model.ModelConfig
	for _, cfg := range f.configs {
		out = append(out, cfg)
	}
	return out, nil
}

func (f *fakeConfigRepo) Save(_ context.Context, cfg model.ModelConfig) (*model.ModelConfig, error) {
	f.configs[cfg.ServiceName] = cfg
	return &cfg, nil
}

func (f *fakeConfigRepo) Delete(_ context.Context, serviceName string) (bool, error) {
	if _, ok := f.configs[serviceName]; !ok {
		return false, nil
	}
	delete(f.configs, serviceName)
	return true, nil
}

type fakeRepo struct {
	configs *fakeConfigRepo
}

func (f *fakeRepo) Models() store.ModelRepository           { return nil }
func (f *fakeRepo) Services() store.ServiceRepository       { return nil }
func (f *fakeRepo) Configs() store.ConfigRepository         { return f.configs }
func (f *fakeRepo) Credentials() store.CredentialRepository { return nil }
func (f *fakeRepo) Usage() store.UsageRepository            { return nil }
func (f *fakeRepo) Close() error                            { return nil }

func (f *fakeRepo) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	return fn(f)
}

type fakeNotifier struct {
	mu       sync.Mutex
	services []string
}

func (f *fakeNotifier) UpdateDefaultModel(_ context.Context, serviceName, _ string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.services = append(f.services, serviceName)
	return true
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.services)
}

type fakeRefresher struct {
	stale     bool
	triggered bool
}

func (f *fakeRefresher) ShouldSync(_ context.Context, _ time.Duration) bool { return f.stale }
func (f *fakeRefresher) TriggerBackground(_ bool)                           { f.triggered = true }

func newTestService(repo *fakeConfigRepo, notifier RegistryNotifier, refresher CatalogRefresher) *Service {
	return NewService(zap.NewNop(), &fakeRepo{configs: repo}, notifier, refresher)
}

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := newTestService(newFakeConfigRepo(), nil, nil)

	cfg, err := svc.Get(context.Background(), "rag_agent")
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", cfg.ModelString)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.False(t, cfg.MaxTokens.Valid)

	// Unknown services get the generic fallback.
	cfg, err = svc.Get(context.Background(), "never_seen")
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", cfg.ModelString)
}

func TestSetPersistsAndOverridesDefaults(t *testing.T) {
	repo := newFakeConfigRepo()
	svc := newTestService(repo, nil, nil)

	temp := 0.2
	maxTok := int64(4096)
	saved, err := svc.Set(context.Background(), "chat_agent", "anthropic:claude-3-5-sonnet-20241022", &temp, &maxTok)
	require.NoError(t, err)
	assert.Equal(t, 0.2, saved.Temperature)
	assert.Equal(t, int64(4096), saved.MaxTokens.Int64)

	cfg, err := svc.Get(context.Background(), "chat_agent")
	require.NoError(t, err)
	assert.Equal(t, "anthropic:claude-3-5-sonnet-20241022", cfg.ModelString)
}

func TestSetRejectsInvalidModelString(t *testing.T) {
	svc := newTestService(newFakeConfigRepo(), nil, nil)

	_, err := svc.Set(context.Background(), "chat_agent", "no-colon-here", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidModelString)

	_, err = svc.Set(context.Background(), "chat_agent", "madeup:model", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidModelString)
}

func TestSetNotifiesRegistryDetached(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(newFakeConfigRepo(), notifier, nil)

	_, err := svc.Set(context.Background(), "rag_agent", "openai:gpt-4o", nil, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return notifier.count() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestSetTriggersCatalogRefreshWhenStale(t *testing.T) {
	stale := &fakeRefresher{stale: true}
	svc := newTestService(newFakeConfigRepo(), nil, stale)

	_, err := svc.Set(context.Background(), "rag_agent", "openai:gpt-4o", nil, nil)
	require.NoError(t, err)
	assert.True(t, stale.triggered)

	fresh := &fakeRefresher{stale: false}
	svc = newTestService(newFakeConfigRepo(), nil, fresh)

	_, err = svc.Set(context.Background(), "rag_agent", "openai:gpt-4o", nil, nil)
	require.NoError(t, err)
	assert.False(t, fresh.triggered)
}

func TestGetAllMergesDefaults(t *testing.T) {
	repo := newFakeConfigRepo()
	repo.configs["rag_agent"] = model.ModelConfig{ServiceName: "rag_agent", ModelString: "ollama:llama3"}
	repo.configs["custom_service"] = model.ModelConfig{ServiceName: "custom_service", ModelString: "groq:llama-3.1-70b"}
	svc := newTestService(repo, nil, nil)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)

	// Stored configs win over defaults; defaults fill the rest.
	assert.Equal(t, "ollama:llama3", all["rag_agent"])
	assert.Equal(t, "groq:llama-3.1-70b", all["custom_service"])
	assert.Equal(t, "openai:gpt-4o", all["chat_agent"])
	assert.Len(t, all, len(defaultModels)+1)
}

func TestDelete(t *testing.T) {
	repo := newFakeConfigRepo()
	repo.configs["rag_agent"] = model.ModelConfig{ServiceName: "rag_agent", ModelString: "ollama:llama3"}
	svc := newTestService(repo, nil, nil)

	ok, err := svc.Delete(context.Background(), "rag_agent")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Delete(context.Background(), "rag_agent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBulkUpdateProvider(t *testing.T) {
	repo := newFakeConfigRepo()
	repo.configs["chat_agent"] = model.ModelConfig{ServiceName: "chat_agent", ModelString: "openai:gpt-4o"}
	repo.configs["rag_agent"] = model.ModelConfig{ServiceName: "rag_agent", ModelString: "openai:gpt-4o-mini"}
	repo.configs["code_agent"] = model.ModelConfig{ServiceName: "code_agent", ModelString: "anthropic:claude-3-5-sonnet-20241022"}
	svc := newTestService(repo, nil, nil)

	updated, err := svc.BulkUpdateProvider(context.Background(), "openai", "groq", map[string]string{
		"openai:gpt-4o": "groq:llama-3.1-70b",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	assert.Equal(t, "groq:llama-3.1-70b", repo.configs["chat_agent"].ModelString)
	assert.Equal(t, "groq:gpt-4o-mini", repo.configs["rag_agent"].ModelString)
	assert.Equal(t, "anthropic:claude-3-5-sonnet-20241022", repo.configs["code_agent"].ModelString)
}

func TestValidateModelString(t *testing.T) {
	assert.NoError(t, ValidateModelString("openai:gpt-4o"))
	assert.NoError(t, ValidateModelString("ollama:llama3"))
	assert.ErrorIs(t, ValidateModelString("gpt-4o"), ErrInvalidModelString)
	assert.ErrorIs(t, ValidateModelString(":gpt-4o"), ErrInvalidModelString)
	assert.ErrorIs(t, ValidateModelString("bogus:model"), ErrInvalidModelString)
}
