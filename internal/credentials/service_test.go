package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/store"
	"github.com/calder-labs/provider-hub/internal/store/model"
)

func TestSealOpenRoundtrip(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-live-abcdef123456")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "sk-live")

	plaintext, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-abcdef123456", plaintext)
}

func TestSealIsNonDeterministic(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)

	a, err := sealer.Seal("same-key")
	require.NoError(t, err)
	b, err := sealer.Seal("same-key")
	require.NoError(t, err)

	// Fresh nonce per seal; identical plaintexts must not leak equality.
	assert.NotEqual(t, a, b)
}

func TestOpenRejectsWrongSecret(t *testing.T) {
	sealer, err := NewSealer("secret-one")
	require.NoError(t, err)
	other, err := NewSealer("secret-two")
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-live-abcdef123456")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.Error(t, err)
}

func TestOpenRejectsGarbage(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)

	_, err = sealer.Open("not base64!!")
	assert.Error(t, err)

	_, err = sealer.Open("c2hvcnQ=")
	assert.Error(t, err)
}

func TestNewSealerRequiresSecret(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)
}

type fakeCredentialRepo struct {
	creds map[string]model.ProviderCredential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{creds: make(map[string]model.ProviderCredential)}
}

func (f *fakeCredentialRepo) Get(_ context.Context, provider string) (*model.ProviderCredential, error) {
	cred, ok := f.creds[provider]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (f *fakeCredentialRepo) Save(_ context.Context, cred model.ProviderCredential) error {
	cred.IsActive = true
	f.creds[cred.Provider] = cred
	return nil
}

func (f *fakeCredentialRepo) Deactivate(_ context.Context, provider string) (bool, error) {
	cred, ok := f.creds[provider]
	if !ok {
		return false, nil
	}
	cred.IsActive = false
	f.creds[provider] = cred
	return true, nil
}

func (f *fakeCredentialRepo) ActiveProviders(_ context.Context) ([]string, error) {
	var out []string
	for p, cred := range f.creds {
		if cred.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeRepo struct {
	creds *fakeCredentialRepo
}

func (f *fakeRepo) Models() store.ModelRepository           { return nil }
func (f *fakeRepo) Services() store.ServiceRepository       { return nil }
func (f *fakeRepo) Configs() store.ConfigRepository         { return nil }
func (f *fakeRepo) Credentials() store.CredentialRepository { return f.creds }
func (f *fakeRepo) Usage() store.UsageRepository            { return nil }
func (f *fakeRepo) Close() error                            { return nil }

func (f *fakeRepo) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	return fn(f)
}

func newTestService(t *testing.T, repo *fakeCredentialRepo) *Service {
	t.Helper()
	sealer, err := NewSealer("test-secret")
	require.NoError(t, err)
	return NewService(zap.NewNop(), &fakeRepo{creds: repo}, sealer)
}

func TestSetAndGet(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(t, repo)

	require.NoError(t, svc.Set(context.Background(), "openai", "sk-live-abcdef123456", ""))

	stored := repo.creds["openai"]
	assert.NotEqual(t, "sk-live-abcdef123456", stored.SealedKey)
	assert.Equal(t, "...3456", stored.KeyHint)
	assert.Equal(t, "https://api.openai.com/v1", stored.BaseURL)

	key, err := svc.Get(context.Background(), "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-live-abcdef123456", key)
}

func TestSetKeepsExplicitBaseURL(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(t, repo)

	require.NoError(t, svc.Set(context.Background(), "openai", "sk-live-abcdef123456", "http://proxy.internal/v1"))
	assert.Equal(t, "http://proxy.internal/v1", repo.creds["openai"].BaseURL)
}

func TestGetEnvOverrideWins(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(t, repo)

	require.NoError(t, svc.Set(context.Background(), "anthropic", "sk-stored-key-123", ""))
	t.Setenv("ANTHROPIC_API_KEY", "sk-from-env-456")

	key, err := svc.Get(context.Background(), "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env-456", key)
}

func TestGetMissingOrInactive(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(t, repo)

	key, err := svc.Get(context.Background(), "openai")
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, svc.Set(context.Background(), "openai", "sk-live-abcdef123456", ""))
	ok, err := svc.Deactivate(context.Background(), "openai")
	require.NoError(t, err)
	assert.True(t, ok)

	key, err = svc.Get(context.Background(), "openai")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestGetUnsealableReadsAsAbsent(t *testing.T) {
	repo := newFakeCredentialRepo()
	repo.creds["openai"] = model.ProviderCredential{
		Provider:  "openai",
		SealedKey: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		IsActive:  true,
	}
	svc := newTestService(t, repo)

	key, err := svc.Get(context.Background(), "openai")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestRotate(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(t, repo)

	ok, err := svc.Rotate(context.Background(), "openai", "sk-new-key-789012")
	require.NoError(t, err)
	assert.False(t, ok, "rotate should not create credentials")

	require.NoError(t, svc.Set(context.Background(), "openai", "sk-old-key-123456", "http://proxy.internal/v1"))

	ok, err = svc.Rotate(context.Background(), "openai", "sk-new-key-789012")
	require.NoError(t, err)
	assert.True(t, ok)

	key, err := svc.Get(context.Background(), "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-new-key-789012", key)
	assert.Equal(t, "http://proxy.internal/v1", repo.creds["openai"].BaseURL)
}

func TestActiveProviders(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(t, repo)

	require.NoError(t, svc.Set(context.Background(), "openai", "sk-live-abcdef123456", ""))
	t.Setenv("GROQ_API_KEY", "gsk-env-key-1234")

	providers, err := svc.ActiveProviders(context.Background())
	require.NoError(t, err)

	assert.Contains(t, providers, "openai")
	assert.Contains(t, providers, "groq")
	assert.Contains(t, providers, "ollama")
	assert.IsIncreasing(t, providers)
}

func TestUsable(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(t, repo)

	ok, err := svc.Usable(context.Background(), "ollama")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Usable(context.Background(), "openai")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Set(context.Background(), "openai", "sk-live-abcdef123456", ""))
	ok, err = svc.Usable(context.Background(), "openai")
	require.NoError(t, err)
	assert.True(t, ok)
}
