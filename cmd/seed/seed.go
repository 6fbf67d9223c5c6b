package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/catalog"
	"github.com/calder-labs/provider-hub/internal/cli"
	"github.com/calder-labs/provider-hub/internal/credentials"
	"github.com/calder-labs/provider-hub/internal/modelconfig"
	"github.com/calder-labs/provider-hub/internal/registry"
	"github.com/calder-labs/provider-hub/internal/store/sqlite"
	"github.com/calder-labs/provider-hub/internal/sync"
)

// Seeds a development database: local models, a few service configs, and a
// test credential, so the API is usable without a remote sync.
func main() {
	logger := zap.NewNop()

	repo, err := sqlite.NewSQLiteStorage("providers.db", logger)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	ctx := context.Background()

	syncService := sync.NewService(logger, repo, nil)
	report := syncService.SyncLocal(ctx)
	if report.Status != sync.StatusSuccess {
		fmt.Printf("%s Failed to seed local models: %s\n", cli.CrossMark(), report.Error)
		os.Exit(1)
	}
	fmt.Printf("%s Seeded %d local models\n", cli.CheckMark(), report.ModelsSynced)

	configService := modelconfig.NewService(logger, repo, nil, nil)
	seedConfigs := map[string]string{
		"rag_agent":  "ollama:llama3",
		"chat_agent": "ollama:mistral",
		"embeddings": "openai:text-embedding-3-small",
	}
	for service, modelString := range seedConfigs {
		if _, err := configService.Set(ctx, service, modelString, nil, nil); err != nil {
			log.Fatalf("Failed to seed config for %s: %v", service, err)
		}
		fmt.Printf("%s %s %s\n", cli.Arrow(), service, cli.Style(modelString, cli.Cyan))
	}

	registryService := registry.NewService(logger, repo)
	regReport := registryService.SyncWithModelConfigs(ctx)
	fmt.Printf("%s Registered %d services from configs\n", cli.CheckMark(), regReport.ServicesRegistered)
	cli.PrettyPrint(regReport)

	secret := os.Getenv("SECRETS_ENCRYPTION_KEY")
	if secret == "" {
		secret = "dev-only-secret"
	}
	sealer, err := credentials.NewSealer(secret)
	if err != nil {
		log.Fatal(err)
	}
	credService := credentials.NewService(logger, repo, sealer)
	if err := credService.Set(ctx, "openrouter", "sk-or-dev-1234567890", ""); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s Stored development openrouter credential\n", cli.CheckMark())

	if ok := syncService.AddManualModel(ctx, catalog.RawModel{
		Provider:      "openai",
		ModelID:       "text-embedding-3-small",
		DisplayName:   "Text Embedding 3 Small",
		ContextLength: 8191,
		InputCost:     0.02,
	}); !ok {
		log.Fatal("Failed to seed embedding model")
	}

	fmt.Printf("\n%s Successfully seeded database!\n", cli.CheckMark())
}
