package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/cache"
	memorycache "github.com/calder-labs/provider-hub/internal/cache/memory"
	rediscache "github.com/calder-labs/provider-hub/internal/cache/redis"
	"github.com/calder-labs/provider-hub/internal/catalog"
	"github.com/calder-labs/provider-hub/internal/config"
	"github.com/calder-labs/provider-hub/internal/credentials"
	"github.com/calder-labs/provider-hub/internal/modelconfig"
	"github.com/calder-labs/provider-hub/internal/platform/logger"
	"github.com/calder-labs/provider-hub/internal/platform/otel"
	"github.com/calder-labs/provider-hub/internal/registry"
	"github.com/calder-labs/provider-hub/internal/server"
	"github.com/calder-labs/provider-hub/internal/store/sqlite"
	syncsvc "github.com/calder-labs/provider-hub/internal/sync"
	"github.com/calder-labs/provider-hub/internal/usage"
)

// catalogRefresher joins the sync service's staleness check with the
// scheduler's background trigger for config-write side effects.
type catalogRefresher struct {
	*syncsvc.Service
	*syncsvc.Scheduler
}

func main() {
	logger.Initialize(logger.DefaultConfig())
	defer logger.Sync()
	log := logger.Get()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := otel.InitTracer("provider-hub", log, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	repo, err := sqlite.NewSQLiteStorage(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	var catalogCache cache.Cache
	if cfg.Redis.Enabled {
		catalogCache, err = rediscache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Info("Using redis catalog cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		catalogCache = memorycache.New()
	}

	source := catalog.NewOpenRouterClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.RequestTimeout,
		cfg.Catalog.CacheTTL,
		catalogCache,
		log,
	)

	syncService := syncsvc.NewService(log, repo, source)
	scheduler := syncsvc.NewScheduler(log, syncService, cfg.Sync.Interval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.Sync.RunOnStart && syncService.ShouldSync(ctx, cfg.Sync.MaxAge) {
		scheduler.TriggerBackground(false)
	}

	sealer, err := credentials.NewSealer(cfg.Secrets.EncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize credential sealer", zap.Error(err))
	}

	registryService := registry.NewService(log, repo)
	credService := credentials.NewService(log, repo, sealer)
	usageService := usage.NewService(log, repo)
	configService := modelconfig.NewService(log, repo, registryService,
		&catalogRefresher{Service: syncService, Scheduler: scheduler})

	srv := server.New(cfg, log, server.Services{
		Repo:     repo,
		Sync:     syncService,
		Registry: registryService,
		Configs:  configService,
		Creds:    credService,
		Usage:    usageService,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("Starting provider hub", zap.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
