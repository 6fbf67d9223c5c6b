package server

import (
	"github.com/calder-labs/provider-hub/internal/server/middleware"
	v1 "github.com/calder-labs/provider-hub/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	rl := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)
	s.router.Use(rl.Middleware())

	healthHandler := v1.NewHealthHandler(s.services.Repo)
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/ready", healthHandler.Ready)

	versionHandler := v1.NewVersionHandler()
	s.router.GET("/version", versionHandler.Version)

	api := s.router.Group("/api/providers")
	{
		syncHandler := v1.NewSyncHandler(s.services.Sync)
		api.POST("/models/sync", syncHandler.Sync)
		api.GET("/models/sync/status", syncHandler.SyncStatus)
		api.POST("/models/initialize", syncHandler.Initialize)

		modelHandler := v1.NewModelHandler(s.services.Repo, s.services.Sync, s.services.Creds)
		api.GET("/models", modelHandler.List)
		api.POST("/models", modelHandler.Add)
		api.GET("/models/available", modelHandler.Available)
		api.POST("/models/:model_string/activate", modelHandler.Activate)
		api.POST("/models/:model_string/deactivate", modelHandler.Deactivate)

		serviceHandler := v1.NewServiceHandler(s.services.Registry)
		api.POST("/services/register", serviceHandler.Register)
		api.GET("/services/registry", serviceHandler.ListRegistry)
		api.POST("/services/registry/sync", serviceHandler.SyncRegistry)
		api.POST("/services/registry/initialize", serviceHandler.InitializeRegistry)
		api.GET("/services/registry/validate", serviceHandler.Validate)
		api.GET("/services/registry/statistics", serviceHandler.Statistics)
		api.GET("/services/agents", serviceHandler.Agents)
		api.GET("/services/backend", serviceHandler.Backend)
		api.GET("/services/:service_name", serviceHandler.Get)
		api.POST("/services/:service_name/deprecate", serviceHandler.Deprecate)

		configHandler := v1.NewConfigHandler(s.services.Configs)
		api.GET("/config", configHandler.List)
		api.POST("/config", configHandler.Set)
		api.GET("/config/:service_name", configHandler.Get)
		api.DELETE("/config/:service_name", configHandler.Delete)

		keyHandler := v1.NewKeyHandler(s.services.Creds)
		api.POST("/keys", keyHandler.Set)
		api.GET("/keys/providers", keyHandler.Providers)
		api.DELETE("/keys/:provider", keyHandler.Delete)

		usageHandler := v1.NewUsageHandler(s.services.Usage, s.services.Registry)
		api.POST("/usage/track", usageHandler.Track)
		api.GET("/usage/summary", usageHandler.Summary)
		api.GET("/usage/daily", usageHandler.Daily)
		api.GET("/usage/estimate/monthly", usageHandler.EstimateMonthly)
		api.GET("/usage/models/top", usageHandler.TopModels)
	}
}
