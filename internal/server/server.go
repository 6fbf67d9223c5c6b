package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/calder-labs/provider-hub/internal/config"
	"github.com/calder-labs/provider-hub/internal/credentials"
	"github.com/calder-labs/provider-hub/internal/modelconfig"
	"github.com/calder-labs/provider-hub/internal/registry"
	"github.com/calder-labs/provider-hub/internal/server/middleware"
	"github.com/calder-labs/provider-hub/internal/server/validator"
	"github.com/calder-labs/provider-hub/internal/store"
	syncsvc "github.com/calder-labs/provider-hub/internal/sync"
	"github.com/calder-labs/provider-hub/internal/usage"
)

// Services bundles everything the HTTP layer exposes.
type Services struct {
	Repo     store.Repository
	Sync     *syncsvc.Service
	Registry *registry.Service
	Configs  *modelconfig.Service
	Creds    *credentials.Service
	Usage    *usage.Service
}

type Server struct {
	router   *gin.Engine
	config   *config.Config
	logger   *zap.Logger
	services Services
}

func New(cfg *config.Config, logger *zap.Logger, services Services) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.Init()

	engine := gin.New()

	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.Tracing("provider-hub"))

	s := &Server{
		router:   engine,
		config:   cfg,
		logger:   logger,
		services: services,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
