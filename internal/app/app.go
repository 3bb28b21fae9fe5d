package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/runreview/core/internal/config"
	"github.com/runreview/core/internal/database"
	"github.com/runreview/core/internal/middleware"
	"github.com/runreview/core/internal/modules/batch"
	"github.com/runreview/core/internal/modules/curation"
	"github.com/runreview/core/internal/modules/curation/providers"
	"github.com/runreview/core/internal/modules/synthesis"
	pkgcron "github.com/runreview/core/internal/pkg/cron"
	pkgredis "github.com/runreview/core/internal/pkg/redis"
	"github.com/runreview/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
	rc     *pkgredis.Client
}

// New initializes the application: config → DB → Redis → services → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	curationSvc := buildCurationService(db, cfg, logger)
	engine := synthesis.NewEngine(cfg, logger)
	taskSvc := taskqueue.NewService(rc)
	orchestrator := batch.NewOrchestrator(db, curationSvc, engine, taskSvc, cfg.Curation, logger)

	ctx, cancel := context.WithCancel(context.Background())

	sched := pkgcron.New()
	registerCronJobs(sched, orchestrator, taskSvc, logger)
	go sched.Start(ctx)

	app := &App{cfg: cfg, router: router, db: db, logger: logger, cancel: cancel, sched: sched, rc: rc}
	app.registerRoutes(rc, curationSvc, orchestrator, taskSvc)

	return app, nil
}

// buildCurationService assembles the collector from whichever search
// providers are configured. Missing credentials disable a branch, they are
// never fatal.
func buildCurationService(db *gorm.DB, cfg *config.AppConfig, logger *zap.Logger) *curation.Service {
	timeout := cfg.Curation.ProviderTimeout

	var web providers.WebSearcher
	switch {
	case cfg.Providers.Serper.APIKey != "":
		web = providers.NewSerper(cfg.Providers.Serper.APIKey, timeout)
	case cfg.Providers.GoogleSearch.APIKey != "" && cfg.Providers.GoogleSearch.EngineID != "":
		web = providers.NewGoogleCSE(cfg.Providers.GoogleSearch.APIKey, cfg.Providers.GoogleSearch.EngineID, timeout)
	default:
		logger.Warn("no web search provider configured, web collection disabled")
	}

	var video providers.VideoSearcher
	if cfg.Providers.YouTube.APIKey != "" {
		video = providers.NewYouTube(cfg.Providers.YouTube.APIKey, timeout)
	}

	var product providers.ProductSearcher
	if cfg.Providers.Rakuten.ApplicationID != "" {
		product = providers.NewRakuten(cfg.Providers.Rakuten.ApplicationID, cfg.Providers.Rakuten.AffiliateID, timeout)
	}

	collector := curation.NewCollector(web, video, product, logger)
	return curation.NewService(db, collector, curation.NewOGPEnricher(), logger)
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines and closes the Redis pool.
func (a *App) Shutdown() {
	a.cancel()
	if a.rc != nil {
		if err := a.rc.Close(); err != nil {
			a.logger.Warn("redis close", zap.Error(err))
		}
	}
}
