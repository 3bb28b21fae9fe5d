package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runreview/core/internal/middleware"
	"github.com/runreview/core/internal/modules/batch"
	"github.com/runreview/core/internal/modules/curation"
	pkgredis "github.com/runreview/core/internal/pkg/redis"
	"github.com/runreview/core/internal/pkg/response"
	"github.com/runreview/core/internal/pkg/taskqueue"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client, curationSvc *curation.Service, orchestrator *batch.Orchestrator, taskSvc *taskqueue.Service) {
	r := a.router
	secretMW := middleware.BatchSecret(a.cfg.Curation.BatchSecret)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	r.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "uptime": time.Since(processStart).Truncate(time.Second).String()})
	})

	api := r.Group(apiPrefix)
	api.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL: 30 * time.Second,
		SkipPaths: []string{
			apiPrefix + "/batch/",
		},
	}))

	curation.NewHandler(curationSvc).RegisterRoutes(api, secretMW)
	batch.NewHandler(orchestrator, taskSvc).RegisterRoutes(api, secretMW)

	// Scheduler introspection and manual triggering.
	api.GET("/cron", secretMW, func(c *gin.Context) {
		response.OK(c, a.sched.List())
	})
	api.GET("/cron/:name", secretMW, func(c *gin.Context) {
		state, err := a.sched.GetTask(c.Param("name"))
		if err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.OK(c, state)
	})
	api.POST("/cron/:name/run", secretMW, func(c *gin.Context) {
		name := c.Param("name")
		// The job outlives the request, so detach from its cancellation.
		if err := a.sched.Run(context.WithoutCancel(c.Request.Context()), name); err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.OK(c, gin.H{"name": name, "triggered": true})
	})
}

var processStart = time.Now()
