package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/opsdesk/opsdesk-api/api/swagger"
	"github.com/opsdesk/opsdesk-api/internal/handler"
	"github.com/opsdesk/opsdesk-api/internal/middleware"
	"github.com/opsdesk/opsdesk-api/internal/repository"
	"github.com/opsdesk/opsdesk-api/internal/service"
	"github.com/opsdesk/opsdesk-api/pkg/cache"
	"github.com/opsdesk/opsdesk-api/pkg/config"
	"github.com/opsdesk/opsdesk-api/pkg/database"
	"github.com/opsdesk/opsdesk-api/pkg/icsfeed"
	"github.com/opsdesk/opsdesk-api/pkg/logger"
	corsmiddleware "github.com/opsdesk/opsdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/opsdesk/opsdesk-api/pkg/middleware/requestid"
)

// @title OpsDesk API
// @version 0.1.0
// @description Calendar scheduling and reconciliation service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	eventRepo := repository.NewEventRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.AgendaCacheTTL, logr, cfg.Calendar.CacheEnabled)
	}

	scheduleSvc := service.NewScheduleService(eventRepo, taskRepo, cacheSvc, nil, logr)
	agendaSvc := service.NewAgendaService(scheduleSvc, cacheSvc, logr, service.AgendaServiceConfig{
		StatsCacheTTL:  cfg.Calendar.StatsCacheTTL,
		AgendaCacheTTL: cfg.Calendar.AgendaCacheTTL,
	})
	pipelineSvc := service.NewPipelineService(eventRepo, cacheSvc, logr)
	slotSvc := service.NewSlotService()
	exportSvc := service.NewExportService(agendaSvc, nil, nil, logr)
	tokenSvc := service.NewTokenService(cfg.JWT)

	var bridgeSvc *service.BridgeService
	if cfg.Bridge.Enabled {
		provider := icsfeed.NewClient(cfg.Bridge.FetchTimeout)
		bridgeSvc = service.NewBridgeService(provider, integrationRepo, eventRepo, cacheSvc, metricsSvc, logr, service.BridgeServiceConfig{
			SyncHorizon: cfg.Bridge.SyncHorizon,
		})
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	eventHandler := handler.NewEventHandler(scheduleSvc)
	taskHandler := handler.NewTaskHandler(scheduleSvc)
	agendaHandler := handler.NewAgendaHandler(agendaSvc, nil)
	if bridgeSvc != nil {
		agendaHandler = handler.NewAgendaHandler(agendaSvc, bridgeSvc)
	}
	gridHandler := handler.NewGridHandler()
	contentHandler := handler.NewContentHandler(pipelineSvc)
	slotHandler := handler.NewSlotHandler(slotSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))
	{
		api.POST("/events", eventHandler.Create)
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.Get)
		api.PATCH("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)

		api.POST("/tasks", taskHandler.Create)
		api.GET("/tasks", taskHandler.List)
		api.GET("/tasks/:id", taskHandler.Get)
		api.PATCH("/tasks/:id", taskHandler.Update)
		api.DELETE("/tasks/:id", taskHandler.Delete)
		api.POST("/tasks/:id/toggle", taskHandler.Toggle)

		api.GET("/agenda", agendaHandler.Agenda)
		api.GET("/agenda/overdue", agendaHandler.Overdue)
		api.GET("/agenda/stats", agendaHandler.Stats)

		api.GET("/grid/week", gridHandler.Week)
		api.GET("/grid/month", gridHandler.Month)
		api.GET("/grid/hours", gridHandler.Hours)

		api.GET("/content/board", contentHandler.Board)
		api.POST("/content/:id/transition", contentHandler.Transition)

		api.POST("/slots/draft", slotHandler.Draft)

		api.GET("/export/agenda", exportHandler.Agenda)

		if bridgeSvc != nil {
			integrationHandler := handler.NewIntegrationHandler(bridgeSvc)
			api.POST("/integrations/calendar/connect", integrationHandler.Connect)
			api.POST("/integrations/calendar/sync", integrationHandler.Sync)
			api.GET("/integrations/calendar", integrationHandler.Status)
			api.DELETE("/integrations/calendar", integrationHandler.Disconnect)
		}
	}

	var scheduler *cron.Cron
	if bridgeSvc != nil && cfg.Bridge.SyncSchedule != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.Bridge.SyncSchedule, func() {
			bridgeSvc.SyncAll(context.Background())
		}); err != nil {
			logr.Sugar().Fatalw("invalid sync schedule", "schedule", cfg.Bridge.SyncSchedule, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
