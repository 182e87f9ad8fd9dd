package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/transferpath/degree-audit-api/api/swagger"
	"github.com/transferpath/degree-audit-api/internal/engine"
	"github.com/transferpath/degree-audit-api/internal/handler"
	"github.com/transferpath/degree-audit-api/internal/middleware"
	"github.com/transferpath/degree-audit-api/internal/models"
	"github.com/transferpath/degree-audit-api/internal/repository"
	"github.com/transferpath/degree-audit-api/internal/service"
	"github.com/transferpath/degree-audit-api/pkg/cache"
	"github.com/transferpath/degree-audit-api/pkg/config"
	"github.com/transferpath/degree-audit-api/pkg/database"
	"github.com/transferpath/degree-audit-api/pkg/jobs"
	"github.com/transferpath/degree-audit-api/pkg/logger"
	corsmiddleware "github.com/transferpath/degree-audit-api/pkg/middleware/cors"
	reqidmiddleware "github.com/transferpath/degree-audit-api/pkg/middleware/requestid"
	"github.com/transferpath/degree-audit-api/pkg/storage"
)

// @title Degree Audit API
// @version 1.0.0
// @description Degree-requirement satisfaction and transfer progress engine
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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	if pinned := cfg.Progress.KeywordTableVersion; pinned != "" && pinned != engine.DefaultKeywordTable.Version {
		logr.Warn("keyword table version mismatch",
			zap.String("pinned", pinned),
			zap.String("shipped", engine.DefaultKeywordTable.Version))
	}

	// repositories
	programRepo := repository.NewProgramRepository(db)
	planRepo := repository.NewPlanRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	equivalencyRepo := repository.NewEquivalencyRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// services
	var metricsService *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsService = service.NewMetricsService()
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Progress.CacheTTL, logr, redisClient != nil)
	progressService := service.NewProgressService(planRepo, programRepo, courseRepo, equivalencyRepo, cacheService, metricsService, logr, service.ProgressServiceConfig{
		CacheTTL:             cfg.Progress.CacheTTL,
		DefaultCourseCredits: cfg.Progress.DefaultCourseCredits,
	})
	planService := service.NewPlanService(planRepo, progressService, nil, logr)
	programService := service.NewProgramService(programRepo, logr)
	equivalencyService := service.NewEquivalencyService(equivalencyRepo, nil, logr)
	authService := service.NewAuthService(cfg.JWT.Secret)

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	var auditService *service.AuditService
	exportQueue := jobs.NewQueue("audit_export", func(ctx context.Context, job jobs.Job) error {
		return auditService.ProcessJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	auditService = service.NewAuditService(progressService, exportRepo, exportStorage, signer, exportQueue, metricsService, logr, service.AuditConfig{
		Enabled:   cfg.Exports.Enabled,
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exportQueue.Start(rootCtx)
	if err := auditService.RecoverQueued(rootCtx); err != nil {
		logr.Warn("export job recovery failed", zap.Error(err))
	}
	if cfg.Exports.CleanupInterval > 0 {
		go runExportCleanup(rootCtx, auditService, cfg.Exports.CleanupInterval, logr)
	}

	// handlers
	planHandler := handler.NewPlanHandler(planService)
	programHandler := handler.NewProgramHandler(programService)
	progressHandler := handler.NewProgressHandler(progressService)
	auditHandler := handler.NewAuditHandler(auditService)
	equivalencyHandler := handler.NewEquivalencyHandler(equivalencyService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// signed token downloads carry their own authorisation
	api.GET("/exports/:token", auditHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.GET("/programs/:id", programHandler.Get)
		authed.GET("/programs/:id/requirements", programHandler.CurrentSet)
		authed.GET("/programs/:id/requirement-sets", programHandler.ListSets)
		authed.GET("/requirement-sets/:setId", programHandler.GetSet)

		authed.GET("/students/:studentId/plans", middleware.RBAC("SELF", models.RoleAdvisor, models.RoleAdmin), planHandler.ListByStudent)
		authed.POST("/plans", planHandler.Create)
		authed.GET("/plans/:id", planHandler.Get)
		authed.PUT("/plans/:id", planHandler.Update)
		authed.DELETE("/plans/:id", planHandler.Delete)
		authed.POST("/plans/:id/courses", planHandler.AddCourse)
		authed.PUT("/plans/:id/courses/:courseId", planHandler.UpdateCourse)
		authed.DELETE("/plans/:id/courses/:courseId", planHandler.RemoveCourse)

		authed.GET("/plans/:id/progress", progressHandler.Get)
		authed.GET("/plans/:id/audit", auditHandler.Get)
		authed.POST("/plans/:id/audit/export", auditHandler.Export)
		authed.GET("/export-jobs/:jobId", auditHandler.Status)

		authed.GET("/equivalencies", equivalencyHandler.List)
		authed.GET("/equivalencies/resolve", equivalencyHandler.Resolve)
		authed.POST("/equivalencies", middleware.RBAC(models.RoleAdvisor, models.RoleAdmin), equivalencyHandler.Create)
		authed.DELETE("/equivalencies/:id", middleware.RBAC(models.RoleAdmin), equivalencyHandler.Delete)

		authed.GET("/system/metrics", middleware.RBAC(models.RoleAdmin), metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown failed", zap.Error(err))
	}
	exportQueue.Stop()
}

func runExportCleanup(ctx context.Context, audits *service.AuditService, interval time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := audits.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("export cleanup removed files", zap.Int("count", len(removed)))
			}
		}
	}
}
