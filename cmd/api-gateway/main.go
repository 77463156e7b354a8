package main

import (
	"context"
	"errors"
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

	_ "github.com/johnnyphung-laccd/calricula/api/swagger"
	"github.com/johnnyphung-laccd/calricula/internal/handler"
	"github.com/johnnyphung-laccd/calricula/internal/middleware"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	"github.com/johnnyphung-laccd/calricula/internal/repository"
	"github.com/johnnyphung-laccd/calricula/internal/service"
	"github.com/johnnyphung-laccd/calricula/internal/workflow"
	"github.com/johnnyphung-laccd/calricula/pkg/cache"
	"github.com/johnnyphung-laccd/calricula/pkg/config"
	"github.com/johnnyphung-laccd/calricula/pkg/database"
	"github.com/johnnyphung-laccd/calricula/pkg/logger"
	corsmiddleware "github.com/johnnyphung-laccd/calricula/pkg/middleware/cors"
	reqidmiddleware "github.com/johnnyphung-laccd/calricula/pkg/middleware/requestid"
	"github.com/johnnyphung-laccd/calricula/pkg/storage"
)

// @title Calricula Curriculum API
// @version 1.0.0
// @description Course and program outlines, compliance audits and the approval workflow.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}

	validate := service.NewValidator()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	programRepo := repository.NewProgramRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	justificationRepo := repository.NewJustificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Compliance.JustificationCacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courseRepo, userRepo, validate, logr)
	programSvc := service.NewProgramService(programRepo, userRepo, validate, logr)
	complianceSvc := service.NewComplianceService(courseRepo, programRepo, justificationRepo, cacheSvc, metricsSvc, logr, service.ComplianceServiceConfig{
		JustificationCacheTTL: cfg.Compliance.JustificationCacheTTL,
	})
	workflowSvc := service.NewWorkflowService(workflowRepo, courseRepo, programRepo, userRepo, metricsSvc, logr,
		service.WithAuthorizer(workflow.NewAuthorizer(
			workflow.WithSelfReviewForbidden(cfg.Workflow.ForbidSelfReview),
			workflow.WithOverrideRole(models.UserRole(cfg.Workflow.OverrideRole)),
		)),
	)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(complianceSvc, files, signer, userRepo, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)
	go exportSvc.RunCleanup(ctx, cfg.Exports.CleanupInterval)

	sweepSvc := service.NewSweepService(courseRepo, complianceSvc, cacheSvc, metricsSvc, logr, service.SweepConfig{
		Workers:    cfg.Sweeps.WorkerConcurrency,
		MaxRetries: cfg.Sweeps.WorkerRetries,
		ResultTTL:  cfg.Sweeps.ResultTTL,
	})
	if cfg.Sweeps.Enabled {
		sweepSvc.Start(ctx)
	} else {
		logr.Info("compliance sweeps disabled")
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	dependencies := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		dependencies["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc.Handler(), dependencies)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	programHandler := handler.NewProgramHandler(programSvc)
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)
	complianceHandler := handler.NewComplianceHandler(complianceSvc, exportSvc, sweepSvc)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/export/:token", complianceHandler.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	secured.GET("/auth/me", authHandler.Me)

	courses := secured.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.POST("", courseHandler.Create)
	courses.GET("/:id", courseHandler.Get)
	courses.PUT("/:id", courseHandler.Update)
	courses.GET("/:id/compliance", complianceHandler.CourseAudit)
	courses.POST("/:id/compliance/export", complianceHandler.ExportCourse)
	courses.POST("/:id/submit", workflowHandler.SubmitCourse)
	courses.POST("/:id/advance", workflowHandler.AdvanceCourse)
	courses.POST("/:id/return", workflowHandler.ReturnCourse)
	courses.GET("/:id/history", workflowHandler.CourseHistory)

	programs := secured.Group("/programs")
	programs.GET("", programHandler.List)
	programs.POST("", programHandler.Create)
	programs.GET("/:id", programHandler.Get)
	programs.PUT("/:id", programHandler.Update)
	programs.GET("/:id/compliance", complianceHandler.ProgramAudit)
	programs.POST("/:id/submit", workflowHandler.SubmitProgram)
	programs.POST("/:id/advance", workflowHandler.AdvanceProgram)
	programs.POST("/:id/return", workflowHandler.ReturnProgram)
	programs.GET("/:id/history", workflowHandler.ProgramHistory)

	compliance := secured.Group("/compliance")
	compliance.GET("/rules", complianceHandler.Rules)
	sweeps := compliance.Group("/sweeps")
	sweeps.Use(middleware.RequireRoles(models.RoleCurriculumChair, models.RoleAdmin))
	sweeps.POST("", middleware.Audit(userRepo, logr, models.AuditActionComplianceSweep, "department"), complianceHandler.StartSweep)
	sweeps.GET("/:id", complianceHandler.GetSweep)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if cfg.Sweeps.Enabled {
		sweepSvc.Stop()
	}
}
