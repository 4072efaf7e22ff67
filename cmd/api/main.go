package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/exam-planner/backend/api/swagger"
	"github.com/exam-planner/backend/internal/authz"
	"github.com/exam-planner/backend/internal/handler"
	"github.com/exam-planner/backend/internal/middleware"
	"github.com/exam-planner/backend/internal/models"
	"github.com/exam-planner/backend/internal/repository"
	"github.com/exam-planner/backend/internal/service"
	"github.com/exam-planner/backend/pkg/cache"
	"github.com/exam-planner/backend/pkg/config"
	"github.com/exam-planner/backend/pkg/database"
	"github.com/exam-planner/backend/pkg/jobs"
	"github.com/exam-planner/backend/pkg/logger"
	"github.com/exam-planner/backend/pkg/mailer"
	corsmiddleware "github.com/exam-planner/backend/pkg/middleware/cors"
	reqidmiddleware "github.com/exam-planner/backend/pkg/middleware/requestid"
	"github.com/exam-planner/backend/pkg/storage"
)

// @title Exam Planner API
// @version 1.0.0
// @description Role-based exam scheduling backend
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheSvc := service.NewCacheService(nil, nil, 0, logr, false)
	if cfg.Cache.Enabled {
		redisClient, redisErr := cache.NewRedis(cfg.Redis)
		if redisErr != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(redisErr))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	examRepo := repository.NewExamRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	var notifier mailer.Mailer
	switch cfg.Mail.Backend {
	case "sendgrid":
		notifier = mailer.NewSendgridMailer(cfg.Mail.SendgridKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	default:
		notifier = mailer.NewConsoleMailer(logr)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	examSvc := service.NewExamService(examRepo, courseRepo, groupRepo, periodRepo, roomRepo, userRepo, validate, logr, notifier)
	courseSvc := service.NewCourseService(courseRepo, userRepo, groupRepo, validate, logr)
	periodSvc := service.NewPeriodService(periodRepo, cacheSvc, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, cacheSvc, validate, logr)
	userSvc := service.NewUserService(userRepo, groupRepo, cacheSvc, validate, logr)
	importSvc := service.NewImportService(userRepo, groupRepo, logr)
	syncSvc := service.NewSyncService(
		&http.Client{Timeout: cfg.Sync.Timeout},
		userRepo, courseRepo, roomRepo, cacheSvc, cfg.Sync, logr,
	)
	settingsSvc := service.NewSettingsService(settingsRepo, userRepo, cacheSvc, logr)

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(examRepo, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)
	exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, metricsSvc, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue(service.JobTypeTimetableExport, exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportJobSvc := service.NewExportJobService(exportJobRepo, exportQueue, exportSvc, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportJobSvc.RecoverPendingJobs(ctx)
	exportJobSvc.StartCleanup(ctx)

	authHandler := handler.NewAuthHandler(authSvc)
	examHandler := handler.NewExamHandler(examSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	userHandler := handler.NewUserHandler(userSvc)
	exportHandler := handler.NewExportHandler(exportJobSvc, exportSvc)
	importHandler := handler.NewImportHandler(importSvc)
	syncHandler := handler.NewSyncHandler(syncSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Signed tokens carry their own authorization.
	api.GET("/exports/download/:token", exportHandler.DownloadExport)

	protected := api.Group("", middleware.JWT(authSvc))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.POST("/auth/change-password", authHandler.ChangePassword)
	protected.GET("/auth/me", authHandler.Me)

	exams := protected.Group("/exams")
	exams.GET("", middleware.Require(authz.ActionViewExams), examHandler.List)
	exams.GET("/missing", middleware.Require(authz.ActionViewExams), examHandler.Missing)
	exams.GET("/:id", middleware.Require(authz.ActionViewExams), examHandler.Get)
	exams.POST("", middleware.Require(authz.ActionProposeExam), middleware.Audit(userRepo, "EXAM_PROPOSE", "exams"), examHandler.Propose)
	exams.PUT("/:id/review", middleware.Require(authz.ActionReviewExam), middleware.Audit(userRepo, "EXAM_REVIEW", "exams"), examHandler.Review)
	exams.PUT("/:id/reschedule", middleware.Require(authz.ActionRescheduleExam), middleware.Audit(userRepo, "EXAM_RESCHEDULE", "exams"), examHandler.Reschedule)
	exams.PUT("/:id", middleware.Require(authz.ActionEditExam), middleware.Audit(userRepo, "EXAM_EDIT", "exams"), examHandler.Update)

	periods := protected.Group("/periods")
	periods.GET("", middleware.Require(authz.ActionViewPeriods), periodHandler.List)
	periods.POST("", middleware.Require(authz.ActionManagePeriods), periodHandler.Create)
	periods.PUT("/:id", middleware.Require(authz.ActionManagePeriods), periodHandler.Update)
	periods.DELETE("/:id", middleware.Require(authz.ActionManagePeriods), periodHandler.Delete)

	rooms := protected.Group("/rooms")
	rooms.GET("", middleware.Require(authz.ActionViewRooms), roomHandler.List)
	rooms.POST("", middleware.Require(authz.ActionManageRooms), roomHandler.Create)
	rooms.PUT("/:id", middleware.Require(authz.ActionManageRooms), roomHandler.Update)
	rooms.DELETE("/:id", middleware.Require(authz.ActionManageRooms), roomHandler.Delete)

	courses := protected.Group("/courses")
	courses.GET("", middleware.Require(authz.ActionViewCourses), courseHandler.List)
	courses.GET("/:id", middleware.Require(authz.ActionViewCourses), courseHandler.Get)
	courses.PUT("/:id", middleware.Require(authz.ActionEditCourse), courseHandler.Update)
	courses.PUT("/:id/examination-method", middleware.Require(authz.ActionSetExaminationMethod), courseHandler.SetExaminationMethod)

	users := protected.Group("/users")
	users.GET("", middleware.Require(authz.ActionManageUsers), userHandler.List)
	users.GET("/professors", middleware.Require(authz.ActionViewProfessors), userHandler.Professors)
	users.GET("/:id", middleware.RequireSelfOr(authz.ActionManageUsers), userHandler.Get)
	users.POST("", middleware.Require(authz.ActionManageUsers), middleware.Audit(userRepo, models.AuditActionUserCreate, "users"), userHandler.Create)
	users.PUT("/:id", middleware.Require(authz.ActionManageUsers), middleware.Audit(userRepo, models.AuditActionUserUpdate, "users"), userHandler.Update)
	users.DELETE("/:id", middleware.Require(authz.ActionManageUsers), userHandler.Deactivate)

	exports := protected.Group("/exports")
	exports.POST("", middleware.Require(authz.ActionExportData), exportHandler.CreateExport)
	exports.GET("/status/:id", middleware.Require(authz.ActionExportData), exportHandler.ExportStatus)
	exports.GET("/exam-table", middleware.Require(authz.ActionExportData), exportHandler.DownloadTimetable)

	imports := protected.Group("/imports")
	imports.POST("/users", middleware.Require(authz.ActionImportUsers), importHandler.Upload)
	imports.GET("/users/template", middleware.Require(authz.ActionImportUsers), importHandler.Template)

	protected.POST("/sync", middleware.Require(authz.ActionSyncData), syncHandler.Run)
	protected.POST("/settings/reset", middleware.Require(authz.ActionResetDatabase), settingsHandler.ResetDatabase)
	protected.GET("/metrics/snapshot", metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
