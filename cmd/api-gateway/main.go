package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/acadsys/registrar-api/api/swagger"
	"github.com/acadsys/registrar-api/internal/handler"
	"github.com/acadsys/registrar-api/internal/middleware"
	"github.com/acadsys/registrar-api/internal/repository"
	"github.com/acadsys/registrar-api/internal/service"
	"github.com/acadsys/registrar-api/pkg/config"
	"github.com/acadsys/registrar-api/pkg/jobs"
	"github.com/acadsys/registrar-api/pkg/logger"
	corsmiddleware "github.com/acadsys/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadsys/registrar-api/pkg/middleware/requestid"
	"github.com/acadsys/registrar-api/pkg/storage"
)

// @title Registrar API
// @version 1.0.0
// @description Enrollment and academic records engine
// @BasePath /
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One lock guards the whole registry/catalog/enrollment state. The
	// collections themselves are unsynchronized.
	stateMu := &sync.RWMutex{}
	students := repository.NewStudentRegistry(cfg.Limits.MaxStudents)
	courses := repository.NewCourseCatalog(cfg.Limits.MaxCourses)
	enrollments := repository.NewEnrollmentStore(cfg.Limits.MaxEnrollments)
	auditLog := repository.NewAuditLog(cfg.Audit.Capacity, logr)

	metricsSvc := service.NewMetricsService()
	studentSvc := service.NewStudentService(students, auditLog, metricsSvc, stateMu, nil, logr)
	courseSvc := service.NewCourseService(courses, auditLog, metricsSvc, stateMu, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(students, courses, enrollments, auditLog, metricsSvc, stateMu, nil, logr)
	analyticsSvc := service.NewAnalyticsService(students, courses, enrollments, auditLog, stateMu, logr)
	auditSvc := service.NewAuditService(auditLog, stateMu)

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(students, courses, enrollments, auditLog, stateMu, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, nil, nil)

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		reportQueue := jobs.NewQueue("reports", func(ctx context.Context, job jobs.Job) error {
			return reportSvc.Handle(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc = service.NewReportService(reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportSvc.StartCleanup(ctx)
	}

	studentHandler := handler.NewStudentHandler(studentSvc, enrollmentSvc, analyticsSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, enrollmentSvc, analyticsSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, auditSvc)
	exportHandler := handler.NewExportHandler(exportSvc, reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/students", studentHandler.Register)
		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)
		api.DELETE("/students/:id", studentHandler.Deactivate)
		api.GET("/students/:id/enrollments", studentHandler.Enrollments)
		api.GET("/students/:id/gpa", studentHandler.GPA)

		api.POST("/courses", courseHandler.Create)
		api.GET("/courses", courseHandler.List)
		api.GET("/courses/:id", courseHandler.Get)
		api.GET("/courses/:id/enrollments", courseHandler.Enrollments)
		api.GET("/courses/:id/statistics", courseHandler.Statistics)

		api.POST("/enrollments", enrollmentHandler.Enroll)
		api.GET("/enrollments/:id", enrollmentHandler.Get)
		api.PUT("/enrollments/:id/grade", enrollmentHandler.RecordGrade)
		api.DELETE("/enrollments/:id", enrollmentHandler.Drop)

		api.GET("/statistics", analyticsHandler.SystemStatistics)
		api.GET("/audit-log", analyticsHandler.AuditLog)

		api.GET("/export", exportHandler.Dump)
		api.GET("/export/:token", exportHandler.Download)
		api.POST("/reports", exportHandler.CreateReport)
		api.GET("/reports/:id", exportHandler.ReportStatus)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("shutdown incomplete", "error", err)
	}
}
