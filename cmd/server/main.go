package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phone-slot-api/internal/handler"
	"github.com/noah-isme/phone-slot-api/internal/middleware"
	"github.com/noah-isme/phone-slot-api/internal/repository"
	"github.com/noah-isme/phone-slot-api/internal/service"
	"github.com/noah-isme/phone-slot-api/pkg/cache"
	"github.com/noah-isme/phone-slot-api/pkg/config"
	"github.com/noah-isme/phone-slot-api/pkg/database"
	"github.com/noah-isme/phone-slot-api/pkg/jobs"
	"github.com/noah-isme/phone-slot-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/phone-slot-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/phone-slot-api/pkg/middleware/requestid"
)

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
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	reportRepo := repository.NewReportRepository(db)
	sweepRepo := repository.NewSweepRepository(redisClient, cfg.Sweep.SessionTTL)
	cacheRepo := repository.NewCacheRepository(redisClient)
	changeFeed := repository.NewChangeFeed(redisClient)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr)
	authSvc := service.NewAuthService(cfg.Auth.AppPasscode, cfg.Auth.ResetPasscode, cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	rosterSvc := service.NewRosterService(studentRepo, logr)
	sweepSvc := service.NewSweepService(sweepRepo, rosterSvc, logr)
	mailSvc := service.NewMailService(service.NewSendGridSender(cfg.Mail.SendGridKey), service.MailConfig{
		FromName:      cfg.Mail.FromName,
		FromEmail:     cfg.Mail.FromEmail,
		SubjectPrefix: cfg.Mail.SubjectPrefix,
	}, metricsSvc, logr)

	mailQueue := jobs.NewQueue("report-email", mailSvc.JobHandler(), jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		MaxRetries: cfg.Mail.MaxRetries,
		Logger:     logr,
	})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	reportSvc := service.NewReportService(sweepSvc, reportRepo, analyticsRepo, cacheSvc, changeFeed, sweepRepo, mailQueue, metricsSvc, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, reportRepo, cacheSvc, metricsSvc, logr)
	resetSvc := service.NewResetService(authSvc, analyticsRepo, reportRepo, cacheSvc, changeFeed, cfg.Reset.BatchSize, logr)
	labelSvc := service.NewLabelService(studentRepo, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	sweepHandler := handler.NewSweepHandler(sweepSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, resetSvc, changeFeed, cfg.Analytics.StreamHeartbeat, logr)
	mailHandler := handler.NewMailHandler(mailSvc)
	labelHandler := handler.NewLabelHandler(labelSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/unlock", authHandler.Unlock)

	protected := api.Group("")
	protected.Use(middleware.Session(authSvc))

	timed := protected.Group("")
	timed.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	{
		timed.GET("/sweep", sweepHandler.List)
		timed.POST("/sweep/entries", sweepHandler.AddSlot)
		timed.POST("/sweep/scan", sweepHandler.Scan)
		timed.DELETE("/sweep/entries/:id", sweepHandler.Remove)
		timed.PATCH("/sweep/entries/:id/status", sweepHandler.ToggleLate)
		timed.DELETE("/sweep", sweepHandler.Clear)
		timed.GET("/sweep/report", reportHandler.Preview)

		timed.POST("/reports", reportHandler.Submit)
		timed.GET("/reports", reportHandler.ListByDate)

		timed.GET("/analytics", analyticsHandler.Lifetime)
		timed.GET("/analytics/range", analyticsHandler.Range)
		timed.GET("/analytics/export", analyticsHandler.ExportCSV)
		timed.POST("/analytics/reset", analyticsHandler.Reset)

		timed.POST("/report-email", mailHandler.Send)
		timed.GET("/report-email", handler.MethodNotAllowed)

		timed.GET("/labels.pdf", labelHandler.Sheet)
	}

	// The SSE stream holds its connection open, so it skips the request timeout.
	protected.GET("/analytics/stream", analyticsHandler.Stream)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
