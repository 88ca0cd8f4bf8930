package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/bookline/cmd/mainconfig"
	"github.com/wolfman30/bookline/internal/activities"
	"github.com/wolfman30/bookline/internal/api/router"
	"github.com/wolfman30/bookline/internal/app/bootstrap"
	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/availability"
	appconfig "github.com/wolfman30/bookline/internal/config"
	"github.com/wolfman30/bookline/internal/notify"
	"github.com/wolfman30/bookline/internal/observability/metrics"
	"github.com/wolfman30/bookline/internal/reminders"
	"github.com/wolfman30/bookline/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bookline API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database not reachable", "error", err)
		os.Exit(1)
	}

	// Stores
	apptStore := appointments.NewStore(pool)
	activityStore := activities.NewStore(pool)
	availStore := availability.NewStore(pool)
	notifyStore := notify.NewStore(pool)

	// Optional redis cache in front of the activity catalog
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	activityRepo := bootstrap.BuildActivityRepository(activityStore, redisClient, cfg, logger)

	// Email pipeline
	emailMetrics := metrics.NewEmailMetrics(nil)
	sender, err := bootstrap.BuildEmailSender(ctx, cfg, mainconfig.LoadAWSConfig, logger)
	if err != nil {
		logger.Error("failed to build email sender", "error", err)
		os.Exit(1)
	}
	mailer := notify.NewMailer(notifyStore, sender, apptStore, emailMetrics, logger)

	// Booking service and handlers
	svc := appointments.NewService(apptStore, activityRepo, availStore, mailer, nil, logger)
	apptHandler := appointments.NewHandler(svc, logger)
	activitiesHandler := activities.NewHandler(activityRepo, logger)
	availabilityHandler := availability.NewHandler(availStore, logger)

	// Reminder scheduler (in-process; disable when running the standalone worker)
	if cfg.ReminderWorkerEnabled {
		sched := reminders.NewScheduler(apptStore, activityRepo, mailer, nil, metrics.NewReminderMetrics(nil), logger).
			WithInterval(cfg.ReminderTickInterval).
			WithDefaultHoursBefore(cfg.ReminderDefaultHoursBefore).
			WithCheckWindowHours(cfg.ReminderCheckWindowHours)
		go sched.Start(ctx)
	}

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: apptHandler,
		ActivitiesHandler:   activitiesHandler,
		AvailabilityHandler: availabilityHandler,
		MetricsHandler:      promhttp.Handler(),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
