package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/wolfman30/bookline/cmd/mainconfig"
	"github.com/wolfman30/bookline/internal/activities"
	"github.com/wolfman30/bookline/internal/app/bootstrap"
	"github.com/wolfman30/bookline/internal/appointments"
	appconfig "github.com/wolfman30/bookline/internal/config"
	"github.com/wolfman30/bookline/internal/notify"
	"github.com/wolfman30/bookline/internal/observability/metrics"
	"github.com/wolfman30/bookline/internal/reminders"
	"github.com/wolfman30/bookline/pkg/logging"
)

// Standalone reminder scheduler. Run exactly one instance: the send-then-flag
// sequence is not idempotent across concurrent schedulers, so horizontal
// scaling of this binary can produce duplicate reminder emails.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("reminder worker requires DATABASE_URL")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	apptStore := appointments.NewStore(pool)
	activityStore := activities.NewStore(pool)
	notifyStore := notify.NewStore(pool)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	activityRepo := bootstrap.BuildActivityRepository(activityStore, redisClient, cfg, logger)

	sender, err := bootstrap.BuildEmailSender(ctx, cfg, mainconfig.LoadAWSConfig, logger)
	if err != nil {
		logger.Error("failed to build email sender", "error", err)
		os.Exit(1)
	}
	mailer := notify.NewMailer(notifyStore, sender, apptStore, metrics.NewEmailMetrics(nil), logger)

	sched := reminders.NewScheduler(apptStore, activityRepo, mailer, nil, metrics.NewReminderMetrics(nil), logger).
		WithInterval(cfg.ReminderTickInterval).
		WithDefaultHoursBefore(cfg.ReminderDefaultHoursBefore).
		WithCheckWindowHours(cfg.ReminderCheckWindowHours)

	go sched.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("reminder worker shutting down")
	cancel()
	time.Sleep(2 * time.Second)
}
