package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/study-on/course-store/internal/config"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/rabbitmq"
	schedulerservice "github.com/study-on/course-store/internal/services/scheduler"
	"github.com/study-on/course-store/internal/storage/repository"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-scheduler", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to connect to RabbitMQ", slog.String("URL", cfg.RabbitMQURL))
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to setup RabbitMQ channel")
	defer func() {
		_ = ch.Close()
	}()

	scheduler := schedulerservice.NewSchedulerService(
		db,
		&schedulerservice.AMQPPublisher{Channel: ch},
		cfg.ExpiryLookahead,
		logger,
	)
	scheduler.Run(ctx, cfg.ScanInterval)

	logger.Info("notification-scheduler stopped gracefully")
}
