package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/study-on/course-store/internal/config"
	"github.com/study-on/course-store/internal/lib/sl"
	"github.com/study-on/course-store/internal/lib/smtp"
	"github.com/study-on/course-store/internal/rabbitmq"
	senderservice "github.com/study-on/course-store/internal/services/sender"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	sender := senderservice.NewSenderService(smtp.NewTransport(cfg, logger), logger)

	err = rabbitmq.ConsumerMessage(ctx, ch, "notifications.rent-expiring", sender.SendRentExpiringNotice)
	if err != nil {
		logger.Error("failed to start consumer", sl.Err(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("notification-sender stopped gracefully")
}
