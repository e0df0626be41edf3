package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mergington/internal/notifications"
	"mergington/internal/shared/config"
	"mergington/pkg/logger"

	"github.com/joho/godotenv"
)

// roster-audit tails the participant topic and logs every roster change.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	appLogger := logger.New()

	consumerCfg := notifications.DefaultConsumerConfig()
	consumerCfg.Brokers = cfg.Kafka.Brokers
	consumerCfg.Topics = []string{cfg.Kafka.Topic}
	consumerCfg.GroupID = cfg.Kafka.GroupID

	consumer, err := notifications.NewEventConsumer(consumerCfg, notifications.NewAuditHandler(appLogger), appLogger)
	if err != nil {
		appLogger.Error("Failed to start roster audit consumer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.Start(ctx, cfg.Kafka.ConsumerWorkers)
	<-ctx.Done()

	appLogger.Info("Shutting down roster audit...")
	if err := consumer.Stop(); err != nil {
		appLogger.Error("Error stopping consumer", slog.Any("error", err))
	}
}
