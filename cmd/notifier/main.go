package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"padelhub/internal/notifications"
	"padelhub/pkg/config"
	"padelhub/pkg/kafka"
	kafka_config "padelhub/pkg/kafka/config"
	kafka_middleware "padelhub/pkg/kafka/middleware"
)

const ServiceName = "booking-notifier"

// The notifier consumes booking events from the configured transport and
// sends the player e-mails.
func main() {
	cfg := config.Load(ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := notifications.NewEventHandler(notifications.NewLogMailer(cfg.Log), cfg.Log)

	var err error
	switch cfg.NotifyTransport {
	case config.NotifyTransportKafka:
		err = runKafka(ctx, cfg, handler)
	case config.NotifyTransportAMQP:
		err = runAMQP(ctx, cfg, handler)
	default:
		cfg.Log.Fatal("Notifier needs NOTIFY_TRANSPORT set to kafka or amqp", "transport", cfg.NotifyTransport)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Notifier stopped", "error", err)
	}
	cfg.Log.Info("Notifier stopped gracefully")
}

func runKafka(ctx context.Context, cfg *config.Config, handler *notifications.EventHandler) error {
	kcfg, err := kafka_config.Load()
	if err != nil {
		return err
	}
	kcfg.LogConfiguration(cfg.Log)

	consumer, err := kafka.NewConsumer(kcfg, cfg.BookingEventsTopic, cfg.NotifierGroupID, cfg.BookingEventsDLQTopic, handler.KafkaHandler(), cfg.Log)
	if err != nil {
		return err
	}

	metrics := kafka_middleware.NewMetrics()
	if kcfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close consumer", "error", err)
		}
		metrics.Log(cfg.Log)
	}()

	return consumer.Start(ctx)
}

func runAMQP(ctx context.Context, cfg *config.Config, handler *notifications.EventHandler) error {
	subscriber, err := notifications.NewAMQPSubscriber(cfg.AMQPURL, cfg.AMQPExchange, cfg.NotifierGroupID, handler, cfg.Log)
	if err != nil {
		return err
	}
	defer func() {
		if err := subscriber.Close(); err != nil {
			cfg.Log.Error("Failed to close subscriber", "error", err)
		}
	}()

	return subscriber.Run(ctx)
}
