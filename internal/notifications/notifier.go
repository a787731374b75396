package notifications

import (
	"context"
	"fmt"
	"padelhub/pkg/config"
	"padelhub/pkg/kafka"
	kafka_config "padelhub/pkg/kafka/config"
	kafka_middleware "padelhub/pkg/kafka/middleware"
	"padelhub/pkg/logger"
)

// Notifier hands booking events to the message transport.
type Notifier interface {
	Notify(ctx context.Context, ev *Event) error
	Close() error
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, *Event) error { return nil }
func (NoopNotifier) Close() error                          { return nil }

// New builds the notifier selected by NOTIFY_TRANSPORT.
func New(cfg *config.Config, serviceName string) (Notifier, error) {
	switch cfg.NotifyTransport {
	case config.NotifyTransportKafka:
		kcfg, err := kafka_config.Load()
		if err != nil {
			return nil, err
		}
		kcfg.LogConfiguration(cfg.Log)

		producer, err := kafka.NewProducer(kcfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka producer: %w", err)
		}

		metrics := kafka_middleware.NewMetrics()
		if kcfg.EnableMiddleware {
			producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
			producer.Use(metrics.ProducerMiddleware())
		}
		return NewKafkaNotifier(producer, serviceName, metrics, cfg.Log), nil

	case config.NotifyTransportAMQP:
		return NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.Log)

	default:
		cfg.Log.Info("Booking notifications disabled", "transport", cfg.NotifyTransport)
		return NoopNotifier{}, nil
	}
}

// Publish sends ev. Failures are logged, never returned.
func Publish(ctx context.Context, n Notifier, log *logger.Logger, ev *Event) {
	if n == nil || ev == nil {
		return
	}
	if err := n.Notify(ctx, ev); err != nil {
		log.Error("Failed to publish booking event",
			"event_id", ev.ID,
			"event_type", ev.Type,
			"court_id", ev.CourtID,
			"bookings", len(ev.Bookings),
			"error", err,
		)
		return
	}
	log.Debug("Booking event published",
		"event_id", ev.ID,
		"event_type", ev.Type,
		"court_id", ev.CourtID,
	)
}
