package notifications

import (
	"context"
	"fmt"
	"padelhub/pkg/kafka"
	kafka_middleware "padelhub/pkg/kafka/middleware"
	"padelhub/pkg/logger"
)

const schemaVersion = "1"

// Publisher is the part of kafka.Producer the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaNotifier writes events to the booking events topic keyed by court id,
// so one court's events stay ordered within a partition.
type KafkaNotifier struct {
	producer Publisher
	source   string
	metrics  *kafka_middleware.Metrics
	log      *logger.Logger
}

func NewKafkaNotifier(producer Publisher, source string, metrics *kafka_middleware.Metrics, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		source:   source,
		metrics:  metrics,
		log:      log,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, ev *Event) error {
	msg, err := kafka.NewMessage().
		WithKey(ev.CourtID).
		WithValue(ev).
		WithEventID(ev.ID).
		WithEventType(ev.Type).
		WithSource(n.source).
		WithSchemaVersion(schemaVersion).
		WithTimestamp(ev.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s message: %w", ev.Type, err)
	}

	if err := n.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	if n.metrics != nil {
		n.metrics.Log(n.log)
	}
	return n.producer.Close()
}
