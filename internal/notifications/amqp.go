package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"padelhub/pkg/logger"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes events to a topic exchange with the event type as
// routing key.
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	log      *logger.Logger
	mu       sync.Mutex
}

func NewAMQPNotifier(url, exchange string, log *logger.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Info("Connected to RabbitMQ", "exchange", exchange)
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, ev *Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ev.Type, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	err = n.ch.PublishWithContext(ctx, n.exchange, ev.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

// AMQPSubscriber binds a durable queue to every booking event on the
// exchange and feeds deliveries to an EventHandler.
type AMQPSubscriber struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	handler *EventHandler
	log     *logger.Logger
}

func NewAMQPSubscriber(url, exchange, queue string, handler *EventHandler, log *logger.Logger) (*AMQPSubscriber, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	closeAll := func() {
		_ = ch.Close()
		_ = conn.Close()
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "booking.*", exchange, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		closeAll()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &AMQPSubscriber{conn: conn, ch: ch, queue: q.Name, handler: handler, log: log}, nil
}

// Run consumes until ctx is cancelled. Undecodable deliveries are dropped;
// handler failures are requeued once.
func (s *AMQPSubscriber) Run(ctx context.Context) error {
	deliveries, err := s.ch.ConsumeWithContext(ctx, s.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.queue, err)
	}

	s.log.Info("AMQP subscriber started", "queue", s.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", s.queue)
			}
			s.handle(ctx, d)
		}
	}
}

func (s *AMQPSubscriber) handle(ctx context.Context, d amqp.Delivery) {
	var ev Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		s.log.Error("Dropping undecodable delivery", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := s.handler.Handle(ctx, &ev); err != nil {
		requeue := !d.Redelivered
		s.log.Warn("Failed to handle booking event",
			"event_id", ev.ID,
			"event_type", ev.Type,
			"requeue", requeue,
			"error", err,
		)
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

func (s *AMQPSubscriber) Close() error {
	_ = s.ch.Close()
	return s.conn.Close()
}
