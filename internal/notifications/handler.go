package notifications

import (
	"context"
	"padelhub/pkg/kafka"
	"padelhub/pkg/logger"
)

// EventHandler turns booking events into e-mails.
type EventHandler struct {
	mailer Mailer
	log    *logger.Logger
}

func NewEventHandler(mailer Mailer, log *logger.Logger) *EventHandler {
	return &EventHandler{mailer: mailer, log: log}
}

func (h *EventHandler) Handle(ctx context.Context, ev *Event) error {
	email, ok := Compose(ev)
	if !ok {
		h.log.Debug("Booking event needs no e-mail", "event_id", ev.ID, "event_type", ev.Type)
		return nil
	}

	if err := h.mailer.Send(ctx, email); err != nil {
		return kafka.NewTransientError("failed to send e-mail", err)
	}

	h.log.Info("Booking notification sent",
		"event_id", ev.ID,
		"event_type", ev.Type,
		"user_id", ev.UserID,
		"bookings", len(ev.Bookings),
	)
	return nil
}

// KafkaHandler adapts Handle to the Kafka consumer. Payloads that do not
// decode are permanent failures and go straight to the DLQ.
func (h *EventHandler) KafkaHandler() kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var ev Event
		if err := msg.DecodeValue(&ev); err != nil {
			return kafka.NewPermanentError("failed to decode booking event", err)
		}
		if ev.Type == "" {
			ev.Type = msg.GetEventType()
		}
		return h.Handle(ctx, &ev)
	}
}
