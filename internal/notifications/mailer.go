package notifications

import (
	"context"
	"fmt"
	"padelhub/pkg/logger"
	"strings"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers an e-mail. Delivery itself lives outside this service.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer records messages in the log instead of sending them.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.log.Info("E-mail queued",
		"to", email.To,
		"subject", email.Subject,
		"body_length", len(email.Body),
	)
	return nil
}

// Compose renders the e-mail for ev. It returns false for events that do
// not notify the player.
func Compose(ev *Event) (Email, bool) {
	if ev.UserID == "" || len(ev.Bookings) == 0 {
		return Email{}, false
	}

	var subject, intro string
	switch ev.Type {
	case EventBookingCreated:
		subject = "Booking received for " + ev.BookingDate
		intro = "We received your booking:"
	case EventBookingCancelled:
		subject = "Booking cancelled for " + ev.BookingDate
		intro = "Your booking was cancelled:"
	case EventBookingStatusChanged:
		status := ev.Bookings[0].Status
		subject = fmt.Sprintf("Booking %s for %s", status, ev.BookingDate)
		intro = fmt.Sprintf("Your booking changed from %s to %s:", ev.PreviousStatus, status)
	default:
		return Email{}, false
	}

	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n\n")
	for _, booking := range ev.Bookings {
		fmt.Fprintf(&b, "  %s %s-%s  %s  (%s)\n",
			booking.BookingDate, booking.StartTime, booking.EndTime,
			formatCents(booking.TotalAmountCents), booking.Status)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", formatCents(ev.TotalCents()))

	return Email{To: ev.UserID, Subject: subject, Body: b.String()}, true
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
