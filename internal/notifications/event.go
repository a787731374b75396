// Package notifications publishes booking lifecycle events and turns them
// into e-mails on the consuming side.
package notifications

import (
	"padelhub/pkg/model"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingStatusChanged = "booking.status_changed"
)

// Event describes a change to one or more bookings of a single request.
// All bookings share the court, date and user.
type Event struct {
	ID             string           `json:"id"`
	Type           string           `json:"type"`
	OccurredAt     time.Time        `json:"occurred_at"`
	CourtID        string           `json:"court_id"`
	UserID         string           `json:"user_id"`
	BookingDate    string           `json:"booking_date"`
	PreviousStatus string           `json:"previous_status,omitempty"`
	Bookings       []*model.Booking `json:"bookings"`
}

func NewEvent(eventType string, bookings []*model.Booking) *Event {
	ev := &Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Bookings:   bookings,
	}
	if len(bookings) > 0 {
		ev.CourtID = bookings[0].CourtID
		ev.UserID = bookings[0].UserID
		ev.BookingDate = bookings[0].BookingDate
	}
	return ev
}

func (e *Event) TotalCents() int64 {
	var total int64
	for _, b := range e.Bookings {
		total += b.TotalAmountCents
	}
	return total
}
