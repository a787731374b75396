package model

import (
	"time"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CourtID          string    `json:"court_id" bson:"court_id" validate:"required,mongodb"`
	UserID           string    `json:"user_id" bson:"user_id" validate:"required,max=64"`
	BookingDate      string    `json:"booking_date" bson:"booking_date" validate:"required,datetime=2006-01-02"`
	StartTime        string    `json:"start_time" bson:"start_time" validate:"required,hhmm"`
	EndTime          string    `json:"end_time" bson:"end_time" validate:"required,hhmm"`
	TotalAmountCents int64     `json:"total_amount_cents" bson:"total_amount_cents" validate:"gte=0"`
	Status           string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Notes            string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

// BookingRequest is one user's request for one or more slots on a court and date.
type BookingRequest struct {
	UserID      string   `json:"-" validate:"required,max=64"`
	CourtID     string   `json:"court_id" validate:"required,mongodb"`
	BookingDate string   `json:"booking_date" validate:"required,datetime=2006-01-02"`
	Slots       []string `json:"slots" validate:"omitempty,dive,hhmm"`
	Notes       string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type BookingCancel struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type BookingStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

// IsBlockingStatus reports whether a booking in this status holds its slot.
func IsBlockingStatus(status string) bool {
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted:
		return true
	}
	return false
}

func BlockingStatuses() []string {
	return []string{BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted}
}

var statusTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// Cancelled and completed bookings are final.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsCancellable reports whether the owner may still cancel a booking in this status.
func IsCancellable(status string) bool {
	return status == BookingStatusPending || status == BookingStatusConfirmed
}
