package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken is returned when the store rejects a booking because a
	// blocking booking already holds the same court, date and start time.
	ErrSlotTaken = errors.New("slot already booked")

	ErrStatusChanged = errors.New("booking status changed concurrently")
)
