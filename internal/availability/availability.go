// Package availability decides which slots of a court's day are still free.
package availability

import (
	"padelhub/pkg/model"
	"padelhub/pkg/timeslot"
)

// Grid lists every slot start from open in steps of duration whose slot
// still ends by close.
func Grid(open, close timeslot.TimeOfDay, duration int) []timeslot.TimeOfDay {
	if duration <= 0 || open >= close {
		return nil
	}

	var slots []timeslot.TimeOfDay
	for s := open; s.Add(duration) <= close; s = s.Add(duration) {
		slots = append(slots, s)
	}
	return slots
}

// OnGrid reports whether slot is one of the starts Grid would produce.
func OnGrid(open, close timeslot.TimeOfDay, duration int, slot timeslot.TimeOfDay) bool {
	if duration <= 0 || slot < open || slot.Add(duration) > close {
		return false
	}
	return (slot.Minutes()-open.Minutes())%duration == 0
}

// AvailableSlots returns the candidates not overlapped by a blocking booking
// on the same court and date. Bookings for other courts or dates, and
// cancelled ones, are ignored.
func AvailableSlots(courtID, bookingDate string, candidates []timeslot.TimeOfDay, existing []*model.Booking, duration int) []timeslot.TimeOfDay {
	free := make([]timeslot.TimeOfDay, 0, len(candidates))
	for _, slot := range candidates {
		if !blocked(courtID, bookingDate, slot, existing, duration) {
			free = append(free, slot)
		}
	}
	return free
}

// Taken returns the requested slots that are not available, in request order.
func Taken(courtID, bookingDate string, requested []timeslot.TimeOfDay, existing []*model.Booking, duration int) []timeslot.TimeOfDay {
	var taken []timeslot.TimeOfDay
	for _, slot := range requested {
		if blocked(courtID, bookingDate, slot, existing, duration) {
			taken = append(taken, slot)
		}
	}
	return taken
}

func blocked(courtID, bookingDate string, slot timeslot.TimeOfDay, existing []*model.Booking, duration int) bool {
	end := slot.Add(duration)
	for _, b := range existing {
		if b.CourtID != courtID || b.BookingDate != bookingDate || !model.IsBlockingStatus(b.Status) {
			continue
		}
		bStart, err := timeslot.Parse(b.StartTime)
		if err != nil {
			continue
		}
		bEnd, err := timeslot.Parse(b.EndTime)
		if err != nil || bEnd <= bStart {
			bEnd = bStart.Add(duration)
		}
		if timeslot.Overlaps(slot, end, bStart, bEnd) {
			return true
		}
	}
	return false
}
