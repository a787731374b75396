package settings

import (
	"fmt"
	"padelhub/pkg/timeslot"
	"padelhub/pkg/validation"
)

const (
	KeyMaxSlotsPerBooking  = "max_slots_per_booking"
	KeyBookingAdvanceDays  = "booking_advance_days"
	KeyCancellationHours   = "cancellation_hours"
	KeyOperatingHours      = "operating_hours"
	KeySlotDuration        = "slot_duration"
	KeyAutoConfirmBookings = "auto_confirm_bookings"
	KeyMaintenanceMode     = "maintenance_mode"
	KeyEmailNotifications  = "email_notifications"
)

const (
	DefaultMaxSlotsPerBooking  = 2
	DefaultBookingAdvanceDays  = 30
	DefaultCancellationHours   = 24
	DefaultOpeningTime         = "06:00"
	DefaultClosingTime         = "23:00"
	DefaultSlotDurationMin     = 60
	DefaultAutoConfirmBookings = false
	DefaultMaintenanceMode     = false
	DefaultEmailNotifications  = true
)

var descriptions = map[string]string{
	KeyMaxSlotsPerBooking:  "Maximum number of slots a user can book in one request",
	KeyBookingAdvanceDays:  "How many days in advance bookings can be made",
	KeyCancellationHours:   "Minimum hours before the slot starts to allow cancellation",
	KeyOperatingHours:      "Daily opening and closing times",
	KeySlotDuration:        "Slot length in minutes",
	KeyAutoConfirmBookings: "Confirm new bookings without admin review",
	KeyMaintenanceMode:     "Reject new bookings while enabled",
	KeyEmailNotifications:  "Send booking e-mails",
}

type OperatingHours struct {
	Start string `json:"start" bson:"start" validate:"required,hhmm"`
	End   string `json:"end" bson:"end" validate:"required,hhmm"`
}

// Settings is the venue-wide configuration every booking decision is made against.
type Settings struct {
	MaxSlotsPerBooking  int            `json:"max_slots_per_booking"`
	BookingAdvanceDays  int            `json:"booking_advance_days"`
	CancellationHours   int            `json:"cancellation_hours"`
	OperatingHours      OperatingHours `json:"operating_hours"`
	SlotDurationMin     int            `json:"slot_duration"`
	AutoConfirmBookings bool           `json:"auto_confirm_bookings"`
	MaintenanceMode     bool           `json:"maintenance_mode"`
	EmailNotifications  bool           `json:"email_notifications"`
}

func Defaults() Settings {
	return Settings{
		MaxSlotsPerBooking: DefaultMaxSlotsPerBooking,
		BookingAdvanceDays: DefaultBookingAdvanceDays,
		CancellationHours:  DefaultCancellationHours,
		OperatingHours: OperatingHours{
			Start: DefaultOpeningTime,
			End:   DefaultClosingTime,
		},
		SlotDurationMin:     DefaultSlotDurationMin,
		AutoConfirmBookings: DefaultAutoConfirmBookings,
		MaintenanceMode:     DefaultMaintenanceMode,
		EmailNotifications:  DefaultEmailNotifications,
	}
}

// Opening and Closing fall back to the defaults for unparsable values;
// Validate rejects those before they are stored.
func (s Settings) Opening() timeslot.TimeOfDay {
	t, err := timeslot.Parse(s.OperatingHours.Start)
	if err != nil {
		return timeslot.MustParse(DefaultOpeningTime)
	}
	return t
}

func (s Settings) Closing() timeslot.TimeOfDay {
	t, err := timeslot.Parse(s.OperatingHours.End)
	if err != nil {
		return timeslot.MustParse(DefaultClosingTime)
	}
	return t
}

func (s Settings) Validate() error {
	var errs validation.ValidationErrors

	if s.MaxSlotsPerBooking < 1 || s.MaxSlotsPerBooking > 24 {
		errs = append(errs, validation.ValidationError{Field: KeyMaxSlotsPerBooking, Message: "must be between 1 and 24"})
	}
	if s.BookingAdvanceDays < 0 || s.BookingAdvanceDays > 365 {
		errs = append(errs, validation.ValidationError{Field: KeyBookingAdvanceDays, Message: "must be between 0 and 365"})
	}
	if s.CancellationHours < 0 || s.CancellationHours > 720 {
		errs = append(errs, validation.ValidationError{Field: KeyCancellationHours, Message: "must be between 0 and 720"})
	}
	if s.SlotDurationMin < 15 || s.SlotDurationMin > 240 {
		errs = append(errs, validation.ValidationError{Field: KeySlotDuration, Message: "must be between 15 and 240 minutes"})
	}

	open, errOpen := timeslot.Parse(s.OperatingHours.Start)
	end, errEnd := timeslot.Parse(s.OperatingHours.End)
	switch {
	case errOpen != nil || errEnd != nil:
		errs = append(errs, validation.ValidationError{Field: KeyOperatingHours, Message: "start and end must be in HH:MM format"})
	case open >= end:
		errs = append(errs, validation.ValidationError{Field: KeyOperatingHours, Message: "end must be after start"})
	case s.SlotDurationMin > 0 && end.Minutes()-open.Minutes() < s.SlotDurationMin:
		errs = append(errs, validation.ValidationError{
			Field:   KeyOperatingHours,
			Message: fmt.Sprintf("must fit at least one %d minute slot", s.SlotDurationMin),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Patch carries a partial settings update; nil fields are left unchanged.
type Patch struct {
	MaxSlotsPerBooking  *int            `json:"max_slots_per_booking,omitempty"`
	BookingAdvanceDays  *int            `json:"booking_advance_days,omitempty"`
	CancellationHours   *int            `json:"cancellation_hours,omitempty"`
	OperatingHours      *OperatingHours `json:"operating_hours,omitempty"`
	SlotDurationMin     *int            `json:"slot_duration,omitempty"`
	AutoConfirmBookings *bool           `json:"auto_confirm_bookings,omitempty"`
	MaintenanceMode     *bool           `json:"maintenance_mode,omitempty"`
	EmailNotifications  *bool           `json:"email_notifications,omitempty"`
}

// Apply merges p onto s and returns the merged settings together with the
// store values of the keys that changed.
func (p *Patch) Apply(s Settings) (Settings, map[string]any) {
	changed := map[string]any{}

	if p.MaxSlotsPerBooking != nil {
		s.MaxSlotsPerBooking = *p.MaxSlotsPerBooking
		changed[KeyMaxSlotsPerBooking] = s.MaxSlotsPerBooking
	}
	if p.BookingAdvanceDays != nil {
		s.BookingAdvanceDays = *p.BookingAdvanceDays
		changed[KeyBookingAdvanceDays] = s.BookingAdvanceDays
	}
	if p.CancellationHours != nil {
		s.CancellationHours = *p.CancellationHours
		changed[KeyCancellationHours] = s.CancellationHours
	}
	if p.OperatingHours != nil {
		s.OperatingHours = *p.OperatingHours
		if start, err := timeslot.Normalize(s.OperatingHours.Start); err == nil {
			s.OperatingHours.Start = start
		}
		if end, err := timeslot.Normalize(s.OperatingHours.End); err == nil {
			s.OperatingHours.End = end
		}
		changed[KeyOperatingHours] = s.OperatingHours
	}
	if p.SlotDurationMin != nil {
		s.SlotDurationMin = *p.SlotDurationMin
		changed[KeySlotDuration] = s.SlotDurationMin
	}
	if p.AutoConfirmBookings != nil {
		s.AutoConfirmBookings = *p.AutoConfirmBookings
		changed[KeyAutoConfirmBookings] = s.AutoConfirmBookings
	}
	if p.MaintenanceMode != nil {
		s.MaintenanceMode = *p.MaintenanceMode
		changed[KeyMaintenanceMode] = s.MaintenanceMode
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
		changed[KeyEmailNotifications] = s.EmailNotifications
	}

	return s, changed
}

// Values returns s keyed the way it is stored.
func (s Settings) Values() map[string]any {
	return map[string]any{
		KeyMaxSlotsPerBooking:  s.MaxSlotsPerBooking,
		KeyBookingAdvanceDays:  s.BookingAdvanceDays,
		KeyCancellationHours:   s.CancellationHours,
		KeyOperatingHours:      s.OperatingHours,
		KeySlotDuration:        s.SlotDurationMin,
		KeyAutoConfirmBookings: s.AutoConfirmBookings,
		KeyMaintenanceMode:     s.MaintenanceMode,
		KeyEmailNotifications:  s.EmailNotifications,
	}
}

func Description(key string) string {
	return descriptions[key]
}
