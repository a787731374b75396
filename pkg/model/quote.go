package model

// SlotPrice is the resolved price of one slot and the rule that produced it.
// ScheduleID is empty when the court's default hourly rate applied.
type SlotPrice struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	PriceCents   int64  `json:"price_cents"`
	ScheduleID   string `json:"schedule_id,omitempty"`
	ScheduleName string `json:"schedule_name"`
}

type Quote struct {
	CourtID     string      `json:"court_id"`
	BookingDate string      `json:"booking_date"`
	Slots       []SlotPrice `json:"slots"`
	TotalCents  int64       `json:"total_cents"`
}

type SlotAvailability struct {
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Available  bool   `json:"available"`
	PriceCents int64  `json:"price_cents"`
}

type Availability struct {
	CourtID     string             `json:"court_id"`
	BookingDate string             `json:"booking_date"`
	Slots       []SlotAvailability `json:"slots"`
}
