package model

import "time"

// RateSchedule overrides a court's hourly rate inside a daily time window
// on selected weekdays (1=Monday..7=Sunday). The window is [StartTime, EndTime).
type RateSchedule struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CourtID    string    `json:"court_id" bson:"court_id" validate:"required,mongodb"`
	Name       string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	StartTime  string    `json:"start_time" bson:"start_time" validate:"required,hhmm"`
	EndTime    string    `json:"end_time" bson:"end_time" validate:"required,hhmm"`
	RateCents  int64     `json:"rate_cents" bson:"rate_cents" validate:"gte=0"`
	DaysOfWeek []int     `json:"days_of_week" bson:"days_of_week" validate:"required,min=1,max=7,unique,dive,min=1,max=7"`
	IsActive   bool      `json:"is_active" bson:"is_active"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

type RateScheduleUpdate struct {
	Name       string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	StartTime  string `json:"start_time,omitempty" validate:"omitempty,hhmm"`
	EndTime    string `json:"end_time,omitempty" validate:"omitempty,hhmm"`
	RateCents  *int64 `json:"rate_cents,omitempty" validate:"omitempty,gte=0"`
	DaysOfWeek []int  `json:"days_of_week,omitempty" validate:"omitempty,min=1,max=7,unique,dive,min=1,max=7"`
	IsActive   *bool  `json:"is_active,omitempty"`
}
