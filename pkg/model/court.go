package model

import "time"

type Court struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description     string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	HourlyRateCents int64     `json:"hourly_rate_cents" bson:"hourly_rate_cents" validate:"gte=0"`
	IsActive        bool      `json:"is_active" bson:"is_active"`
	Amenities       []string  `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"omitempty,max=20,dive,min=2,max=50"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

type CourtUpdate struct {
	Name            string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description     *string   `json:"description,omitempty" validate:"omitempty,max=500"`
	HourlyRateCents *int64    `json:"hourly_rate_cents,omitempty" validate:"omitempty,gte=0"`
	IsActive        *bool     `json:"is_active,omitempty"`
	Amenities       *[]string `json:"amenities,omitempty" validate:"omitempty,max=20,dive,min=2,max=50"`
}
