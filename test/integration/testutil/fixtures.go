package testutil

import (
	"time"

	"github.com/google/uuid"

	"padelhub/pkg/model"
)

type CourtBuilder struct {
	court model.Court
}

func NewCourtBuilder() *CourtBuilder {
	return &CourtBuilder{
		court: model.Court{
			Name:            "Court " + uuid.NewString()[:8],
			HourlyRateCents: 4000,
			IsActive:        true,
			Amenities:       []string{"lights"},
		},
	}
}

func (b *CourtBuilder) WithName(name string) *CourtBuilder {
	b.court.Name = name
	return b
}

func (b *CourtBuilder) WithHourlyRate(cents int64) *CourtBuilder {
	b.court.HourlyRateCents = cents
	return b
}

func (b *CourtBuilder) Inactive() *CourtBuilder {
	b.court.IsActive = false
	return b
}

func (b *CourtBuilder) Build() model.Court {
	return b.court
}

type RateScheduleBuilder struct {
	schedule model.RateSchedule
}

// NewRateScheduleBuilder starts from an evening peak window on every day.
func NewRateScheduleBuilder(courtID string) *RateScheduleBuilder {
	return &RateScheduleBuilder{
		schedule: model.RateSchedule{
			CourtID:    courtID,
			Name:       "Peak",
			StartTime:  "18:00",
			EndTime:    "22:00",
			RateCents:  6000,
			DaysOfWeek: []int{1, 2, 3, 4, 5, 6, 7},
			IsActive:   true,
		},
	}
}

func (b *RateScheduleBuilder) WithWindow(start, end string) *RateScheduleBuilder {
	b.schedule.StartTime = start
	b.schedule.EndTime = end
	return b
}

func (b *RateScheduleBuilder) WithRate(cents int64) *RateScheduleBuilder {
	b.schedule.RateCents = cents
	return b
}

func (b *RateScheduleBuilder) OnDays(days ...int) *RateScheduleBuilder {
	b.schedule.DaysOfWeek = days
	return b
}

func (b *RateScheduleBuilder) Build() model.RateSchedule {
	return b.schedule
}

// DaysAhead returns the calendar date n days from today in loc.
func DaysAhead(loc *time.Location, n int) string {
	return time.Now().In(loc).AddDate(0, 0, n).Format(time.DateOnly)
}
