// Package timeslot holds the naive wall-clock types shared by pricing,
// availability and bookings: minute-of-day times, ISO weekdays and
// calendar dates without a zone.
package timeslot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinutesPerDay = 24 * 60
	DateLayout    = "2006-01-02"
)

var (
	ErrInvalidTime = errors.New("time must be in HH:MM or HH:MM:SS format")
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
)

// TimeOfDay is an offset in minutes from local midnight. 24:00 is accepted
// as the end of the day so closing times can cover the last hour.
type TimeOfDay int

func Parse(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		values[i] = n
	}

	hour, minute := values[0], values[1]
	second := 0
	if len(values) == 3 {
		second = values[2]
	}

	if hour == 24 && minute == 0 && second == 0 {
		return MinutesPerDay, nil
	}
	if hour > 23 || minute > 59 || second > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	// seconds are dropped, slots are minute aligned
	return TimeOfDay(hour*60 + minute), nil
}

func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// Within reports whether t falls inside the half-open window [start, end).
func (t TimeOfDay) Within(start, end TimeOfDay) bool {
	return start <= t && t < end
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any minute.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// Normalize re-formats an accepted time string into canonical HH:MM.
func Normalize(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// ParseDate reads a calendar date and returns it as midnight UTC so that
// comparisons never depend on the host zone.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// DateOf drops the clock part of t, keeping the calendar date as seen in t's zone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// DaysBetween counts whole calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// At combines a naive date and time of day into a wall-clock instant in loc.
func At(date time.Time, t TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, int(t)/60, int(t)%60, 0, 0, loc)
}
