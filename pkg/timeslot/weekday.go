package timeslot

import (
	"sort"
	"strings"
	"time"
)

const (
	Monday    = 1
	Tuesday   = 2
	Wednesday = 3
	Thursday  = 4
	Friday    = 5
	Saturday  = 6
	Sunday    = 7
)

var weekdayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ISOWeekday maps t's weekday onto 1=Monday..7=Sunday.
// time.Weekday counts Sunday as 0, so it needs the remap.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return wd
}

func ValidWeekday(d int) bool {
	return d >= Monday && d <= Sunday
}

func WeekdayName(d int) string {
	if !ValidWeekday(d) {
		return ""
	}
	return weekdayNames[d]
}

// FormatWeekdays renders a weekday set as "Mon, Tue, Sat", ordered Monday first.
func FormatWeekdays(days []int) string {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)

	names := make([]string, 0, len(sorted))
	for _, d := range sorted {
		if name := WeekdayName(d); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// ContainsWeekday reports whether days includes d.
func ContainsWeekday(days []int, d int) bool {
	for _, day := range days {
		if day == d {
			return true
		}
	}
	return false
}
