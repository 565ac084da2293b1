package timeline

import (
	"strings"
	"time"
)

// DayTypes lists the valid day-type keys in week order.
var DayTypes = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// DayType returns the weekday key for a date, used to match a recurring
// schedule template to that date.
func DayType(date time.Time) string {
	return strings.ToLower(date.Weekday().String())
}

// ValidDayType reports whether s is a recognized day-type key.
func ValidDayType(s string) bool {
	for _, d := range DayTypes {
		if d == s {
			return true
		}
	}
	return false
}
