package timeline

import (
	"testing"
	"time"
)

func TestDayType(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), "sunday"},
		{time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), "monday"},
		{time.Date(2026, 8, 28, 12, 30, 0, 0, time.UTC), "friday"},
		{time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC), "saturday"},
	}
	for _, tt := range tests {
		if got := DayType(tt.date); got != tt.want {
			t.Errorf("DayType(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestValidDayType(t *testing.T) {
	for _, d := range DayTypes {
		if !ValidDayType(d) {
			t.Errorf("ValidDayType(%q) = false, want true", d)
		}
	}
	for _, d := range []string{"", "Monday", "weekday", "holiday"} {
		if ValidDayType(d) {
			t.Errorf("ValidDayType(%q) = true, want false", d)
		}
	}
}
