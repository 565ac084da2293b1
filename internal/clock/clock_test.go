package clock

import (
	"testing"
	"time"
)

func TestNowMinutes(t *testing.T) {
	// Bracket the call so a minute rollover mid-test cannot flake.
	before := time.Now().UTC()
	got := NowMinutes(time.UTC)
	after := time.Now().UTC()

	lo := before.Hour()*60 + before.Minute()
	hi := after.Hour()*60 + after.Minute()
	if hi < lo {
		// Midnight rollover; the value just has to be a valid minute
		hi = MinutesPerDay - 1
		lo = 0
	}
	if got < lo || got > hi {
		t.Errorf("NowMinutes = %d, want between %d and %d", got, lo, hi)
	}
}

func TestToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"07:00", 420},
		{"07:30", 450},
		{"12:00", 720},
		{"13:30", 810},
		{"23:59", 1439},
		{"9:05", 545},
	}
	for _, tt := range tests {
		got, err := ToMinutes(tt.in)
		if err != nil {
			t.Errorf("ToMinutes(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ToMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestToMinutesInvalid(t *testing.T) {
	for _, in := range []string{"", "7", "7:xx", "xx:30", "24:00", "12:60", "-1:00", "12:-5", "seven:thirty"} {
		if _, err := ToMinutes(in); err == nil {
			t.Errorf("ToMinutes(%q) expected error, got nil", in)
		}
	}
}

func TestMinutesToDisplay(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, ""},
		{-5, ""},
		{45, "45m"},
		{60, "1h"},
		{65, "1h 5m"},
		{1, "1m"},
		{120, "2h"},
		{150, "2h 30m"},
	}
	for _, tt := range tests {
		if got := MinutesToDisplay(tt.in); got != tt.want {
			t.Errorf("MinutesToDisplay(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "12:00 AM"},
		{30, "12:30 AM"},
		{420, "7:00 AM"},
		{720, "12:00 PM"},
		{810, "1:30 PM"},
		{1439, "11:59 PM"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimeRange(t *testing.T) {
	got := FormatTimeRange(420, 450)
	want := "7:00 AM – 7:30 AM"
	if got != want {
		t.Errorf("FormatTimeRange = %q, want %q", got, want)
	}
}

// Round-trip: any valid HH:MM survives ToMinutes and back through the
// 24-hour reconstruction.
func TestRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m += 7 {
			in := itoa2(h) + ":" + itoa2(m)
			got, err := ToMinutes(in)
			if err != nil {
				t.Fatalf("ToMinutes(%q): %v", in, err)
			}
			if got != h*60+m {
				t.Fatalf("ToMinutes(%q) = %d, want %d", in, got, h*60+m)
			}
		}
	}
}

func itoa2(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
