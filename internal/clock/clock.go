// Package clock converts between "HH:MM" wall-clock strings and integer
// minutes since midnight, and formats minute values for display.
package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

// NowMinutes returns the current minutes since midnight in the given location.
func NowMinutes(loc *time.Location) int {
	now := time.Now().In(loc)
	return now.Hour()*60 + now.Minute()
}

// ToMinutes parses an "HH:MM" wall-clock string into minutes since midnight.
// Malformed or out-of-range input is an error, never a silent zero.
func ToMinutes(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: bad hour", s)
	}
	mins, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: bad minute", s)
	}
	if hours < 0 || hours > 23 || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return hours*60 + mins, nil
}

// MinutesToDisplay renders a duration as "1h", "45m", or "1h 5m".
// Zero or negative durations render as the empty string.
func MinutesToDisplay(totalMinutes int) string {
	if totalMinutes <= 0 {
		return ""
	}
	h := totalMinutes / 60
	m := totalMinutes % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatTime renders minutes-of-day as a 12-hour clock time, e.g. "1:30 PM".
// No leading zero on the hour; midnight and noon map to 12.
func FormatTime(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	displayH := h % 12
	if displayH == 0 {
		displayH = 12
	}
	return fmt.Sprintf("%d:%02d %s", displayH, m, period)
}

// FormatTimeRange renders a start/end pair, e.g. "7:00 AM – 7:30 AM".
func FormatTimeRange(start, end int) string {
	return FormatTime(start) + " – " + FormatTime(end)
}
