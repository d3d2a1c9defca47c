package timeline

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// FullDayMinutes is the length of one schedule day.
const FullDayMinutes = 24 * 60

// minutesPerHour for clock conversions.
const minutesPerHour = 60

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// ParseClock converts an "HH:MM" string to minutes of day in [0, 1440).
// Malformed input parses to minute 0. This silent-correction default is
// deliberate: the renderer degrades instead of rejecting a whole schedule
// over one bad field. Callers that need to distinguish the two cases use
// ParseClockStrict.
func ParseClock(value string) int {
	minutes, ok := ParseClockStrict(value)
	if !ok {
		return 0
	}
	return minutes
}

// ParseClockStrict converts an "HH:MM" or "HH:MM:SS" string to minutes of
// day, reporting whether the input was well formed.
func ParseClockStrict(value string) (int, bool) {
	match := clockPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	total := hours*minutesPerHour + minutes
	return ((total % FullDayMinutes) + FullDayMinutes) % FullDayMinutes, true
}

// WrapDuration computes the interval length between two minutes-of-day
// values, crossing midnight when end precedes start.
func WrapDuration(start, end int) int {
	if end >= start {
		return end - start
	}
	return FullDayMinutes - start + end
}

// WrapMinutes normalizes a minutes value into [0, 1440).
func WrapMinutes(minutes float64) float64 {
	wrapped := math.Mod(minutes, FullDayMinutes)
	if wrapped < 0 {
		wrapped += FullDayMinutes
	}
	return wrapped
}

// FormatClock renders minutes of day as a zero-padded "HH:MM" string.
func FormatClock(minutes int) string {
	normalized := ((minutes % FullDayMinutes) + FullDayMinutes) % FullDayMinutes
	return fmt.Sprintf("%02d:%02d", normalized/minutesPerHour, normalized%minutesPerHour)
}

// FormatDuration renders a minute count as a compact "2h 30m" style string.
func FormatDuration(minutes int) string {
	hours := minutes / minutesPerHour
	remainder := minutes % minutesPerHour
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", remainder)
	case remainder == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, remainder)
	}
}
