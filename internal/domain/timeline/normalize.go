package timeline

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Field synonym tables, in resolution priority order. Generator variants have
// shipped many spellings for the same concept; keeping the accepted set as
// data means one place to read and one place to extend.
var (
	labelKeys = []string{"label", "activity", "activity_name", "activityName", "title", "name"}
	dateKeys  = []string{"date", "day", "day_name", "dayName"}
	agentKeys = []string{"agent"}
	startKeys = []string{
		"start", "start_time", "startTime", "begin", "time",
		"start_at", "startAt", "minute_start", "minuteStart",
		"start_minutes", "startMinutes", "start_minute",
	}
	endKeys = []string{
		"end", "end_time", "endTime", "finish",
		"end_at", "endAt", "minute_end", "minuteEnd",
		"end_minutes", "endMinutes", "end_minute",
	}
	durationKeys = []string{
		"duration_minutes", "duration", "minutes",
		"minute_duration", "length_minutes", "length", "durationMinutes",
	}
)

// rawSchedule mirrors the loose wire shape of generator output.
type rawSchedule struct {
	Events   []map[string]any `json:"events"`
	Metadata map[string]any   `json:"metadata"`
}

// DecodeSchedule parses schedule JSON and normalizes every event into the
// canonical Event shape. The document is either an object with an events
// field or a bare event array. Only malformed JSON is an error; a payload
// whose events field is missing, null, or not an array decodes to an empty
// schedule, which renders as the explicit empty state downstream.
func DecodeSchedule(data []byte) (*Schedule, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if strings.HasPrefix(trimmed, "[") {
		var events []map[string]any
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
		}
		return &Schedule{Events: NormalizeEvents(events)}, nil
	}

	var raw rawSchedule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	return &Schedule{
		Events:   NormalizeEvents(raw.Events),
		Metadata: raw.Metadata,
	}, nil
}

// NormalizeEvents resolves each raw event through the synonym tables into a
// canonical Event. Entries that are not objects are skipped; everything else
// is kept, with unresolvable fields left empty for layout to exclude.
func NormalizeEvents(raw []map[string]any) []Event {
	events := make([]Event, 0, len(raw))
	for index, fields := range raw {
		if fields == nil {
			continue
		}
		event := Event{
			Label: pickString(fields, labelKeys),
			Date:  pickString(fields, dateKeys),
			Agent: pickString(fields, agentKeys),
		}
		if event.Label == "" {
			event.Label = fmt.Sprintf("Event %d", index+1)
		}
		if activity, ok := fields["activity"].(string); ok {
			event.Activity = strings.TrimSpace(activity)
		}
		if meta, ok := fields["metadata"].(map[string]any); ok {
			event.Metadata = meta
		}

		event.Start = coerceClock(pick(fields, startKeys))
		event.End = coerceClock(pick(fields, endKeys))

		// A missing end can still be derived from start plus duration.
		if event.End == "" && event.Start != "" {
			if duration, ok := coerceDuration(pick(fields, durationKeys)); ok && duration > 0 {
				start, _ := ParseClockStrict(event.Start)
				event.End = FormatClock(start + int(math.Round(duration)))
			}
		}

		events = append(events, event)
	}
	return events
}

// pick returns the first non-nil value among the synonym keys.
func pick(fields map[string]any, keys []string) any {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func pickString(fields map[string]any, keys []string) string {
	switch value := pick(fields, keys).(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return trimFloat(value)
	default:
		return ""
	}
}

// coerceClock converts any accepted time representation to "HH:MM": clock
// strings (with optional seconds), ISO timestamps, and numeric minutes of
// day. Unrecognized values coerce to the empty string.
func coerceClock(value any) string {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return ""
		}
		if strings.Contains(trimmed, "T") {
			_, timePart, _ := strings.Cut(trimmed, "T")
			return coerceClock(timePart)
		}
		if minutes, ok := ParseClockStrict(trimmed); ok {
			return FormatClock(minutes)
		}
		var numeric float64
		if _, err := fmt.Sscanf(trimmed, "%g", &numeric); err == nil {
			return FormatClock(int(math.Round(numeric)))
		}
		return ""
	case float64:
		return FormatClock(int(math.Round(v)))
	case int:
		return FormatClock(v)
	default:
		return ""
	}
}

// coerceDuration converts numeric minutes or an "HH:MM" span to minutes.
func coerceDuration(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		if minutes, ok := ParseClockStrict(trimmed); ok {
			return float64(minutes), true
		}
		var numeric float64
		if _, err := fmt.Sscanf(trimmed, "%g", &numeric); err == nil {
			return numeric, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func trimFloat(value float64) string {
	if value == math.Trunc(value) {
		return fmt.Sprintf("%d", int64(value))
	}
	return fmt.Sprintf("%g", value)
}
