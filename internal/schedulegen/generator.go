// Package schedulegen produces synthetic weekly schedules for exercising a
// running timeline service.
package schedulegen

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/urchin/internal/domain/timeline"
)

// Jitter bounds in minutes.
const (
	startJitter    = 45
	durationJitter = 30
	minDuration    = 20
)

// activityTemplate is one archetype the generator draws from. Start and
// duration are nominal; each generated event is jittered around them.
type activityTemplate struct {
	label    string
	start    int
	duration int
}

// templates covers a plausible day, including a block that wraps midnight.
var templates = []activityTemplate{
	{label: "Sleep", start: 23 * 60, duration: 8 * 60},
	{label: "Morning Routine", start: 7 * 60, duration: 60},
	{label: "Deep Work", start: 9 * 60, duration: 3 * 60},
	{label: "Lunch", start: 12*60 + 30, duration: 45},
	{label: "Meetings", start: 14 * 60, duration: 90},
	{label: "Exercise", start: 17 * 60, duration: 60},
	{label: "Dinner", start: 18*60 + 30, duration: 60},
	{label: "Leisure", start: 20 * 60, duration: 2 * 60},
	{label: "Errands", start: 16 * 60, duration: 45},
	{label: "Reading", start: 22 * 60, duration: 45},
}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var agentNames = []string{"atlas", "nova", "orbit", "lumen", "vega", "quill"}

// Generate builds one synthetic schedule. The same seed yields the same
// schedule.
func Generate(cfg *Config) *timeline.Schedule {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	agents := cfg.AgentCount
	if agents < 1 {
		agents = 1
	}
	if agents > len(agentNames) {
		agents = len(agentNames)
	}

	count := cfg.EventCount
	if count < 1 {
		count = defaultEventCount
	}

	events := make([]timeline.Event, 0, count)
	for i := 0; i < count; i++ {
		tpl := templates[rng.Intn(len(templates))]

		start := tpl.start + rng.Intn(2*startJitter+1) - startJitter
		duration := tpl.duration + rng.Intn(2*durationJitter+1) - durationJitter
		if duration < minDuration {
			duration = minDuration
		}
		start = int(timeline.WrapMinutes(float64(start)))
		end := int(timeline.WrapMinutes(float64(start + duration)))

		events = append(events, timeline.Event{
			Label: tpl.label,
			Date:  dayNames[rng.Intn(len(dayNames))],
			Agent: agentNames[rng.Intn(agents)],
			Start: timeline.FormatClock(start),
			End:   timeline.FormatClock(end),
		})
	}

	return &timeline.Schedule{
		Events: events,
		Metadata: map[string]any{
			"runId":       uuid.NewString(),
			"generatedAt": time.Now().UTC().Format(time.RFC3339),
			"generator":   "schedulegen",
		},
	}
}
