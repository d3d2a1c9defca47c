// Package layout turns a schedule into renderable radial geometry.
//
// The layout is a pure function of its input: rings are grouped by day or
// agent, stacked outward from a base radius, and every event becomes an arc
// with angles mapped so the start of the day sits at the top and time runs
// clockwise. No I/O, no mutable state.
package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/urchin/internal/domain/palette"
	"github.com/okian/urchin/internal/domain/timeline"
)

const tau = 2 * math.Pi

// Mode selects the ring grouping key.
type Mode string

// Supported grouping modes.
const (
	ModeDayRings   Mode = "day-rings"
	ModeAgentRings Mode = "agent-rings"
)

// unknownRing is the fallback day key for events without a date.
const unknownRing = "Unknown"

// Arc is one renderable segment of a ring.
type Arc struct {
	ID           string
	Label        string
	RingKey      string
	RingIndex    int
	StartMinutes int
	Duration     int
	InnerRadius  float64
	OuterRadius  float64
	StartAngle   float64
	EndAngle     float64
	CenterAngle  float64
	Color        string
	Event        *timeline.Event
}

// Ring is a radial band grouping arcs that share a key.
type Ring struct {
	Key         string
	Label       string
	Index       int
	InnerRadius float64
	OuterRadius float64
	Arcs        []*Arc
}

// LabelTotal is the aggregate minutes for one activity label.
type LabelTotal struct {
	Label   string
	Minutes int
}

// Layout is the full derived geometry for one schedule.
type Layout struct {
	Arcs      []*Arc
	Rings     []Ring
	Totals    []LabelTotal
	MaxRadius float64
	Mode      Mode
}

// MinutesToAngle maps minutes of day onto the full circle, start of day at
// the top, clockwise.
func MinutesToAngle(minutes float64) float64 {
	return (minutes/timeline.FullDayMinutes)*tau - math.Pi/2
}

// Compute derives the layout for a schedule. It never fails: malformed
// events are excluded or defaulted, and an empty schedule yields an empty
// (but valid) layout.
func Compute(schedule *timeline.Schedule, opts ...Option) *Layout {
	cfg := newConfig(opts...)

	var events []*timeline.Event
	if schedule != nil {
		for i := range schedule.Events {
			event := &schedule.Events[i]
			// Only events that resolved both clock fields take part.
			if event.Start != "" && event.End != "" {
				events = append(events, event)
			}
		}
	}

	result := &Layout{
		Mode:      cfg.mode,
		Totals:    computeTotals(events),
		MaxRadius: cfg.baseRadius + cfg.ringWidth,
	}

	groups := groupEvents(events, cfg.mode)
	for ringIndex, group := range groups {
		inner := cfg.baseRadius + float64(ringIndex)*(cfg.ringWidth+cfg.ringGap)
		outer := inner + cfg.ringWidth
		ring := Ring{
			Key:         group.key,
			Label:       group.label,
			Index:       ringIndex,
			InnerRadius: inner,
			OuterRadius: outer,
		}

		sort.SliceStable(group.events, func(a, b int) bool {
			return timeline.ParseClock(group.events[a].event.Start) < timeline.ParseClock(group.events[b].event.Start)
		})

		for _, indexed := range group.events {
			arc := buildArc(indexed, group.key, ringIndex, inner, outer, cfg)
			if arc == nil {
				continue
			}
			ring.Arcs = append(ring.Arcs, arc)
			result.Arcs = append(result.Arcs, arc)
		}
		result.Rings = append(result.Rings, ring)
	}

	if len(result.Rings) > 0 {
		result.MaxRadius = result.Rings[len(result.Rings)-1].OuterRadius + cfg.ringGap
	}
	return result
}

// buildArc converts one event into an arc, or nil when the event has no
// positive duration or its label is excluded.
func buildArc(indexed indexedEvent, ringKey string, ringIndex int, inner, outer float64, cfg *config) *Arc {
	event := indexed.event
	start := timeline.ParseClock(event.Start)
	end := timeline.ParseClock(event.End)
	duration := timeline.WrapDuration(start, end)
	if duration <= 0 {
		return nil
	}
	label := event.DisplayLabel()
	if cfg.include != nil && !cfg.include(label) {
		return nil
	}

	startAngle := MinutesToAngle(float64(start))
	endAngle := MinutesToAngle(float64((start + duration) % timeline.FullDayMinutes))
	// An interval that crosses midnight must sweep continuously instead of
	// jumping back to the top of the circle.
	if start+duration >= timeline.FullDayMinutes {
		endAngle = startAngle + float64(duration)/timeline.FullDayMinutes*tau
	}

	return &Arc{
		ID:           fmt.Sprintf("%s:%d", ringKey, indexed.index),
		Label:        label,
		RingKey:      ringKey,
		RingIndex:    ringIndex,
		StartMinutes: start,
		Duration:     duration,
		InnerRadius:  inner,
		OuterRadius:  outer,
		StartAngle:   startAngle,
		EndAngle:     endAngle,
		CenterAngle:  startAngle + (endAngle-startAngle)/2,
		Color:        palette.MapLabelToColor(label, cfg.highContrast),
		Event:        event,
	}
}

// computeTotals aggregates minutes per label across all valid events,
// independent of grouping and of the hidden-label filter. Ties keep their
// first-seen order.
func computeTotals(events []*timeline.Event) []LabelTotal {
	totals := make(map[string]int)
	var order []string
	for _, event := range events {
		label := event.DisplayLabel()
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		start := timeline.ParseClock(event.Start)
		end := timeline.ParseClock(event.End)
		totals[label] += timeline.WrapDuration(start, end)
	}

	result := make([]LabelTotal, 0, len(order))
	for _, label := range order {
		result = append(result, LabelTotal{Label: label, Minutes: totals[label]})
	}
	sort.SliceStable(result, func(a, b int) bool {
		return result[a].Minutes > result[b].Minutes
	})
	return result
}

type indexedEvent struct {
	event *timeline.Event
	index int
}

type eventGroup struct {
	key     string
	label   string
	sortKey string
	events  []indexedEvent
}

// groupEvents buckets events by ring key and orders rings by sort key.
func groupEvents(events []*timeline.Event, mode Mode) []*eventGroup {
	byKey := make(map[string]*eventGroup)
	var groups []*eventGroup
	for index, event := range events {
		key, label, sortKey := ringKeyFor(event, mode)
		group, ok := byKey[key]
		if !ok {
			group = &eventGroup{key: key, label: label, sortKey: sortKey}
			byKey[key] = group
			groups = append(groups, group)
		}
		group.events = append(group.events, indexedEvent{event: event, index: index})
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].sortKey < groups[b].sortKey
	})
	return groups
}

// ringKeyFor resolves the grouping key for an event. Agent mode prefers the
// explicit agent, then metadata, then the activity name, and finally falls
// back to the day key.
func ringKeyFor(event *timeline.Event, mode Mode) (key, label, sortKey string) {
	if mode == ModeAgentRings {
		if agent := event.Agent; agent != "" {
			return agent, agent, strings.ToLower(agent)
		}
		if agent := event.MetadataAgent(); agent != "" {
			return agent, agent, strings.ToLower(agent)
		}
		if event.Activity != "" {
			return event.Activity, event.Activity, strings.ToLower(event.Activity)
		}
	}
	day := event.Date
	if day == "" {
		day = unknownRing
	}
	return day, day, day
}
