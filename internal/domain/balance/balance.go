// Package balance reduces schedules into activity-share breakdowns and
// keeps a bounded rolling history of per-run snapshots for comparison.
package balance

import (
	"github.com/google/uuid"
	"github.com/okian/urchin/internal/domain/layout"
	"github.com/okian/urchin/internal/domain/palette"
	"github.com/okian/urchin/internal/domain/timeline"
)

// Activity is one label's aggregate minutes.
type Activity struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Minutes float64 `json:"minutes"`
	Color   string  `json:"color"`
}

// Segment is one activity's share of the total.
type Segment struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Minutes    float64 `json:"minutes"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
}

// Breakdown is the share decomposition of a set of activities. A zero
// TotalMinutes with no segments is the canonical "no data" value, not an
// error.
type Breakdown struct {
	TotalMinutes float64   `json:"totalMinutes"`
	Segments     []Segment `json:"segments"`
}

// PrepareShareSegments drops activities without positive minutes and
// expresses the rest as fractions of the remaining total.
func PrepareShareSegments(activities []Activity) Breakdown {
	var filtered []Activity
	var total float64
	for _, activity := range activities {
		if activity.Minutes > 0 {
			filtered = append(filtered, activity)
			total += activity.Minutes
		}
	}
	if total <= 0 {
		return Breakdown{}
	}
	segments := make([]Segment, len(filtered))
	for i, activity := range filtered {
		id := activity.ID
		if id == "" {
			id = activity.Label
		}
		segments[i] = Segment{
			ID:         id,
			Label:      activity.Label,
			Minutes:    activity.Minutes,
			Color:      activity.Color,
			Percentage: activity.Minutes / total,
		}
	}
	return Breakdown{TotalMinutes: total, Segments: segments}
}

// Entry is an immutable per-run snapshot of activity-time shares.
type Entry struct {
	ID           string     `json:"id"`
	RunNumber    int        `json:"runNumber"`
	Label        string     `json:"label"`
	Timestamp    string     `json:"timestamp,omitempty"`
	Signature    string     `json:"signature,omitempty"`
	TotalMinutes float64    `json:"totalMinutes"`
	Segments     []Segment  `json:"segments"`
	Activities   []Activity `json:"activities"`
}

// NewHistoryEntry builds a snapshot from a schedule's full per-label totals,
// independent of any zoom or visibility filter. Returns nil when the
// schedule has no events or no activity with positive minutes; callers must
// not append a nil entry.
func NewHistoryEntry(schedule *timeline.Schedule, opts ...EntryOption) *Entry {
	if !schedule.HasEvents() {
		return nil
	}
	cfg := newEntryConfig(opts...)

	totals := layout.Compute(schedule).Totals
	if len(totals) == 0 {
		return nil
	}
	activities := make([]Activity, len(totals))
	for i, total := range totals {
		activities[i] = Activity{
			ID:      total.Label,
			Label:   total.Label,
			Minutes: float64(total.Minutes),
			Color:   palette.MapLabelToColor(total.Label, cfg.highContrast),
		}
	}
	breakdown := PrepareShareSegments(activities)
	if len(breakdown.Segments) == 0 {
		return nil
	}

	entry := &Entry{
		ID:           cfg.id,
		RunNumber:    cfg.runNumber,
		Label:        cfg.label,
		Timestamp:    timeline.GeneratedAt(schedule),
		Signature:    cfg.signature,
		TotalMinutes: breakdown.TotalMinutes,
		Segments:     breakdown.Segments,
		Activities:   activities,
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return entry
}
