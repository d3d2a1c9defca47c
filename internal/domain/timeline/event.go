// Package timeline contains the canonical schedule model and the
// normalization step that turns loosely shaped schedule JSON into it.
//
// Schedules come from an external generator and arrive with many field
// spellings for the same concept. Normalization resolves those through
// ordered synonym tables (see normalize.go) exactly once, so every layer
// above this package works with a single Event shape.
package timeline

// Event is one labeled time interval of a schedule day.
// Start and End are 24-hour "HH:MM" wall-clock strings; End earlier than
// Start means the interval wraps past midnight.
type Event struct {
	Date     string         `json:"date,omitempty"`
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Label    string         `json:"label"`
	Activity string         `json:"activity,omitempty"`
	Agent    string         `json:"agent,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Schedule is the root input to layout. It is treated as a value and never
// mutated by any consumer.
type Schedule struct {
	Events   []Event        `json:"events"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HasEvents reports whether the schedule carries at least one event.
func (s *Schedule) HasEvents() bool {
	return s != nil && len(s.Events) > 0
}

// DisplayLabel resolves the label to render for an event, preferring the
// explicit label over the activity name.
func (e *Event) DisplayLabel() string {
	if e.Label != "" {
		return e.Label
	}
	if e.Activity != "" {
		return e.Activity
	}
	return "Activity"
}

// MetadataAgent returns the agent recorded in event metadata, if any.
func (e *Event) MetadataAgent() string {
	if e.Metadata == nil {
		return ""
	}
	if agent, ok := e.Metadata["agent"].(string); ok {
		return agent
	}
	return ""
}

// ResolveAgent returns the effective agent identity for an event, checking
// the explicit field first and metadata second.
func (e *Event) ResolveAgent() string {
	if e.Agent != "" {
		return e.Agent
	}
	return e.MetadataAgent()
}
