package timeline

import "strings"

// GeneratedAt extracts the generation timestamp carried by a schedule, first
// from the top-level metadata, then from the common fallback keys. Returns
// the empty string when the schedule carries none.
func GeneratedAt(s *Schedule) string {
	if s == nil || s.Metadata == nil {
		return ""
	}
	for _, key := range []string{"generatedAt", "generated_at", "timestamp"} {
		if value, ok := s.Metadata[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

// Signature derives a stable identity for a schedule, used to avoid
// recording duplicate balance snapshots when the same run is reloaded.
// A generation timestamp wins; otherwise the signature is built from the
// event contents. Empty schedules have no signature.
func Signature(s *Schedule) string {
	if s == nil {
		return ""
	}
	if ts := GeneratedAt(s); ts != "" {
		return "timestamp:" + ts
	}
	if len(s.Events) == 0 {
		return ""
	}
	parts := make([]string, len(s.Events))
	for i := range s.Events {
		event := &s.Events[i]
		parts[i] = strings.Join([]string{
			event.DisplayLabel(), event.Start, event.End, event.ResolveAgent(),
		}, "|")
	}
	return "events:" + strings.Join(parts, ";")
}
