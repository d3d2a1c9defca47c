package balance

// defaultCapacity bounds the rolling history.
const defaultCapacity = 50

// History is a fixed-capacity FIFO buffer of run snapshots. Entries are
// never mutated after append; the oldest entry is evicted once the buffer
// is full. Not safe for concurrent use; callers serialize access.
type History struct {
	capacity  int
	entries   []Entry
	totalRuns int
}

// NewHistory creates a rolling history with the default capacity of 50.
func NewHistory(opts ...HistoryOption) *History {
	h := &History{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Append adds a snapshot, evicting the oldest entry at capacity. The total
// run counter never decreases, even when entries are evicted.
func (h *History) Append(entry Entry) {
	if len(h.entries) >= h.capacity {
		h.entries = append(h.entries[1:len(h.entries):len(h.entries)], entry)
	} else {
		h.entries = append(h.entries, entry)
	}
	if entry.RunNumber > h.totalRuns {
		h.totalRuns = entry.RunNumber
	} else {
		h.totalRuns++
	}
}

// Replace swaps the whole buffer, keeping at most the last capacity entries
// of the input. Used when history is restored from storage.
func (h *History) Replace(entries []Entry, totalRuns int) {
	if len(entries) > h.capacity {
		entries = entries[len(entries)-h.capacity:]
	}
	h.entries = append([]Entry(nil), entries...)
	switch {
	case totalRuns > 0:
		h.totalRuns = totalRuns
	case len(h.entries) > 0:
		last := h.entries[len(h.entries)-1]
		if last.RunNumber > 0 {
			h.totalRuns = last.RunNumber
		} else {
			h.totalRuns = len(h.entries)
		}
	default:
		h.totalRuns = 0
	}
}

// SetTotalRuns raises the run counter to n. Lower values are ignored so the
// counter stays monotonic.
func (h *History) SetTotalRuns(n int) {
	if n > h.totalRuns {
		h.totalRuns = n
	}
}

// Entries returns a copy of the buffered snapshots, oldest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Len returns the number of buffered snapshots.
func (h *History) Len() int {
	return len(h.entries)
}

// TotalRuns returns the monotonic count of completed runs observed.
func (h *History) TotalRuns() int {
	return h.totalRuns
}

// Last returns the most recent snapshot, or nil when empty.
func (h *History) Last() *Entry {
	if len(h.entries) == 0 {
		return nil
	}
	entry := h.entries[len(h.entries)-1]
	return &entry
}

// Seen reports whether a snapshot with the given signature is already
// buffered. Empty signatures never match.
func (h *History) Seen(signature string) bool {
	if signature == "" {
		return false
	}
	for i := range h.entries {
		if h.entries[i].Signature == signature {
			return true
		}
	}
	return false
}
