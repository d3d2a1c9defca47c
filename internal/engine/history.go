package engine

import (
	"github.com/okian/urchin/internal/domain/balance"
	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/pkg/metrics"
)

// SetBalanceHistory replaces the rolling history, keeping only the newest
// entries up to capacity. A zero totalRuns derives the counter from the
// latest entry's run number, falling back to the entry count.
func (e *Engine) SetBalanceHistory(entries []balance.Entry, totalRuns int) {
	if e.destroyed {
		return
	}
	e.history.Replace(entries, totalRuns)
	if e.history.Len() == 0 && e.historyOpen {
		e.historyOpen = false
	}
	metrics.UpdateHistorySize(e.history.Len())
	e.renderFrame()
}

// AppendBalanceHistoryEntry appends one entry, evicting the oldest when the
// history is full.
func (e *Engine) AppendBalanceHistoryEntry(entry *balance.Entry) {
	if e.destroyed || entry == nil {
		return
	}
	e.history.Append(*entry)
	metrics.UpdateHistorySize(e.history.Len())
	e.renderFrame()
}

// CaptureBalanceSnapshot derives a history entry from a schedule and
// appends it, unless the schedule produced an identical signature last
// time or yields no positive activity totals. It reports whether an entry
// was recorded.
func (e *Engine) CaptureBalanceSnapshot(schedule *timeline.Schedule) bool {
	if e.destroyed {
		return false
	}
	signature := timeline.Signature(schedule)
	if signature != "" && e.history.Seen(signature) {
		metrics.RecordHistorySkipped()
		return false
	}
	entry := balance.NewHistoryEntry(schedule,
		balance.WithRunNumber(e.history.TotalRuns()+1),
		balance.WithSignature(signature),
		balance.WithHighContrast(e.highContrast),
	)
	if entry == nil {
		metrics.RecordHistorySkipped()
		return false
	}
	e.AppendBalanceHistoryEntry(entry)
	metrics.RecordHistoryCapture()
	metrics.UpdateHistoryTotalRuns(e.history.TotalRuns())
	return true
}

// ToggleBalanceHistory flips the history panel. Opening is refused while
// the history is empty. Reports the resulting open state.
func (e *Engine) ToggleBalanceHistory() bool {
	return e.SetBalanceHistoryOpen(!e.historyOpen)
}

// SetBalanceHistoryOpen forces the panel open or closed, subject to the
// same empty-history guard as toggling.
func (e *Engine) SetBalanceHistoryOpen(open bool) bool {
	if e.destroyed {
		return e.historyOpen
	}
	if open && e.history.Len() == 0 {
		return e.historyOpen
	}
	if e.historyOpen != open {
		e.historyOpen = open
		if e.announce != nil {
			if open {
				e.announce("Balance history opened")
			} else {
				e.announce("Balance history closed")
			}
		}
		e.renderFrame()
	}
	return e.historyOpen
}

// HistoryOpen reports whether the balance history panel is open.
func (e *Engine) HistoryOpen() bool {
	return e.historyOpen
}

// HistoryEntries returns a copy of the rolling history, oldest first.
func (e *Engine) HistoryEntries() []balance.Entry {
	return e.history.Entries()
}

// TotalRuns returns the monotonic run counter, which keeps counting past
// evicted entries.
func (e *Engine) TotalRuns() int {
	return e.history.TotalRuns()
}
