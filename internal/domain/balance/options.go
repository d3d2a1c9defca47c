package balance

import "fmt"

// defaultRunNumber is used when the caller supplies none.
const defaultRunNumber = 1

type entryConfig struct {
	id           string
	runNumber    int
	label        string
	signature    string
	highContrast bool
}

// EntryOption applies a configuration option to a history entry.
type EntryOption func(*entryConfig)

func newEntryConfig(opts ...EntryOption) *entryConfig {
	cfg := &entryConfig{runNumber: defaultRunNumber}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.label == "" {
		cfg.label = fmt.Sprintf("Run #%d", cfg.runNumber)
	}
	return cfg
}

// WithRunNumber sets the run counter for the entry. The counter is owned by
// the caller; this package never derives it.
func WithRunNumber(run int) EntryOption {
	return func(c *entryConfig) {
		if run > 0 {
			c.runNumber = run
		}
	}
}

// WithEntryID sets an explicit entry id instead of a generated one.
func WithEntryID(id string) EntryOption {
	return func(c *entryConfig) {
		c.id = id
	}
}

// WithEntryLabel sets a display label for the entry.
func WithEntryLabel(label string) EntryOption {
	return func(c *entryConfig) {
		c.label = label
	}
}

// WithSignature attaches the schedule signature used for snapshot
// de-duplication.
func WithSignature(signature string) EntryOption {
	return func(c *entryConfig) {
		c.signature = signature
	}
}

// WithHighContrast selects the high-contrast palette for activity colors.
func WithHighContrast(enabled bool) EntryOption {
	return func(c *entryConfig) {
		c.highContrast = enabled
	}
}

// HistoryOption applies a configuration option to a History.
type HistoryOption func(*History)

// WithCapacity bounds the number of retained entries.
func WithCapacity(capacity int) HistoryOption {
	return func(h *History) {
		if capacity > 0 {
			h.capacity = capacity
		}
	}
}
