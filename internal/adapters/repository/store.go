// Package repository persists the balance history across restarts.
package repository

import (
	"context"

	"github.com/okian/urchin/internal/domain/balance"
)

// Snapshot is the persisted form of the rolling history.
type Snapshot struct {
	// Entries are the retained history entries, oldest first.
	Entries []balance.Entry `json:"entries"`
	// TotalRuns is the monotonic run counter, which keeps counting past
	// evicted entries.
	TotalRuns int `json:"totalRuns"`
	// SavedAt is the RFC3339 timestamp of the last save.
	SavedAt string `json:"savedAt,omitempty"`
}

// Store provides read/write access to the persisted history.
type Store interface {
	// Load reads the persisted snapshot. A missing backing file is not an
	// error; it yields an empty snapshot.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snapshot Snapshot) error
}
