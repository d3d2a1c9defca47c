// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/urchin/internal/domain/balance"
)

// HistoryDependencies defines the interface for history queries.
type HistoryDependencies interface {
	History(ctx context.Context) ([]balance.Entry, int)
}

// HistoryHandler serves the rolling balance history.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// historyResponse mirrors the persisted snapshot shape.
type historyResponse struct {
	Entries   []balance.Entry `json:"entries"`
	TotalRuns int             `json:"totalRuns"`
}

// HandleGetHistory handles GET /history requests. Entries are returned
// oldest first.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entries, totalRuns := h.deps.History(r.Context())
	if entries == nil {
		entries = []balance.Entry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries, TotalRuns: totalRuns})
}
