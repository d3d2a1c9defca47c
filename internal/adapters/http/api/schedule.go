// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/urchin/internal/domain/timeline"
)

// maxScheduleBody bounds the accepted schedule payload size.
const maxScheduleBody = 4 << 20

// ScheduleDependencies defines the interface for schedule ingestion.
type ScheduleDependencies interface {
	Enqueue(ctx context.Context, schedule *timeline.Schedule, source string) bool
}

// ScheduleHandler handles schedule replacement requests.
type ScheduleHandler struct {
	deps ScheduleDependencies
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(deps ScheduleDependencies) *ScheduleHandler {
	return &ScheduleHandler{deps: deps}
}

// HandlePostSchedule handles POST /schedule requests. The body is a raw
// schedule document; field aliases and malformed clock strings are
// normalized rather than rejected, and an empty event list is a valid
// schedule that clears the diagram.
func (h *ScheduleHandler) HandlePostSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_schedule"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxScheduleBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: empty body", op, ErrBadRequest))
		return
	}

	schedule, err := timeline.DecodeSchedule(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	if ok := h.deps.Enqueue(r.Context(), schedule, "http"); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Events: len(schedule.Events)})
}
