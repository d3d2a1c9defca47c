// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ControlDependencies defines the interface for interaction commands.
type ControlDependencies interface {
	Control(ctx context.Context, cmd Command) bool
}

// ControlHandler applies interaction commands to the renderer.
type ControlHandler struct {
	deps ControlDependencies
}

// NewControlHandler creates a new control handler.
func NewControlHandler(deps ControlDependencies) *ControlHandler {
	return &ControlHandler{deps: deps}
}

// HandlePostControl handles POST /control requests.
func (h *ControlHandler) HandlePostControl(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_control"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if !h.deps.Control(r.Context(), cmd) {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%s: %w: unknown or invalid action %q", op, ErrBadRequest, cmd.Action))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "applied"})
}

// decodeCommand parses one command payload, shared with the websocket path.
func decodeCommand(payload []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return cmd, nil
}
