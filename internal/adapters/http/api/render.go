// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// RenderDependencies defines the interface for frame export.
type RenderDependencies interface {
	RenderSVG(ctx context.Context) []byte
	RenderPNG(ctx context.Context, scale float64) ([]byte, error)
}

// RenderHandler serves the current frame as SVG or PNG.
type RenderHandler struct {
	deps RenderDependencies
}

// NewRenderHandler creates a new render handler.
func NewRenderHandler(deps RenderDependencies) *RenderHandler {
	return &RenderHandler{deps: deps}
}

// HandleGetSVG handles GET /render.svg requests.
func (h *RenderHandler) HandleGetSVG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	_, _ = w.Write(h.deps.RenderSVG(r.Context()))
}

// HandleGetPNG handles GET /render.png requests. The optional scale query
// parameter multiplies the surface size; zero or absent uses the server
// default.
func (h *RenderHandler) HandleGetPNG(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_png"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	var scale float64
	if raw := r.URL.Query().Get("scale"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%s: %w: invalid scale %q", op, ErrBadRequest, raw))
			return
		}
		scale = parsed
	}

	data, err := h.deps.RenderPNG(r.Context(), scale)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed",
			fmt.Errorf("%s: %w: %w", op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}
