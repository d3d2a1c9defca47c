// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/urchin/internal/app"
	"github.com/okian/urchin/internal/domain/balance"
	"github.com/okian/urchin/internal/domain/timeline"
)

// Command mirrors the control request shape handled by the service.
type Command = service.Command

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Enqueue pushes a schedule update for async processing. Returns false
	// on backpressure.
	Enqueue(ctx context.Context, schedule *timeline.Schedule, source string) bool

	// Read operations expose the current frame and history.
	RenderSVG(ctx context.Context) []byte
	RenderPNG(ctx context.Context, scale float64) ([]byte, error)
	History(ctx context.Context) ([]balance.Entry, int)

	// Control applies one interaction command to the renderer.
	Control(ctx context.Context, cmd Command) bool

	// Live frame subscription for websocket clients.
	Subscribe() (int, <-chan []byte)
	Unsubscribe(id int)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	scheduleHandler  *ScheduleHandler
	renderHandler    *RenderHandler
	historyHandler   *HistoryHandler
	controlHandler   *ControlHandler
	liveHandler      *LiveHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		scheduleHandler:  NewScheduleHandler(deps),
		renderHandler:    NewRenderHandler(deps),
		historyHandler:   NewHistoryHandler(deps),
		controlHandler:   NewControlHandler(deps),
		liveHandler:      NewLiveHandler(deps),
		dashboardHandler: newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/schedule", MetricsMiddleware(s.scheduleHandler.HandlePostSchedule, "schedule"))
	mux.HandleFunc("/render.svg", MetricsMiddleware(s.renderHandler.HandleGetSVG, "render_svg"))
	mux.HandleFunc("/render.png", MetricsMiddleware(s.renderHandler.HandleGetPNG, "render_png"))
	mux.HandleFunc("/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/control", MetricsMiddleware(s.controlHandler.HandlePostControl, "control"))
	mux.HandleFunc("/live", s.liveHandler.HandleLive)
}

type ackResponse struct {
	Status string `json:"status"`
	Events int    `json:"events,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
