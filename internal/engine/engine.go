// Package engine implements the interactive radial renderer.
//
// The engine owns a layout plus the zoom window, playback, hover and
// selection state, and drives an attached drawing surface. All work is
// event-driven: every public call recomputes derived state fully from the
// current inputs and finishes a synchronous render before returning, so a
// surface never observes a layout paired with stale interaction state.
//
// Public methods are safe to call from timer callbacks because the engine
// serializes them internally; they must not be re-entered from the select
// handler while a mutating call is in progress.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/okian/urchin/internal/domain/balance"
	"github.com/okian/urchin/internal/domain/layout"
	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/internal/render"
	"github.com/okian/urchin/pkg/logger"
	"github.com/okian/urchin/pkg/metrics"
)

// Interaction tuning constants.
const (
	defaultHoverDelay    = 180 * time.Millisecond
	defaultFrameInterval = 16 * time.Millisecond
	defaultHitTolerance  = 12.0
	defaultScrubMinutes  = 8 * 60
	surfacePadding       = 32.0
	wheelZoomFactor      = 0.0015
	minZoomSpan          = 120.0
	dimmedArcAlpha       = 0.25
)

// noDataMessage is the legend text rendered in the empty/placeholder state.
const noDataMessage = "No activities available. Run generator to populate schedule."

// Engine is the stateful interactive renderer.
type Engine struct {
	// Inputs
	schedule      *timeline.Schedule
	mode          layout.Mode
	selectedAgent string
	hiddenLabels  map[string]struct{}
	highContrast  bool

	// Derived state, rebuilt wholesale on every change
	layout       *layout.Layout
	displayArcs  []*DisplayArc
	visibleArcs  []*DisplayArc
	displayMax   float64
	share        balance.Breakdown
	hasData      bool
	warnedNoData bool

	// Interaction state
	hoverArc    *DisplayArc
	selectedArc *DisplayArc
	tooltip     *render.Tooltip

	// Zoom window in minutes
	zoomStart float64
	zoomSpan  float64

	// Playback
	scrubMinutes float64
	playing      bool
	speed        float64
	lastTick     time.Time
	frameCancel  func()

	// Surface geometry
	width, height  float64
	warnedNoCenter bool

	// Balance history panel
	history     *balance.History
	historyOpen bool

	// Pending hover debounce
	hoverCancel func()

	// Collaborators
	surface       render.Surface
	onSelect      func(event *timeline.Event)
	announce      func(message string)
	clock         Clock
	hoverDelay    time.Duration
	frameInterval time.Duration
	log           logger.Logger

	destroyed bool
}

// New constructs an engine with default state: full-day zoom, playback
// stopped at 08:00, nothing hidden or selected.
func New(opts ...Option) *Engine {
	e := &Engine{
		mode:          layout.ModeDayRings,
		hiddenLabels:  make(map[string]struct{}),
		zoomSpan:      timeline.FullDayMinutes,
		scrubMinutes:  defaultScrubMinutes,
		speed:         1,
		history:       balance.NewHistory(),
		clock:         systemClock{},
		hoverDelay:    defaultHoverDelay,
		frameInterval: defaultFrameInterval,
		log:           logger.Get().Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Update replaces the schedule and recomputes the layout. A schedule
// without events puts the engine into the explicit "no renderable data"
// state, which renders as a placeholder and closes the history panel.
func (e *Engine) Update(schedule *timeline.Schedule, mode layout.Mode, selectedAgent string) {
	if e.destroyed {
		return
	}
	e.schedule = schedule
	if mode != "" {
		e.mode = mode
	}
	e.selectedAgent = selectedAgent

	if !schedule.HasEvents() {
		e.layout = nil
		e.hasData = false
		if e.historyOpen {
			e.historyOpen = false
		}
		e.rebuildDisplayArcs()
		e.renderFrame()
		return
	}

	e.recomputeLayout()
	e.rebuildDisplayArcs()
	e.renderFrame()
}

// recomputeLayout runs the pure layout function under a panic guard: a
// layout failure degrades to the no-data state instead of crashing the
// host.
func (e *Engine) recomputeLayout() {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(e.ctx(), "layout computation failed", logger.Any("panic", r))
			e.layout = nil
			e.hasData = false
		}
	}()

	started := e.clock.Now()
	e.layout = layout.Compute(e.schedule,
		layout.WithMode(e.mode),
		layout.WithHighContrast(e.highContrast),
		layout.WithIncludeLabel(func(label string) bool {
			_, hidden := e.hiddenLabels[label]
			return !hidden
		}),
	)
	e.hasData = true
	e.warnedNoData = false
	metrics.RecordLayoutRecompute(float64(e.clock.Now().Sub(started).Milliseconds()))

	// Hover and selection survive a relayout only if their arc still
	// exists; otherwise they are cleared rather than left dangling.
	e.selectedArc = e.reresolveArc(e.selectedArc)
	e.hoverArc = e.reresolveArc(e.hoverArc)
	if e.hoverArc == nil {
		e.tooltip = nil
	}
}

// SetMode switches the ring grouping and relayouts.
func (e *Engine) SetMode(mode layout.Mode) {
	if e.destroyed || mode == e.mode {
		return
	}
	e.mode = mode
	if e.schedule.HasEvents() {
		e.recomputeLayout()
	}
	e.rebuildDisplayArcs()
	e.renderFrame()
}

// Mode returns the current grouping mode.
func (e *Engine) Mode() layout.Mode {
	return e.mode
}

// SetSelectedAgent highlights one agent's arcs and dims the rest. An empty
// agent clears the highlight. Matching is case-insensitive.
func (e *Engine) SetSelectedAgent(agent string) {
	if e.destroyed || agent == e.selectedAgent {
		return
	}
	e.selectedAgent = agent
	e.rebuildDisplayArcs()
	e.renderFrame()
}

// SelectedAgent returns the current agent highlight, empty when none.
func (e *Engine) SelectedAgent() string {
	return e.selectedAgent
}

// SetHighContrast switches palettes and recomputes colors.
func (e *Engine) SetHighContrast(enabled bool) {
	if e.destroyed || enabled == e.highContrast {
		return
	}
	e.highContrast = enabled
	if e.schedule.HasEvents() {
		e.recomputeLayout()
	}
	e.rebuildDisplayArcs()
	e.renderFrame()
}

// SetLabelHidden toggles one label in the visibility filter.
func (e *Engine) SetLabelHidden(label string, hidden bool) {
	if e.destroyed {
		return
	}
	if hidden {
		e.hiddenLabels[label] = struct{}{}
	} else {
		delete(e.hiddenLabels, label)
	}
	if e.schedule.HasEvents() {
		e.recomputeLayout()
	}
	e.rebuildDisplayArcs()
	e.renderFrame()
}

// Resize updates the drawing surface dimensions. Degenerate sizes suppress
// rendering with a single warning instead of failing on every frame.
func (e *Engine) Resize(width, height float64) {
	if e.destroyed {
		return
	}
	e.width = width
	e.height = height
	if e.hasValidCenter() {
		e.warnedNoCenter = false
	}
	e.rebuildDisplayArcs()
	e.renderFrame()
}

// Layout exposes the current layout; nil while in the no-data state.
func (e *Engine) Layout() *layout.Layout {
	return e.layout
}

// HasRenderableData reports whether the engine holds a usable layout, as
// opposed to the explicit "no schedule at all" state.
func (e *Engine) HasRenderableData() bool {
	return e.hasData
}

// Share returns the balance breakdown of the currently visible arcs.
func (e *Engine) Share() balance.Breakdown {
	return e.share
}

// Destroy cancels all outstanding timers and detaches the surface. The
// engine mutates no state after this call.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.StopPlayback()
	if e.hoverCancel != nil {
		e.hoverCancel()
		e.hoverCancel = nil
	}
	e.surface = nil
	e.destroyed = true
}

// reresolveArc re-resolves a display arc by id after a rebuild, or nil when
// the arc no longer exists.
func (e *Engine) reresolveArc(arc *DisplayArc) *DisplayArc {
	if arc == nil {
		return nil
	}
	for _, candidate := range e.displayArcs {
		if candidate.ID == arc.ID {
			return candidate
		}
	}
	return nil
}

func (e *Engine) hasValidCenter() bool {
	return e.width > 0 && e.height > 0 &&
		!isNonFinite(e.width/2) && !isNonFinite(e.height/2)
}

// ctx provides the context for engine-internal log calls. The engine is
// event-driven and has no per-request context to thread through.
func (e *Engine) ctx() context.Context {
	return context.Background()
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func logFloat(key string, value float64) logger.Field {
	return logger.Float64(key, value)
}
