package engine

import (
	"time"

	"github.com/okian/urchin/internal/domain/balance"
	"github.com/okian/urchin/internal/domain/layout"
	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/internal/render"
	"github.com/okian/urchin/pkg/logger"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithSurface attaches the drawing surface frames are pushed to. Without a
// surface the engine still computes frames for Frame() callers.
func WithSurface(surface render.Surface) Option {
	return func(e *Engine) {
		e.surface = surface
	}
}

// WithSelectHandler registers the callback invoked when an arc is selected.
func WithSelectHandler(fn func(event *timeline.Event)) Option {
	return func(e *Engine) {
		e.onSelect = fn
	}
}

// WithAnnouncer registers the sink for screen-reader announcements.
func WithAnnouncer(fn func(message string)) Option {
	return func(e *Engine) {
		e.announce = fn
	}
}

// WithClock substitutes the time source, for deterministic tests.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger overrides the engine's logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithHoverDelay overrides the hover debounce interval.
func WithHoverDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.hoverDelay = d
		}
	}
}

// WithFrameInterval overrides the playback frame interval.
func WithFrameInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.frameInterval = d
		}
	}
}

// WithMode sets the initial ring grouping mode.
func WithMode(mode layout.Mode) Option {
	return func(e *Engine) {
		if mode != "" {
			e.mode = mode
		}
	}
}

// WithHighContrast sets the initial palette choice.
func WithHighContrast(enabled bool) Option {
	return func(e *Engine) {
		e.highContrast = enabled
	}
}

// WithHistory substitutes the balance history, typically one restored from
// a persistence adapter.
func WithHistory(history *balance.History) Option {
	return func(e *Engine) {
		if history != nil {
			e.history = history
		}
	}
}

// WithSize sets the initial surface dimensions.
func WithSize(width, height float64) Option {
	return func(e *Engine) {
		e.width = width
		e.height = height
	}
}
