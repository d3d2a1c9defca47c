package engine

import (
	"math"
	"time"

	"github.com/okian/urchin/internal/domain/timeline"
)

// Playback speed multipliers offered to callers.
var PlaybackSpeeds = []float64{0.5, 1, 2}

// Clock abstracts wall time and timer scheduling so playback and hover
// debouncing are deterministic under test.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// AfterFunc schedules fn after d and returns a cancel function. Cancel
	// is idempotent; fn never runs after cancel returns.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, fn func()) func() {
	timer := time.AfterFunc(d, fn)
	return func() { timer.Stop() }
}

// StartPlayback begins advancing the scrub line on the frame timer. Already
// playing is a no-op.
func (e *Engine) StartPlayback() {
	if e.destroyed || e.playing {
		return
	}
	e.playing = true
	e.lastTick = e.clock.Now()
	e.scheduleTick()
}

// StopPlayback halts the scrub line where it stands.
func (e *Engine) StopPlayback() {
	if !e.playing {
		return
	}
	e.playing = false
	if e.frameCancel != nil {
		e.frameCancel()
		e.frameCancel = nil
	}
}

// TogglePlayback flips between playing and stopped and reports the new
// playing state.
func (e *Engine) TogglePlayback() bool {
	if e.playing {
		e.StopPlayback()
	} else {
		e.StartPlayback()
	}
	return e.playing
}

// Playing reports whether playback is advancing.
func (e *Engine) Playing() bool {
	return e.playing
}

// SetSpeed sets the playback multiplier. Values outside the supported set
// snap to the nearest supported speed.
func (e *Engine) SetSpeed(speed float64) {
	if e.destroyed {
		return
	}
	best := PlaybackSpeeds[0]
	for _, candidate := range PlaybackSpeeds {
		if math.Abs(candidate-speed) < math.Abs(best-speed) {
			best = candidate
		}
	}
	e.speed = best
}

// Speed returns the current playback multiplier.
func (e *Engine) Speed() float64 {
	return e.speed
}

// SetScrub moves the scrub line to an absolute minute of day and, when the
// line lands on an arc, surfaces that arc's tooltip.
func (e *Engine) SetScrub(minutes float64) {
	e.setScrub(minutes, false)
}

// ScrubMinutes returns the current scrub position in minutes of day.
func (e *Engine) ScrubMinutes() float64 {
	return e.scrubMinutes
}

func (e *Engine) setScrub(minutes float64, fromPlayback bool) {
	if e.destroyed {
		return
	}
	e.scrubMinutes = timeline.WrapMinutes(minutes)
	// The tooltip tracks the line only while playing; in a gap the last
	// tooltip lingers until the line reaches the next arc.
	if fromPlayback {
		if arc := e.arcAtMinutes(e.scrubMinutes); arc != nil {
			e.hoverArc = arc
			e.tooltip = e.tooltipFor(arc)
		}
	}
	e.renderFrame()
}

// scheduleTick arms the next frame callback.
func (e *Engine) scheduleTick() {
	e.frameCancel = e.clock.AfterFunc(e.frameInterval, e.tick)
}

// tick advances the scrub line proportionally to elapsed wall time, the
// speed multiplier, and the zoom span, then re-arms itself. Zooming in
// slows the sweep so the line crosses the visible window at a steady pace.
func (e *Engine) tick() {
	if e.destroyed || !e.playing {
		return
	}
	now := e.clock.Now()
	elapsed := now.Sub(e.lastTick)
	e.lastTick = now

	advance := (float64(elapsed.Milliseconds()) / 60000.0) * e.speed * (e.zoomSpan / timeline.FullDayMinutes)
	e.setScrub(e.scrubMinutes+advance, true)
	e.scheduleTick()
}

// arcAtMinutes finds the innermost visible arc covering an absolute minute
// of day, accounting for arcs that wrap past midnight.
func (e *Engine) arcAtMinutes(minutes float64) *DisplayArc {
	for _, arc := range e.visibleArcs {
		start := arc.SegmentStart
		end := timeline.WrapMinutes(start + arc.SegmentDuration)
		if start <= end {
			if minutes >= start && minutes <= end {
				return arc
			}
			continue
		}
		if minutes >= start || minutes <= end {
			return arc
		}
	}
	return nil
}
