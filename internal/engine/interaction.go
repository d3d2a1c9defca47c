package engine

import (
	"fmt"
	"math"

	"github.com/okian/urchin/internal/domain/hittest"
	"github.com/okian/urchin/internal/domain/layout"
	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/internal/render"
	"github.com/okian/urchin/pkg/metrics"
)

// Key identifiers accepted by KeyDown.
const (
	KeyLeft   = "left"
	KeyRight  = "right"
	KeyUp     = "up"
	KeyDown   = "down"
	KeyEscape = "escape"
)

// PointerMove records a pointer position in surface coordinates and arms
// the hover debounce. Hit testing runs only after the pointer settles, so
// fast sweeps across the diagram do not hit-test on every sample.
func (e *Engine) PointerMove(x, y float64) {
	if e.destroyed {
		return
	}
	relX := x - e.width/2
	relY := y - e.height/2
	if e.hoverCancel != nil {
		e.hoverCancel()
	}
	e.hoverCancel = e.clock.AfterFunc(e.hoverDelay, func() {
		e.processHover(relX, relY)
	})
}

// PointerLeave cancels any pending hover work and hides the tooltip.
func (e *Engine) PointerLeave() {
	if e.destroyed {
		return
	}
	if e.hoverCancel != nil {
		e.hoverCancel()
		e.hoverCancel = nil
	}
	e.hoverArc = nil
	e.tooltip = nil
	e.renderFrame()
}

// processHover resolves the settled pointer position to an arc.
func (e *Engine) processHover(x, y float64) {
	if e.destroyed {
		return
	}
	if !e.hasValidCenter() {
		e.hoverArc = nil
		e.tooltip = nil
		e.renderFrame()
		return
	}
	metrics.RecordHitTest()
	hovered := e.hitTest(x, y)
	if hovered == nil {
		e.hoverArc = nil
		e.tooltip = nil
		e.renderFrame()
		return
	}
	e.hoverArc = hovered
	e.tooltip = e.tooltipFor(hovered)
	e.renderFrame()
}

// hitTest finds the display arc nearest a center-relative point.
func (e *Engine) hitTest(x, y float64) *DisplayArc {
	if len(e.displayArcs) == 0 {
		return nil
	}
	candidates := make([]*layout.Arc, len(e.displayArcs))
	for i := range e.displayArcs {
		candidates[i] = &e.displayArcs[i].Arc
	}
	nearest := hittest.FindNearest(candidates, hittest.Point{X: x, Y: y},
		hittest.WithTolerance(defaultHitTolerance))
	if nearest == nil {
		return nil
	}
	for i := range e.displayArcs {
		if &e.displayArcs[i].Arc == nearest {
			return e.displayArcs[i]
		}
	}
	return nil
}

// Click commits the current hover arc as the selection.
func (e *Engine) Click() {
	if e.destroyed || e.hoverArc == nil {
		return
	}
	e.setSelection(e.hoverArc)
}

// KeyDown handles keyboard navigation: left/right cycles siblings within a
// ring by start time, up/down moves to the nearest-by-start-time arc in the
// adjacent ring, escape clears the selection.
func (e *Engine) KeyDown(key string) {
	if e.destroyed {
		return
	}
	if key == KeyEscape {
		e.ClearSelection()
		return
	}
	if key != KeyLeft && key != KeyRight && key != KeyUp && key != KeyDown {
		return
	}
	if len(e.visibleArcs) == 0 {
		return
	}
	current := e.selectedArc
	if current == nil {
		current = e.hoverArc
	}
	if current == nil {
		current = e.visibleArcs[0]
	}

	var target *DisplayArc
	switch key {
	case KeyRight:
		target = e.adjacentArc(current, +1)
	case KeyLeft:
		target = e.adjacentArc(current, -1)
	case KeyUp:
		target = e.ringShift(current, -1)
	case KeyDown:
		target = e.ringShift(current, +1)
	}
	if target != nil {
		e.setSelection(target)
	}
}

// adjacentArc cycles within the current ring by start time.
func (e *Engine) adjacentArc(current *DisplayArc, delta int) *DisplayArc {
	var siblings []*DisplayArc
	for _, arc := range e.visibleArcs {
		if arc.RingKey == current.RingKey {
			siblings = append(siblings, arc)
		}
	}
	if len(siblings) == 0 {
		return nil
	}
	index := -1
	for i, arc := range siblings {
		if arc.ID == current.ID {
			index = i
			break
		}
	}
	if index == -1 {
		return siblings[0]
	}
	next := (index + delta + len(siblings)) % len(siblings)
	return siblings[next]
}

// ringShift moves to the adjacent ring, picking the arc whose start time is
// closest to the current one.
func (e *Engine) ringShift(current *DisplayArc, delta int) *DisplayArc {
	var rings []string
	seen := make(map[string]struct{})
	for _, arc := range e.visibleArcs {
		if _, ok := seen[arc.RingKey]; !ok {
			seen[arc.RingKey] = struct{}{}
			rings = append(rings, arc.RingKey)
		}
	}
	ringIndex := -1
	for i, key := range rings {
		if key == current.RingKey {
			ringIndex = i
			break
		}
	}
	if ringIndex == -1 {
		return nil
	}
	next := ringIndex + delta
	if next < 0 {
		next = 0
	} else if next >= len(rings) {
		next = len(rings) - 1
	}

	var best *DisplayArc
	bestDist := math.Inf(1)
	for _, arc := range e.visibleArcs {
		if arc.RingKey != rings[next] {
			continue
		}
		dist := math.Abs(float64(arc.StartMinutes - current.StartMinutes))
		if dist < bestDist {
			best = arc
			bestDist = dist
		}
	}
	return best
}

// setSelection commits an arc, notifies the select handler, and updates the
// accessibility announcement.
func (e *Engine) setSelection(arc *DisplayArc) {
	e.selectedArc = arc
	if e.onSelect != nil {
		e.onSelect(arc.Event)
	}
	if e.announce != nil {
		e.announce(fmt.Sprintf("%s, %s to %s",
			arc.Label,
			timeline.FormatClock(arc.StartMinutes),
			timeline.FormatClock(arc.StartMinutes+arc.Duration),
		))
	}
	e.renderFrame()
}

// ClearSelection drops the selected arc without touching hover state.
func (e *Engine) ClearSelection() {
	if e.destroyed {
		return
	}
	e.selectedArc = nil
	if e.announce != nil {
		e.announce("Selection cleared")
	}
	e.renderFrame()
}

// SelectedArc returns the committed selection, or nil.
func (e *Engine) SelectedArc() *DisplayArc {
	return e.selectedArc
}

// HoverArc returns the arc currently under the pointer, or nil.
func (e *Engine) HoverArc() *DisplayArc {
	return e.hoverArc
}

// Wheel applies a zoom gesture: the span changes multiplicatively with the
// wheel delta and the window re-centers on the minute under the pointer.
func (e *Engine) Wheel(deltaY, x, y float64) {
	if e.destroyed || !e.hasValidCenter() {
		return
	}
	relX := x - e.width/2
	relY := y - e.height/2
	angle := math.Atan2(relY, relX)

	span := e.zoomSpan * (1 + deltaY*wheelZoomFactor)
	span = math.Max(minZoomSpan, math.Min(span, timeline.FullDayMinutes))

	angleRatio := (angle + math.Pi/2) / (2 * math.Pi)
	if angleRatio < 0 {
		angleRatio++
	}
	focusMinutes := timeline.WrapMinutes(angleRatio*e.zoomSpan + e.zoomStart)

	e.zoomSpan = span
	e.zoomStart = timeline.WrapMinutes(focusMinutes - span/2)
	e.rebuildDisplayArcs()
	e.renderFrame()
}

// ResetZoom restores the full-day window.
func (e *Engine) ResetZoom() {
	if e.destroyed {
		return
	}
	e.zoomStart = 0
	e.zoomSpan = timeline.FullDayMinutes
	e.rebuildDisplayArcs()
	e.renderFrame()
}

// Zoom returns the current window start and span in minutes.
func (e *Engine) Zoom() (start, span float64) {
	return e.zoomStart, e.zoomSpan
}

// tooltipFor builds the structured tooltip for an arc, anchored at the
// arc's mid-angle and mid-radius.
func (e *Engine) tooltipFor(arc *DisplayArc) *render.Tooltip {
	startMinutes := timeline.WrapMinutes(arc.SegmentStart)
	endMinutes := timeline.WrapMinutes(startMinutes + arc.SegmentDuration)
	lines := []string{
		timeline.FormatClock(int(startMinutes)) + " – " + timeline.FormatClock(int(endMinutes)),
		timeline.FormatDuration(int(math.Round(arc.SegmentDuration))),
	}
	if event := arc.Event; event != nil {
		if event.Activity != "" && event.Activity != arc.Label {
			lines = append(lines, "Activity · "+event.Activity)
		}
		if agent := event.ResolveAgent(); agent != "" {
			lines = append(lines, "Agent · "+agent)
		}
		if event.Metadata != nil {
			if note, ok := event.Metadata["note"].(string); ok && note != "" {
				lines = append(lines, note)
			}
		}
	}

	radius := (arc.InnerRadius + arc.OuterRadius) / 2
	return &render.Tooltip{
		X:     e.width/2 + math.Cos(arc.CenterAngle)*radius,
		Y:     e.height/2 + math.Sin(arc.CenterAngle)*radius,
		Title: arc.Label,
		Lines: lines,
	}
}
