package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/urchin/internal/domain/balance"
	"github.com/okian/urchin/internal/domain/layout"
	"github.com/okian/urchin/internal/domain/palette"
	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/internal/render"
	"github.com/okian/urchin/pkg/metrics"
)

// DisplayArc is a layout arc after zoom clipping and radius scaling. One
// layout arc can produce several display arcs when it wraps across the zoom
// window boundary.
type DisplayArc struct {
	layout.Arc

	// SegmentStart is the wrapped absolute start of the clipped segment.
	SegmentStart float64
	// SegmentDuration is the clipped segment length in minutes.
	SegmentDuration float64
	// AgentMatch is false when an agent filter is active and this arc
	// belongs to a different agent; such arcs render dimmed.
	AgentMatch bool
}

// clipSegment is one window-relative slice of an arc.
type clipSegment struct {
	absoluteStart float64
	startRelative float64
	duration      float64
}

// rebuildDisplayArcs recomputes the full display state from the layout,
// zoom window, and surface size. It replaces the previous slices wholesale.
func (e *Engine) rebuildDisplayArcs() {
	if e.layout == nil {
		e.displayArcs = nil
		e.visibleArcs = nil
		e.displayMax = 0
		e.updateShareBar()
		return
	}

	scale := e.radiusScale()
	arcs := make([]*DisplayArc, 0, len(e.layout.Arcs))
	for _, arc := range e.layout.Arcs {
		if _, hidden := e.hiddenLabels[arc.Label]; hidden {
			continue
		}
		agentMatch := e.isAgentMatch(arc.Event)
		for index, segment := range e.clipToWindow(arc) {
			startAngle := e.minutesToAngle(segment.startRelative)
			endAngle := e.minutesToAngle(segment.startRelative + segment.duration)
			display := &DisplayArc{
				Arc:             *arc,
				SegmentStart:    timeline.WrapMinutes(segment.absoluteStart),
				SegmentDuration: segment.duration,
				AgentMatch:      agentMatch,
			}
			if index > 0 {
				display.ID = fmt.Sprintf("%s:%d", arc.ID, index)
			}
			display.StartAngle = startAngle
			display.EndAngle = endAngle
			display.CenterAngle = startAngle + (endAngle-startAngle)/2
			display.InnerRadius = arc.InnerRadius * scale
			display.OuterRadius = arc.OuterRadius * scale
			arcs = append(arcs, display)
		}
	}

	e.displayArcs = arcs
	e.visibleArcs = append([]*DisplayArc(nil), arcs...)
	sort.SliceStable(e.visibleArcs, func(a, b int) bool {
		if e.visibleArcs[a].RingIndex == e.visibleArcs[b].RingIndex {
			return e.visibleArcs[a].StartMinutes < e.visibleArcs[b].StartMinutes
		}
		return e.visibleArcs[a].RingIndex < e.visibleArcs[b].RingIndex
	})
	e.displayMax = e.layout.MaxRadius * scale

	e.selectedArc = e.reresolveArc(e.selectedArc)
	e.hoverArc = e.reresolveArc(e.hoverArc)
	e.updateShareBar()
}

// clipToWindow splits an arc against the zoom window. With a full-day span
// the arc passes through untouched, keeping a midnight-crossing interval as
// one continuous segment; otherwise day-offset copies at -1440, 0 and +1440
// minutes are clipped so intervals wrapping the window boundary still
// render, and only segments with positive clipped duration survive.
func (e *Engine) clipToWindow(arc *layout.Arc) []clipSegment {
	if e.zoomSpan >= timeline.FullDayMinutes {
		return []clipSegment{{
			absoluteStart: float64(arc.StartMinutes),
			startRelative: float64(arc.StartMinutes) - e.zoomStart,
			duration:      float64(arc.Duration),
		}}
	}

	windowStart := e.zoomStart
	windowEnd := e.zoomStart + e.zoomSpan
	offsets := []float64{-timeline.FullDayMinutes, 0, timeline.FullDayMinutes}

	var segments []clipSegment
	for _, offset := range offsets {
		start := float64(arc.StartMinutes) + offset
		end := start + float64(arc.Duration)
		clippedStart := math.Max(start, windowStart)
		clippedEnd := math.Min(end, windowEnd)
		if clippedEnd > clippedStart {
			segments = append(segments, clipSegment{
				absoluteStart: clippedStart,
				startRelative: clippedStart - e.zoomStart,
				duration:      clippedEnd - clippedStart,
			})
		}
	}
	return segments
}

// minutesToAngle maps window-relative minutes to an angle. A full-day span
// is a plain circular map, left unwrapped so a midnight-crossing segment
// sweeps continuously; a narrower window maps linearly across the full
// sweep.
func (e *Engine) minutesToAngle(relativeMinutes float64) float64 {
	if e.zoomSpan >= timeline.FullDayMinutes {
		return layout.MinutesToAngle(relativeMinutes + e.zoomStart)
	}
	clamped := math.Max(0, math.Min(relativeMinutes, e.zoomSpan))
	return (clamped/e.zoomSpan)*2*math.Pi - math.Pi/2
}

// radiusScale fits the layout's bounding radius into the surface with fixed
// padding. An unknown or degenerate size keeps the natural scale.
func (e *Engine) radiusScale() float64 {
	if e.layout == nil {
		return 1
	}
	minSide := math.Min(e.width, e.height)
	if minSide <= 0 || isNonFinite(minSide) {
		return 1
	}
	usable := minSide/2 - surfacePadding
	if usable <= 0 || e.layout.MaxRadius <= 0 {
		return 1
	}
	return usable / e.layout.MaxRadius
}

func (e *Engine) isAgentMatch(event *timeline.Event) bool {
	if e.selectedAgent == "" || event == nil {
		return true
	}
	agent := event.ResolveAgent()
	if agent == "" {
		return false
	}
	return equalFold(agent, e.selectedAgent)
}

// updateShareBar recomputes the visible-activity balance breakdown. An
// empty breakdown also closes the history panel, which cannot usefully stay
// open without a baseline to compare against.
func (e *Engine) updateShareBar() {
	totals := e.visibleActivityTotals()
	e.share = balance.PrepareShareSegments(totals)
	if len(e.share.Segments) == 0 && e.historyOpen {
		e.historyOpen = false
	}
}

// visibleActivityTotals aggregates clipped minutes per label across the
// display arcs, largest first.
func (e *Engine) visibleActivityTotals() []balance.Activity {
	if len(e.visibleArcs) == 0 {
		return nil
	}
	byLabel := make(map[string]*balance.Activity)
	var order []string
	for _, arc := range e.visibleArcs {
		if arc.SegmentDuration <= 0 {
			continue
		}
		entry, ok := byLabel[arc.Label]
		if !ok {
			color := arc.Color
			if color == "" {
				color = palette.MapLabelToColor(arc.Label, e.highContrast)
			}
			entry = &balance.Activity{ID: arc.Label, Label: arc.Label, Color: color}
			byLabel[arc.Label] = entry
			order = append(order, arc.Label)
		}
		entry.Minutes += arc.SegmentDuration
	}
	totals := make([]balance.Activity, 0, len(order))
	for _, label := range order {
		totals = append(totals, *byLabel[label])
	}
	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Minutes > totals[b].Minutes
	})
	return totals
}

// Frame snapshots the current render state. It is also the render pipeline:
// a pure function of engine state, usable in tests without any surface.
func (e *Engine) Frame() *render.Frame {
	frame := &render.Frame{
		Width:        e.width,
		Height:       e.height,
		CenterX:      e.width / 2,
		CenterY:      e.height / 2,
		HighContrast: e.highContrast,
		Share:        e.share,
	}

	if !e.hasData || e.layout == nil || len(e.layout.Arcs) == 0 {
		frame.Empty = true
		frame.Message = noDataMessage
		return frame
	}

	frame.Arcs = make([]render.Arc, len(e.displayArcs))
	for i, arc := range e.displayArcs {
		alpha := 1.0
		if !arc.AgentMatch {
			alpha = dimmedArcAlpha
		}
		frame.Arcs[i] = render.Arc{
			ID:          arc.ID,
			Label:       arc.Label,
			InnerRadius: arc.InnerRadius,
			OuterRadius: arc.OuterRadius,
			StartAngle:  arc.StartAngle,
			EndAngle:    arc.EndAngle,
			Color:       arc.Color,
			Alpha:       alpha,
			Selected:    e.selectedArc != nil && arc.ID == e.selectedArc.ID,
			Hovered:     e.hoverArc != nil && arc.ID == e.hoverArc.ID,
		}
	}

	scrubRadius := e.displayMax
	if scrubRadius <= 0 {
		scrubRadius = e.layout.MaxRadius
	}
	frame.Scrub = &render.ScrubLine{
		Angle:  e.minutesToAngle(e.scrubMinutes - e.zoomStart),
		Radius: scrubRadius,
	}
	if e.tooltip != nil {
		tooltip := *e.tooltip
		frame.Tooltip = &tooltip
	}
	return frame
}

// renderFrame pushes the current frame to the surface. A degenerate center
// skips the pass and records a single warning instead of failing on every
// event.
func (e *Engine) renderFrame() {
	if e.surface == nil {
		return
	}
	if !e.hasValidCenter() {
		if !e.warnedNoCenter {
			e.log.Warn(e.ctx(), "invalid surface center, skipping render",
				logFloat("width", e.width), logFloat("height", e.height))
			e.warnedNoCenter = true
		}
		return
	}
	frame := e.Frame()
	if frame.Empty && !e.warnedNoData {
		e.log.Warn(e.ctx(), "no data to render, drawing placeholder")
		e.warnedNoData = true
	}
	e.surface.Render(frame)
	metrics.RecordRenderPass(len(frame.Arcs))
}

func isNonFinite(value float64) bool {
	return math.IsNaN(value) || math.IsInf(value, 0)
}
