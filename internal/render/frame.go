// Package render defines the frame model handed from the engine to drawing
// surfaces. A frame is a pure description of one render pass; surfaces turn
// it into pixels or markup without reaching back into engine state.
package render

import (
	"fmt"
	"math"

	"github.com/okian/urchin/internal/domain/balance"
)

// Arc is one drawable ring segment with display-space geometry.
type Arc struct {
	ID          string
	Label       string
	InnerRadius float64
	OuterRadius float64
	StartAngle  float64
	EndAngle    float64
	Color       string
	Alpha       float64
	Selected    bool
	Hovered     bool
}

// ScrubLine marks the current playback position.
type ScrubLine struct {
	Angle  float64
	Radius float64
}

// Tooltip is the structured hover payload anchored at a point of the
// drawing surface.
type Tooltip struct {
	X     float64
	Y     float64
	Title string
	Lines []string
}

// Frame is the complete state of one render pass.
type Frame struct {
	Width        float64
	Height       float64
	CenterX      float64
	CenterY      float64
	HighContrast bool
	Empty        bool
	Message      string
	Arcs         []Arc
	Scrub        *ScrubLine
	Tooltip      *Tooltip
	Share        balance.Breakdown
}

// Surface consumes frames produced by the engine. Implementations must not
// retain the frame past the call.
type Surface interface {
	Render(frame *Frame)
}

// SegmentPath builds the vector path for one ring segment: outer sweep,
// line to the inner radius, inner sweep back, close.
func SegmentPath(cx, cy, innerR, outerR, startAngle, endAngle float64) string {
	largeArc := 0
	if endAngle-startAngle > math.Pi {
		largeArc = 1
	}
	startOuterX := cx + outerR*math.Cos(startAngle)
	startOuterY := cy + outerR*math.Sin(startAngle)
	endOuterX := cx + outerR*math.Cos(endAngle)
	endOuterY := cy + outerR*math.Sin(endAngle)
	startInnerX := cx + innerR*math.Cos(endAngle)
	startInnerY := cy + innerR*math.Sin(endAngle)
	endInnerX := cx + innerR*math.Cos(startAngle)
	endInnerY := cy + innerR*math.Sin(startAngle)

	return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 0 %.2f %.2f Z",
		startOuterX, startOuterY,
		outerR, outerR, largeArc, endOuterX, endOuterY,
		startInnerX, startInnerY,
		innerR, innerR, largeArc, endInnerX, endInnerY,
	)
}
