package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/urchin/internal/domain/palette"
)

// tooltip box metrics in SVG user units.
const (
	tooltipLineHeight = 16.0
	tooltipPadding    = 10.0
	tooltipCharWidth  = 7.2
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EncodeSVG serializes a frame as a standalone SVG document. The output is
// deterministic for a given frame, which the export tests rely on.
func EncodeSVG(frame *Frame) []byte {
	var b strings.Builder
	width := frame.Width
	height := frame.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 640
	}

	surface := palette.ResolveSurface(frame.HighContrast)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" role="img">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%.0f" height="%.0f" fill="%s"/>`+"\n", width, height, surface)

	if frame.Empty {
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="14" fill="%s">%s</text>`+"\n",
			width/2, height/2, palette.SegmentTextColor(surface), xmlEscaper.Replace(frame.Message))
		b.WriteString("</svg>\n")
		return []byte(b.String())
	}

	cx := frame.CenterX
	cy := frame.CenterY
	for _, arc := range frame.Arcs {
		writeArc(&b, cx, cy, arc)
	}
	if frame.Scrub != nil {
		writeScrub(&b, cx, cy, *frame.Scrub, frame.HighContrast)
	}
	if frame.Tooltip != nil {
		writeTooltip(&b, *frame.Tooltip, frame.HighContrast)
	}
	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func writeArc(b *strings.Builder, cx, cy float64, arc Arc) {
	path := SegmentPath(cx, cy, arc.InnerRadius, arc.OuterRadius, arc.StartAngle, arc.EndAngle)
	stroke := "none"
	strokeWidth := 0.0
	switch {
	case arc.Selected:
		stroke = palette.SegmentTextColor(arc.Color)
		strokeWidth = 2.5
	case arc.Hovered:
		stroke = palette.SegmentTextColor(arc.Color)
		strokeWidth = 1.5
	}
	fmt.Fprintf(b, `<path d="%s" fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="%.1f"><title>%s</title></path>`+"\n",
		path, arc.Color, arc.Alpha, stroke, strokeWidth, xmlEscaper.Replace(arc.Label))
}

func writeScrub(b *strings.Builder, cx, cy float64, scrub ScrubLine, highContrast bool) {
	x2 := cx + scrub.Radius*math.Cos(scrub.Angle)
	y2 := cy + scrub.Radius*math.Sin(scrub.Angle)
	color := palette.SegmentTextColor(palette.ResolveSurface(highContrast))
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5" stroke-dasharray="4 3" opacity="0.8"/>`+"\n",
		cx, cy, x2, y2, color)
}

func writeTooltip(b *strings.Builder, tooltip Tooltip, highContrast bool) {
	lines := append([]string{tooltip.Title}, tooltip.Lines...)
	widest := 0
	for _, line := range lines {
		if len(line) > widest {
			widest = len(line)
		}
	}
	boxWidth := float64(widest)*tooltipCharWidth + 2*tooltipPadding
	boxHeight := float64(len(lines))*tooltipLineHeight + 2*tooltipPadding

	background := palette.ResolveStateLayer(palette.ResolveSurface(!highContrast), 0.92)
	text := palette.SegmentTextColor(palette.ResolveSurface(!highContrast))

	fmt.Fprintf(b, `<g transform="translate(%.1f %.1f)">`+"\n", tooltip.X+12, tooltip.Y-boxHeight/2)
	fmt.Fprintf(b, `<rect width="%.1f" height="%.1f" rx="6" fill="%s"/>`+"\n", boxWidth, boxHeight, background)
	for i, line := range lines {
		weight := "normal"
		if i == 0 {
			weight = "bold"
		}
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="12" font-weight="%s" fill="%s">%s</text>`+"\n",
			tooltipPadding, tooltipPadding+float64(i+1)*tooltipLineHeight-4, weight, text, xmlEscaper.Replace(line))
	}
	b.WriteString("</g>\n")
}
