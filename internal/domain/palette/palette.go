// Package palette maps activity labels to stable colors.
//
// The mapping is a pure hash over the label, so the same activity keeps the
// same color across layouts, zoom levels, and runs. Distinct labels may
// collide on a palette slot; that is accepted.
package palette

import "fmt"

// Base palette used in normal contrast mode.
var baseColors = []string{
	"#6750A4", "#386A20", "#00677D", "#7D5260", "#815600", "#0B7285",
	"#4E36B1", "#B02A37", "#00796B", "#9C4146", "#4C6EF5", "#FF6F61",
	"#5C940D", "#FF8F00", "#2B8A3E", "#00A6FB", "#C77DFF", "#FFB300",
}

// Reduced palette used when high-contrast rendering is requested.
var highContrastColors = []string{
	"#FFFFFF", "#F4B400", "#F45D01", "#4CAF50", "#039BE5",
	"#E91E63", "#8E24AA", "#3949AB", "#00897B", "#FB8C00",
}

// Surface colors for exported documents.
const (
	darkSurface  = "#1C1B1F"
	lightSurface = "#FDF8FD"
)

// hashLabel folds the label into an unsigned 32-bit hash (hash*31 + ch).
func hashLabel(label string) uint32 {
	var hash uint32
	for _, ch := range []byte(label) {
		hash = hash*31 + uint32(ch)
	}
	return hash
}

// MapLabelToColor returns the palette color for a label. The empty label
// maps to the first palette slot.
func MapLabelToColor(label string, highContrast bool) string {
	colors := baseColors
	if highContrast {
		colors = highContrastColors
	}
	if label == "" {
		return colors[0]
	}
	return colors[hashLabel(label)%uint32(len(colors))]
}

// ResolveSurface returns the document background for the given theme.
func ResolveSurface(dark bool) string {
	if dark {
		return darkSurface
	}
	return lightSurface
}

// ResolveStateLayer derives a translucent fill from a stroke color by
// appending an alpha channel. Opacity is clamped to [0, 1].
func ResolveStateLayer(color string, opacity float64) string {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	alpha := int(opacity*255 + 0.5)
	return fmt.Sprintf("%s%02x", color, alpha)
}

// SegmentTextColor picks a readable text color for a hex background using
// its relative luminance. Unparseable backgrounds get the dark default.
func SegmentTextColor(background string) string {
	const (
		darkText  = "#0f172a"
		lightText = "#f8fafc"
	)
	hex := background
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return darkText
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return darkText
	}
	luminance := (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
	if luminance > 0.6 {
		return darkText
	}
	return lightText
}
