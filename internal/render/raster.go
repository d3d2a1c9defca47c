package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/okian/urchin/internal/domain/palette"
)

// EncodePNG rasterizes a frame by classifying each pixel in polar
// coordinates against the frame's arcs. Scale multiplies the frame
// dimensions for higher-resolution exports; values below 1 are treated
// as 1.
func EncodePNG(frame *Frame, scale float64) ([]byte, error) {
	if scale < 1 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	width := frame.Width
	height := frame.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 640
	}
	pixelWidth := int(math.Round(width * scale))
	pixelHeight := int(math.Round(height * scale))

	surface := parseHexColor(palette.ResolveSurface(frame.HighContrast))
	img := image.NewRGBA(image.Rect(0, 0, pixelWidth, pixelHeight))

	cx := frame.CenterX * scale
	cy := frame.CenterY * scale

	for py := 0; py < pixelHeight; py++ {
		for px := 0; px < pixelWidth; px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			radius := math.Hypot(dx, dy) / scale
			angle := math.Atan2(dy, dx)

			pixel := surface
			for i := range frame.Arcs {
				arc := &frame.Arcs[i]
				if radius < arc.InnerRadius || radius > arc.OuterRadius {
					continue
				}
				if !angleWithin(angle, arc.StartAngle, arc.EndAngle) {
					continue
				}
				pixel = blend(surface, parseHexColor(arc.Color), arc.Alpha)
				break
			}
			img.SetRGBA(px, py, pixel)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// angleWithin tests whether an angle falls inside a sweep. Sweeps crossing
// midnight extend past the principal range, so the angle is checked at every
// full-turn shift.
func angleWithin(angle, start, end float64) bool {
	for _, shift := range []float64{0, 2 * math.Pi, -2 * math.Pi} {
		if shifted := angle + shift; shifted >= start && shifted <= end {
			return true
		}
	}
	return false
}

func blend(under, over color.RGBA, alpha float64) color.RGBA {
	if alpha >= 1 {
		return over
	}
	if alpha <= 0 {
		return under
	}
	mix := func(u, o uint8) uint8 {
		return uint8(float64(u)*(1-alpha) + float64(o)*alpha + 0.5)
	}
	return color.RGBA{
		R: mix(under.R, over.R),
		G: mix(under.G, over.G),
		B: mix(under.B, over.B),
		A: 255,
	}
}

// parseHexColor decodes "#RRGGBB" (with optional trailing alpha byte, which
// is ignored). Unparseable input comes back black.
func parseHexColor(value string) color.RGBA {
	out := color.RGBA{A: 255}
	if len(value) < 7 || value[0] != '#' {
		return out
	}
	parse := func(hi, lo byte) (uint8, bool) {
		h, okHi := hexNibble(hi)
		l, okLo := hexNibble(lo)
		return h<<4 | l, okHi && okLo
	}
	r, okR := parse(value[1], value[2])
	g, okG := parse(value[3], value[4])
	b, okB := parse(value[5], value[6])
	if !okR || !okG || !okB {
		return out
	}
	out.R, out.G, out.B = r, g, b
	return out
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
