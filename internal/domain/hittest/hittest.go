// Package hittest resolves pointer positions to arcs.
package hittest

import (
	"math"

	"github.com/okian/urchin/internal/domain/layout"
)

// Tolerance bounds, in pixels of combined deviation.
const (
	defaultTolerance = 8.0
	minTolerance     = 2.0
	maxTolerance     = 40.0
)

// radialWeight discounts radial deviation relative to angular deviation.
const radialWeight = 0.5

// Point is a pointer offset relative to the diagram center.
type Point struct {
	X float64
	Y float64
}

// Option applies a configuration option to a hit test.
type Option func(*config)

type config struct {
	tolerance float64
}

// WithTolerance sets the maximum accepted deviation. Values are clamped to
// a sane range so a misconfigured caller cannot make every miss a hit.
func WithTolerance(tolerance float64) Option {
	return func(c *config) {
		c.tolerance = tolerance
	}
}

// FindNearestArc maps a pointer position to the nearest arc of a layout, or
// nil when nothing is within tolerance.
func FindNearestArc(l *layout.Layout, point Point, opts ...Option) *layout.Arc {
	if l == nil {
		return nil
	}
	return FindNearest(l.Arcs, point, opts...)
}

// FindNearest scores every candidate arc against the pointer's polar
// position and returns the closest one within tolerance. Ties keep the
// first candidate, which is stable because arcs arrive in ring order.
func FindNearest(arcs []*layout.Arc, point Point, opts ...Option) *layout.Arc {
	cfg := config{tolerance: defaultTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}
	tolerance := math.Min(math.Max(cfg.tolerance, minTolerance), maxTolerance)

	radius := math.Hypot(point.X, point.Y)
	angle := math.Atan2(point.Y, point.X)
	// Normalize into [-π/2, 3π/2) to match the layout's top-start convention.
	if angle < -math.Pi/2 {
		angle += 2 * math.Pi
	}

	var best *layout.Arc
	bestScore := math.Inf(1)
	for _, arc := range arcs {
		if radius < arc.InnerRadius-tolerance || radius > arc.OuterRadius+tolerance {
			continue
		}
		startAngle := arc.StartAngle
		endAngle := arc.EndAngle
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
		// An arc crossing midnight sweeps past the representable angle
		// range, so the pointer angle is compared at every full-turn shift.
		angleDist := math.Inf(1)
		for _, shift := range []float64{-2 * math.Pi, 0, 2 * math.Pi} {
			shifted := angle + shift
			var dist float64
			if shifted < startAngle {
				dist = startAngle - shifted
			} else if shifted > endAngle {
				dist = shifted - endAngle
			}
			if dist < angleDist {
				angleDist = dist
			}
		}
		radialCenter := (arc.InnerRadius + arc.OuterRadius) / 2
		radialDist := math.Abs(radius - radialCenter)
		score := angleDist*radialCenter + radialDist*radialWeight
		if score < bestScore {
			best = arc
			bestScore = score
		}
	}

	if best == nil || math.Sqrt(bestScore) > tolerance {
		return nil
	}
	return best
}
