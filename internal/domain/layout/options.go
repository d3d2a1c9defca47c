package layout

// Default ring geometry constants.
const (
	defaultRingWidth  = 34.0
	defaultRingGap    = 12.0
	defaultBaseRadius = 48.0
)

type config struct {
	mode         Mode
	ringWidth    float64
	ringGap      float64
	baseRadius   float64
	include      func(label string) bool
	highContrast bool
}

// Option applies a configuration option to a layout computation.
type Option func(*config)

func newConfig(opts ...Option) *config {
	cfg := &config{
		mode:       ModeDayRings,
		ringWidth:  defaultRingWidth,
		ringGap:    defaultRingGap,
		baseRadius: defaultBaseRadius,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithMode sets the ring grouping mode.
func WithMode(mode Mode) Option {
	return func(c *config) {
		if mode == ModeDayRings || mode == ModeAgentRings {
			c.mode = mode
		}
	}
}

// WithRingWidth sets the radial width of each ring band.
func WithRingWidth(width float64) Option {
	return func(c *config) {
		if width > 0 {
			c.ringWidth = width
		}
	}
}

// WithRingGap sets the gap between consecutive rings.
func WithRingGap(gap float64) Option {
	return func(c *config) {
		if gap >= 0 {
			c.ringGap = gap
		}
	}
}

// WithBaseRadius sets the inner radius of the first ring.
func WithBaseRadius(radius float64) Option {
	return func(c *config) {
		if radius > 0 {
			c.baseRadius = radius
		}
	}
}

// WithIncludeLabel sets the label visibility filter. Arcs whose label is
// rejected by the filter are excluded from the layout (totals are not).
func WithIncludeLabel(include func(label string) bool) Option {
	return func(c *config) {
		c.include = include
	}
}

// WithHighContrast switches arc colors to the high-contrast palette.
func WithHighContrast(enabled bool) Option {
	return func(c *config) {
		c.highContrast = enabled
	}
}
