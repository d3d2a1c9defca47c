// Package dedupe tracks recently seen schedule signatures so repeated
// submissions of the same payload are acknowledged without re-processing.
package dedupe

// Option applies a configuration option to the InMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of signatures to keep in memory.
// Non-positive values keep the default bound.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}
