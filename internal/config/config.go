// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/okian/urchin/internal/domain/layout"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory schedule update queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the ingest deduplication window.
	DedupeSize int `koanf:"dedupe_size"`

	// ScheduleFile, when set, is loaded at startup and watched for changes.
	ScheduleFile string `koanf:"schedule_file"`

	// HistoryFile persists the balance history across restarts. Empty
	// disables persistence.
	HistoryFile string `koanf:"history_file"`

	// HistoryCapacity bounds the rolling balance history.
	HistoryCapacity int `koanf:"history_capacity"`

	// Mode selects the initial ring grouping: day-rings or agent-rings.
	Mode string `koanf:"mode"`

	// HighContrast selects the high-contrast palette.
	HighContrast bool `koanf:"high_contrast"`

	// SurfaceWidth and SurfaceHeight set the logical diagram size.
	SurfaceWidth  float64 `koanf:"surface_width"`
	SurfaceHeight float64 `koanf:"surface_height"`

	// ExportScale multiplies the surface size for PNG exports.
	ExportScale float64 `koanf:"export_scale"`

	// HoverDelayMS sets the hover debounce in milliseconds.
	HoverDelayMS int `koanf:"hover_delay_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		QueueSize:       1024,
		DedupeSize:      512,
		ScheduleFile:    "",
		HistoryFile:     "",
		HistoryCapacity: 50,
		Mode:            string(layout.ModeDayRings),
		HighContrast:    false,
		SurfaceWidth:    640,
		SurfaceHeight:   640,
		ExportScale:     2,
		HoverDelayMS:    180,
	}
}
