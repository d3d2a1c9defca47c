package schedulegen

import "time"

// Default configuration constants.
const (
	defaultEventCount = 8
	defaultAgentCount = 2
	defaultTimeout    = 30 * time.Second
)

// Config controls one generator run.
type Config struct {
	// BaseURL is the service to submit the schedule to. Empty skips
	// submission.
	BaseURL string

	// OutputFile receives the generated schedule JSON. Empty skips the
	// file write.
	OutputFile string

	// EventCount is the number of activities to generate.
	EventCount int

	// AgentCount is the number of distinct agents to spread events over.
	AgentCount int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Seed fixes the random sequence; zero draws a fresh one.
	Seed int64

	// Verbose enables per-event logging.
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		EventCount: defaultEventCount,
		AgentCount: defaultAgentCount,
		Timeout:    defaultTimeout,
	}
}
