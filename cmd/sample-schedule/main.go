package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/urchin/internal/schedulegen"
	"github.com/okian/urchin/pkg/logger"
)

// runTimeout bounds the whole generator run.
const runTimeout = 2 * time.Minute

func main() {
	defaults := schedulegen.NewConfig()
	var (
		baseURL    = flag.String("url", "", "Base URL of a running service to submit to (empty skips submission)")
		outputFile = flag.String("output", "", "Output file for the generated schedule (empty skips the file write)")
		eventCount = flag.Int("events", defaults.EventCount, "Number of activities to generate")
		agentCount = flag.Int("agents", defaults.AgentCount, "Number of distinct agents")
		timeout    = flag.Duration("timeout", defaults.Timeout, "HTTP request timeout")
		seed       = flag.Int64("seed", 0, "Random seed (0 draws a fresh one)")
		verbose    = flag.Bool("verbose", false, "Log every generated event")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := schedulegen.NewConfig()
	cfg.BaseURL = *baseURL
	cfg.OutputFile = *outputFile
	cfg.EventCount = *eventCount
	cfg.AgentCount = *agentCount
	cfg.Timeout = *timeout
	cfg.Seed = *seed
	cfg.Verbose = *verbose

	if cfg.BaseURL == "" && cfg.OutputFile == "" {
		cfg.OutputFile = "schedule_" + time.Now().Format("20060102_150405") + ".json"
	}

	if err := schedulegen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
