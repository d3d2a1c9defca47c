package schedulegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/okian/urchin/internal/domain/balance"
	"github.com/okian/urchin/pkg/logger"
)

// outputFilePermission is the mode for generated schedule files.
const outputFilePermission = 0o644

// Run generates one schedule, then writes and submits it per the config.
// When a base URL is set the run is verified by checking that the service's
// balance history grew.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("schedulegen")

	schedule := Generate(cfg)
	log.Info(ctx, "generated schedule",
		logger.Int("events", len(schedule.Events)),
		logger.Int("agents", cfg.AgentCount),
	)
	if cfg.Verbose {
		for _, event := range schedule.Events {
			log.Info(ctx, "event",
				logger.String("label", event.Label),
				logger.String("agent", event.Agent),
				logger.String("start", event.Start),
				logger.String("end", event.End),
			)
		}
	}

	payload, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := os.WriteFile(cfg.OutputFile, payload, outputFilePermission); err != nil {
			return fmt.Errorf("write schedule file: %w", err)
		}
		log.Info(ctx, "wrote schedule file", logger.String("path", cfg.OutputFile))
	}

	if cfg.BaseURL == "" {
		return nil
	}

	client := &http.Client{Timeout: cfg.Timeout}

	before, err := fetchTotalRuns(ctx, client, cfg.BaseURL)
	if err != nil {
		log.Warn(ctx, "history check before submit failed", logger.Error(err))
	}

	if err := submit(ctx, client, cfg.BaseURL, payload); err != nil {
		return err
	}
	log.Info(ctx, "submitted schedule", logger.String("url", cfg.BaseURL+"/schedule"))

	after, err := fetchTotalRuns(ctx, client, cfg.BaseURL)
	if err != nil {
		log.Warn(ctx, "history check after submit failed", logger.Error(err))
		return nil
	}
	if after > before {
		log.Info(ctx, "run captured in balance history", logger.Int("totalRuns", after))
	} else {
		// Identical schedules are de-duplicated by signature, so an
		// unchanged counter is expected on a repeat submit.
		log.Info(ctx, "run not captured, likely a duplicate", logger.Int("totalRuns", after))
	}
	return nil
}

// submit posts the schedule payload and checks for acceptance.
func submit(ctx context.Context, client *http.Client, baseURL string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/schedule", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("submit schedule: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("submit schedule: unexpected status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// fetchTotalRuns reads the service's run counter from the history endpoint.
func fetchTotalRuns(ctx context.Context, client *http.Client, baseURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/history", nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch history: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch history: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Entries   []balance.Entry `json:"entries"`
		TotalRuns int             `json:"totalRuns"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode history: %w", err)
	}
	return body.TotalRuns, nil
}
