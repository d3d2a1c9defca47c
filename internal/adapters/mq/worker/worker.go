// Package worker applies queued schedule updates to the engine.
//
// Exactly one worker drains the queue. Producers may be concurrent, but all
// engine mutation flows through this single goroutine, which is the
// serialization point for the whole service.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/urchin/internal/adapters/mq/queue"
	"github.com/okian/urchin/pkg/logger"
	"github.com/okian/urchin/pkg/metrics"
)

// Applier consumes one schedule update. Implementations typically replace
// the engine's schedule, capture a balance snapshot, and fan the new frame
// out to subscribers.
type Applier interface {
	Apply(ctx context.Context, u queue.Update) error
}

// Queue defines how the worker receives updates.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Update
}

// Worker processes schedule updates using the provided Applier.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any in-flight update before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing updates.
type InMemoryWorker struct {
	queue   Queue
	applier Applier
	name    string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		applier:  applier,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	updateChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case update, ok := <-updateChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processUpdate(ctx, update); err != nil {
				w.logger.Error(ctx, "error applying schedule update", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processUpdate handles a single schedule update.
func (w *InMemoryWorker) processUpdate(ctx context.Context, u queue.Update) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	if err := w.applier.Apply(ctx, u); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "apply failed",
			logger.String("source", u.Source),
			logger.Error(err),
		)
		return fmt.Errorf("apply update from %s: %w", u.Source, err)
	}

	metrics.RecordScheduleProcessed()
	return nil
}
