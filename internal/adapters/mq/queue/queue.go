// Package queue defines the contract for enqueuing and consuming schedule
// updates.
//
// Updates fan in from several producers (HTTP, file watcher) but are applied
// by a single worker, which is what keeps the engine single-threaded. The
// queue is an in-memory bounded channel.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
	defaultBufferSize    = 1024
)

// Update is one schedule replacement request flowing through the queue.
type Update struct {
	// Schedule is the decoded, normalized schedule to apply.
	Schedule *timeline.Schedule
	// Source names the producer, e.g. "http" or "watch".
	Source string
	// ReceivedAt is when the producer accepted the payload.
	ReceivedAt time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an update to the queue.
	// Returns false if the queue is full and the update was not enqueued.
	Enqueue(ctx context.Context, u Update) bool

	// Dequeue returns a channel that will receive updates as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Update

	// Len returns the current number of queued updates.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new updates can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	updates    chan Update
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	// Initialize the updates channel with the configured buffer size
	q.updates = make(chan Update, q.bufferSize)

	// Initialize metrics
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds an update to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, u Update) bool {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordQueueProcessingLatency(float64(latency))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	// Check if we're at capacity
	if len(q.updates) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.updates <- u:
		metrics.RecordQueueEnqueue()
		currentSize := len(q.updates)
		metrics.UpdateQueueSize(currentSize)
		metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false // context cancelled
	default:
		metrics.RecordQueueEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive updates as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Update {
	// Wrap the channel to track dequeue metrics
	dequeueChan := make(chan Update)
	go func() {
		defer close(dequeueChan)
		for update := range q.updates {
			select {
			case dequeueChan <- update:
				metrics.RecordQueueDequeue()
				currentSize := len(q.updates)
				metrics.UpdateQueueSize(currentSize)
				metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued updates.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.updates)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	// Close the updates channel to signal consumers to stop
	close(q.updates)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
