// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	updatequeue "github.com/okian/urchin/internal/adapters/mq/queue"
	updateworker "github.com/okian/urchin/internal/adapters/mq/worker"
	repository "github.com/okian/urchin/internal/adapters/repository"
	"github.com/okian/urchin/internal/domain/balance"
	"github.com/okian/urchin/internal/domain/dedupe"
	"github.com/okian/urchin/internal/domain/layout"
	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/internal/engine"
	"github.com/okian/urchin/internal/render"
	"github.com/okian/urchin/pkg/logger"
	"github.com/okian/urchin/pkg/metrics"
)

// subscriberBuffer bounds the per-subscriber frame channel. Slow consumers
// drop frames rather than stalling the apply loop.
const subscriberBuffer = 8

// Service owns the renderer engine and the plumbing around it. All engine
// mutation funnels through the single update worker plus the service mutex,
// so the engine itself stays single-threaded.
type Service struct {
	mu sync.Mutex

	// Core components
	engine      *engine.Engine
	updateQueue updatequeue.Queue
	worker      updateworker.Worker
	store       repository.Store
	deduper     dedupe.Deduper

	// Configuration
	queueSize       int
	dedupeSize      int
	historyCapacity int
	mode            layout.Mode
	highContrast    bool
	width, height   float64
	exportScale     float64
	hoverDelay      time.Duration

	// Live frame fan-out
	subMu       sync.Mutex
	subscribers map[int]chan []byte
	nextSubID   int

	// State
	started  bool
	workerWG sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the maximum size of the update queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the ingest deduplication window.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistoryCapacity bounds the rolling balance history.
func WithHistoryCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.historyCapacity = capacity
		}
	}
}

// WithStore sets the persistence backend for the balance history.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMode sets the initial ring grouping mode.
func WithMode(mode layout.Mode) Option {
	return func(s *Service) {
		if mode != "" {
			s.mode = mode
		}
	}
}

// WithHighContrast selects the high-contrast palette.
func WithHighContrast(enabled bool) Option {
	return func(s *Service) {
		s.highContrast = enabled
	}
}

// WithSurfaceSize sets the logical diagram dimensions.
func WithSurfaceSize(width, height float64) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.width = width
			s.height = height
		}
	}
}

// WithExportScale sets the default PNG export scale factor.
func WithExportScale(scale float64) Option {
	return func(s *Service) {
		if scale > 0 {
			s.exportScale = scale
		}
	}
}

// WithHoverDelay overrides the hover debounce interval.
func WithHoverDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.hoverDelay = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:       1024,
		dedupeSize:      512,
		historyCapacity: 50,
		mode:            layout.ModeDayRings,
		width:           640,
		height:          640,
		exportScale:     2,
		hoverDelay:      180 * time.Millisecond,
		store:           repository.NullStore{},
		subscribers:     make(map[int]chan []byte),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the engine, restores persisted history, and starts the
// update worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting timeline service...")

	s.engine = engine.New(
		engine.WithMode(s.mode),
		engine.WithHighContrast(s.highContrast),
		engine.WithSize(s.width, s.height),
		engine.WithHoverDelay(s.hoverDelay),
		engine.WithHistory(balance.NewHistory(balance.WithCapacity(s.historyCapacity))),
		engine.WithSurface(surfaceFunc(s.broadcast)),
		engine.WithClock(&serializedClock{mu: &s.mu}),
		engine.WithLogger(s.logger.Named("engine")),
	)

	snapshot, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "history restore failed, starting empty", logger.Any("error", err))
	} else if len(snapshot.Entries) > 0 {
		s.engine.SetBalanceHistory(snapshot.Entries, snapshot.TotalRuns)
		s.logger.Info(ctx, "restored balance history",
			logger.Int("entries", len(snapshot.Entries)),
			logger.Int("totalRuns", snapshot.TotalRuns),
		)
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.updateQueue = updatequeue.NewInMemoryQueue(
		updatequeue.WithCapacity(s.queueSize),
		updatequeue.WithBufferSize(s.queueSize),
	)
	s.worker = updateworker.NewInMemoryWorker(s.updateQueue, s,
		updateworker.WithName("apply"),
	)

	s.workerWG.Add(1)
	go func() {
		defer s.workerWG.Done()
		s.worker.Run(ctx)
	}()

	s.started = true
	s.logger.Info(ctx, "timeline service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("historyCapacity", s.historyCapacity),
		logger.String("mode", string(s.mode)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping timeline service...")

	if q, ok := s.updateQueue.(*updatequeue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.worker != nil {
		_ = s.worker.Shutdown(ctx)
	}
	s.workerWG.Wait()

	s.mu.Lock()
	s.engine.Destroy()
	s.mu.Unlock()

	s.subMu.Lock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.subMu.Unlock()

	s.logger.Info(ctx, "timeline service stopped")
}

// Enqueue submits a schedule update for asynchronous processing. A payload
// whose signature was already ingested is acknowledged without re-queueing.
// Returns false when the queue is full.
func (s *Service) Enqueue(ctx context.Context, schedule *timeline.Schedule, source string) bool {
	signature := timeline.Signature(schedule)
	if s.deduper.SeenAndRecord(ctx, signature) {
		s.logger.Debug(ctx, "duplicate schedule ingested, skipping",
			logger.String("source", source),
			logger.String("signature", signature),
		)
		return true
	}

	ok := s.updateQueue.Enqueue(ctx, updatequeue.Update{
		Schedule:   schedule,
		Source:     source,
		ReceivedAt: time.Now(),
	})
	if !ok {
		// Roll back the seen mark so a retry of the same payload can pass.
		s.deduper.Unrecord(ctx, signature)
		return false
	}
	metrics.UpdateQueueSize(s.updateQueue.Len(ctx))
	return true
}

// Apply consumes one queued schedule update: it replaces the engine's
// schedule, captures a balance snapshot, and persists the history when the
// snapshot was new. Apply runs only on the worker goroutine.
func (s *Service) Apply(ctx context.Context, u updatequeue.Update) error {
	s.mu.Lock()
	s.engine.Update(u.Schedule, "", s.engine.SelectedAgent())
	captured := s.engine.CaptureBalanceSnapshot(u.Schedule)
	entries := s.engine.HistoryEntries()
	totalRuns := s.engine.TotalRuns()
	s.mu.Unlock()

	s.logger.Debug(ctx, "applied schedule update",
		logger.String("source", u.Source),
		logger.Int("events", len(u.Schedule.Events)),
		logger.Bool("snapshotCaptured", captured),
	)

	if !captured {
		return nil
	}
	if err := s.store.Save(ctx, repository.Snapshot{
		Entries:   entries,
		TotalRuns: totalRuns,
	}); err != nil {
		// Persistence is best effort; the in-memory history stays intact.
		s.logger.Warn(ctx, "history save failed", logger.Any("error", err))
	}
	return nil
}

// RenderSVG returns the current frame encoded as SVG.
func (s *Service) RenderSVG(ctx context.Context) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ExportSVG()
}

// RenderPNG returns the current frame rasterized at the given scale. A
// non-positive scale falls back to the configured export scale.
func (s *Service) RenderPNG(ctx context.Context, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = s.exportScale
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ExportPNG(scale)
}

// History returns the buffered balance snapshots and the monotonic run
// counter.
func (s *Service) History(ctx context.Context) ([]balance.Entry, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.HistoryEntries(), s.engine.TotalRuns()
}

// Control applies one interaction command to the engine. Unknown actions
// return false.
func (s *Service) Control(ctx context.Context, cmd Command) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cmd.apply(s.engine)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"queueSize":       s.queueSize,
		"historyCapacity": s.historyCapacity,
	}

	if s.started {
		queueLen := s.updateQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["mode"] = string(s.engine.Mode())
		stats["hasData"] = s.engine.HasRenderableData()
		stats["historyLength"] = len(s.engine.HistoryEntries())
		stats["totalRuns"] = s.engine.TotalRuns()
		stats["playing"] = s.engine.Playing()
		stats["selectedAgent"] = s.engine.SelectedAgent()

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}

// Subscribe registers a live frame consumer. The returned channel carries
// SVG-encoded frames and is closed by Unsubscribe or Stop.
func (s *Service) Subscribe() (int, <-chan []byte) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	ch := make(chan []byte, subscriberBuffer)
	s.subscribers[id] = ch
	metrics.UpdateLiveClients(len(s.subscribers))
	return id, ch
}

// Unsubscribe removes a live frame consumer and closes its channel.
func (s *Service) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
		metrics.UpdateLiveClients(len(s.subscribers))
	}
}

// broadcast fans one rendered frame out to all live subscribers. Frames are
// dropped for subscribers whose buffers are full.
func (s *Service) broadcast(frame *render.Frame) {
	encoded := render.EncodeSVG(frame)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- encoded:
		default:
		}
	}
}

// surfaceFunc adapts a function to the render.Surface interface.
type surfaceFunc func(frame *render.Frame)

func (f surfaceFunc) Render(frame *render.Frame) {
	f(frame)
}

// serializedClock runs timer callbacks under the service mutex, so the
// engine's playback ticks and hover debounce never overlap a queued apply
// or an HTTP read.
type serializedClock struct {
	mu *sync.Mutex
}

func (c *serializedClock) Now() time.Time {
	return time.Now()
}

func (c *serializedClock) AfterFunc(d time.Duration, fn func()) func() {
	timer := time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		fn()
	})
	return func() { timer.Stop() }
}
