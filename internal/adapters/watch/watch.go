// Package watch reloads the schedule file when it changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/urchin/internal/domain/timeline"
	"github.com/okian/urchin/pkg/logger"
	"github.com/okian/urchin/pkg/metrics"
)

// debounceInterval coalesces the bursts of write events editors and
// generators produce for a single logical save.
const debounceInterval = 250 * time.Millisecond

// Enqueuer accepts decoded schedule updates.
type Enqueuer interface {
	Enqueue(ctx context.Context, schedule *timeline.Schedule, source string) bool
}

// Watcher feeds schedule file changes into the update queue.
type Watcher struct {
	path  string
	queue Enqueuer
	log   logger.Logger
}

// New creates a watcher for one schedule file.
func New(path string, q Enqueuer) *Watcher {
	return &Watcher{
		path:  path,
		queue: q,
		log:   logger.Get().Named("watch"),
	}
}

// Run loads the file once, then blocks watching for changes until ctx is
// canceled. The parent directory is watched rather than the file itself so
// atomic rename-into-place saves keep working.
func (w *Watcher) Run(ctx context.Context) error {
	w.load(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.log.Info(ctx, "watching schedule file", logger.String("path", w.path))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-reload:
			w.load(ctx)
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "watch error", logger.Error(err))
		}
	}
}

// load reads, decodes, and enqueues the current file contents. Decode
// failures are logged and skipped; the engine keeps its previous schedule.
func (w *Watcher) load(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn(ctx, "schedule file unreadable", logger.String("path", w.path), logger.Error(err))
		return
	}
	schedule, err := timeline.DecodeSchedule(data)
	if err != nil {
		metrics.RecordScheduleError()
		w.log.Warn(ctx, "schedule file malformed", logger.String("path", w.path), logger.Error(err))
		return
	}
	if !w.queue.Enqueue(ctx, schedule, "watch") {
		w.log.Warn(ctx, "update queue full, dropping file reload")
	}
}
