// Package dedupe tracks recently seen schedule signatures so repeated
// submissions of the same payload are acknowledged without re-processing.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen schedule signatures for at-most-once ingestion.
type Deduper interface {
	// SeenAndRecord atomically checks if signature was seen and records it
	// if not. Returns true if it was already seen, false if it was newly
	// recorded. Thread-safe and atomic.
	SeenAndRecord(ctx context.Context, signature string) bool

	// Unrecord removes a signature from the seen list, allowing a retry.
	// Used when a payload was marked as seen but could not be enqueued.
	Unrecord(ctx context.Context, signature string)

	Size() int64
}

// defaultMaxSize bounds the tracker. Signatures churn with every generator
// run, so a small window is enough.
const defaultMaxSize = 512

// node is one entry of the eviction list.
type node struct {
	signature string
	next      *node
}

func (n *node) reset() {
	n.signature = ""
	n.next = nil
}

// inMemoryDeduper implements Deduper with a map plus a linked list evicted
// newest-first once full. Eviction order barely matters at this size; the
// list just keeps the bound cheap to enforce.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*node)
	d.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return d
}

// SeenAndRecord atomically checks if signature was seen and records it if
// not. Empty signatures are never recorded and never match.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, signature string) bool {
	if signature == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[signature]; exists {
		return true
	}

	if len(d.seen) >= d.maxSize {
		d.evict()
	}

	n := d.nodePool.Get().(*node)
	n.signature = signature
	n.next = d.head
	d.head = n
	d.seen[signature] = n
	d.size.Add(1)
	return false
}

// Unrecord removes a signature from the seen list, allowing a retry.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, signature string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.seen[signature]
	if !exists {
		return
	}
	delete(d.seen, signature)

	if d.head == n {
		d.head = n.next
	} else {
		current := d.head
		for current != nil && current.next != n {
			current = current.next
		}
		if current != nil {
			current.next = n.next
		}
	}

	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}

// Size returns the number of tracked signatures.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// evict drops the most recently added signature. Callers hold the mutex.
func (d *inMemoryDeduper) evict() {
	if d.head == nil {
		return
	}
	n := d.head
	d.head = n.next
	delete(d.seen, n.signature)
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}
