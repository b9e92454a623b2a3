// Package dedupe tracks job ids so repeated submissions are recognized.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 50000

// Deduper records seen job IDs to ensure at-most-once submission.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a later submission is accepted again. Used when
	// a job was recorded but could not be enqueued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps ids in insertion order. When bounded, the oldest id
// is evicted first; an evicted id is treated as new if submitted again.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int        // 0 or negative = unbounded
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 {
		for d.order.Len() >= d.maxSize {
			d.evictOldest()
		}
	}
	d.seen[id] = d.order.PushBack(id)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(string))
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
