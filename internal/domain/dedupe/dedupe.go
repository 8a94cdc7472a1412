// Package dedupe tracks submission keys so a cohort submitted twice is ranked
// once. Each key maps to the job created by its first submission.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Deduper records which job a submission key was assigned to.
type Deduper interface {
	// Claim atomically assigns jobID to key unless key is already held. It
	// returns the job that holds the key and whether it was held before.
	Claim(ctx context.Context, key, jobID string) (string, bool)

	// Release forgets key so it can be claimed again. Used when an accepted
	// submission could not be enqueued.
	Release(ctx context.Context, key string)

	Size() int
}

type entry struct {
	key   string
	jobID string
}

// inMemoryDeduper keeps at most maxSize keys and evicts the oldest claim
// first. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		keys:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, key, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		return el.Value.(*entry).jobID, true //nolint:forcetypeassert // list holds only *entry
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.keys[key] = d.order.PushBack(&entry{key: key, jobID: jobID})
	return jobID, false
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Front()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.keys, el.Value.(*entry).key) //nolint:forcetypeassert // list holds only *entry
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
