// Package inflight serializes the submission pipeline per user: a second
// upload from the same credential is turned away while the first is still
// being validated and scored.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker records which users currently have a submission in the pipeline.
type Tracker interface {
	// Acquire atomically records userID as in-flight. It returns false if
	// the user already has a submission being processed.
	Acquire(ctx context.Context, userID string) bool

	// Release removes userID from the in-flight set. It must be called
	// once processing finishes, successfully or not.
	Release(ctx context.Context, userID string)

	// Size returns the number of users currently in flight.
	Size() int64
}

// inMemoryTracker implements Tracker with a mutex-guarded set. The set is
// tiny (one entry per concurrently submitting user), so no eviction is
// needed.
type inMemoryTracker struct {
	mu     sync.Mutex
	active map[string]struct{}
	size   atomic.Int64
}

// NewInMemoryTracker creates an empty tracker.
func NewInMemoryTracker() Tracker {
	return &inMemoryTracker{active: make(map[string]struct{})}
}

func (t *inMemoryTracker) Acquire(_ context.Context, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.active[userID]; busy {
		return false
	}
	t.active[userID] = struct{}{}
	t.size.Add(1)
	return true
}

func (t *inMemoryTracker) Release(_ context.Context, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[userID]; ok {
		delete(t.active, userID)
		t.size.Add(-1)
	}
}

func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}
