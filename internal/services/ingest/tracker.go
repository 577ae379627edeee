package ingest

import (
	coreingest "ai-concierge/internal/core/ingest"
	"context"
	"sync"
)

// Tracker keeps the latest run in memory and forwards every transition to
// the persistent recorder, if any.
type Tracker struct {
	mu   sync.RWMutex
	last *coreingest.Result
	next coreingest.Recorder
}

func NewTracker(next coreingest.Recorder) *Tracker {
	return &Tracker{next: next}
}

func (t *Tracker) Record(ctx context.Context, res coreingest.Result) error {
	t.mu.Lock()
	r := res
	t.last = &r
	t.mu.Unlock()

	if t.next == nil {
		return nil
	}
	return t.next.Record(ctx, res)
}

// Last returns the latest recorded run of this process.
func (t *Tracker) Last() (coreingest.Result, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return coreingest.Result{}, false
	}
	return *t.last, true
}
