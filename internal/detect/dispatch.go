package detect

import (
	"sync"
	"time"
)

// DefaultBatchInterval caps presentation updates to 10Hz regardless of
// the capture or inference rate.
const DefaultBatchInterval = 100 * time.Millisecond

// Dispatcher coalesces high-frequency stability snapshots into at most
// one presentation update per batch interval. It holds a single pending
// slot: when a newer snapshot arrives before the timer fires, it simply
// overwrites the older one (last-write-wins). Because every snapshot
// carries the full stable set, skipping intermediates loses nothing.
//
// Submit is safe from the inference worker; Take is called only from the
// engine control loop on its batch tick, which keeps snapshot application
// single-writer and strictly ordered.
type Dispatcher struct {
	mu      sync.Mutex
	pending *Snapshot
	applied uint64 // Seq of the last snapshot handed out
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Submit stores a snapshot for the next flush. Stale snapshots (sequence
// not newer than the pending or last applied one) are discarded, so
// snapshots are never applied out of order.
func (d *Dispatcher) Submit(s Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.Seq <= d.applied {
		return
	}
	if d.pending != nil && s.Seq <= d.pending.Seq {
		return
	}
	d.pending = &s
}

// Take removes and returns the pending snapshot, if any.
func (d *Dispatcher) Take() (Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Snapshot{}, false
	}
	s := *d.pending
	d.pending = nil
	d.applied = s.Seq
	return s, true
}

// Reset drops any pending snapshot and the sequence watermark
// (inventory reload).
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	d.applied = 0
}
