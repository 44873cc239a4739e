// Package progress derives session statistics from found-part events:
// completion percentage, find rate and a time-to-finish estimate for
// the status bar.
package progress

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats is one snapshot of the session's sorting progress.
type Stats struct {
	Found      int
	Required   int
	Completion float64 // 0-1
	Elapsed    time.Duration

	// PartsPerHour is the recent find rate, 0 until two finds happened.
	PartsPerHour float64

	// Remaining estimates time to completion at the current rate; 0 when
	// no rate is available yet.
	Remaining time.Duration
}

// Tracker accumulates find events. Safe for concurrent use; the engine
// records from its control loop while the UI polls snapshots.
type Tracker struct {
	mu        sync.Mutex
	startedAt time.Time
	finds     []time.Time
	required  int
	found     int
}

// NewTracker starts a session clock for a set with the given total
// required part count.
func NewTracker(required int) *Tracker {
	return &Tracker{startedAt: time.Now(), required: required}
}

// Reset rebases the tracker on a freshly loaded set.
func (t *Tracker) Reset(required, found int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Now()
	t.finds = nil
	t.required = required
	t.found = found
}

// Record notes that the found counter moved to total at time at. Only
// increases count as find events; corrections downward just adjust the
// total.
func (t *Tracker) Record(total int, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total > t.found {
		for i := t.found; i < total; i++ {
			t.finds = append(t.finds, at)
		}
	}
	t.found = total
}

// Snapshot computes the current statistics.
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Found:    t.found,
		Required: t.required,
		Elapsed:  time.Since(t.startedAt),
	}
	if t.required > 0 {
		s.Completion = float64(t.found) / float64(t.required)
	}

	if len(t.finds) >= 2 {
		gaps := make([]float64, 0, len(t.finds)-1)
		for i := 1; i < len(t.finds); i++ {
			gaps = append(gaps, t.finds[i].Sub(t.finds[i-1]).Seconds())
		}
		meanGap := stat.Mean(gaps, nil)
		if meanGap > 0 {
			s.PartsPerHour = 3600 / meanGap
			left := t.required - t.found
			if left > 0 {
				s.Remaining = time.Duration(float64(left) * meanGap * float64(time.Second))
			}
		}
	}
	return s
}
