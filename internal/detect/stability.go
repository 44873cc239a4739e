package detect

import (
	"sort"
	"sync"
	"time"
)

// Hysteresis defaults. A key becomes stable after being present in at
// least HitsToConfirm of the last HitWindow processed frames, and drops
// out again only after MissesToClear consecutive absent frames. The
// absence window is deliberately longer than the presence window so a
// part that is briefly occluded does not flicker out of the list.
const (
	DefaultHitWindow     = 5
	DefaultHitsToConfirm = 3
	DefaultMissesToClear = 8
)

// TrackerConfig holds the hysteresis constants for a StabilityTracker.
type TrackerConfig struct {
	HitWindow     int // N: rolling window length in frames
	HitsToConfirm int // K: presences within the window required to enter
	MissesToClear int // M: consecutive absences required to leave
}

func (c TrackerConfig) withDefaults() TrackerConfig {
	if c.HitWindow <= 0 {
		c.HitWindow = DefaultHitWindow
	}
	if c.HitsToConfirm <= 0 {
		c.HitsToConfirm = DefaultHitsToConfirm
	}
	if c.HitsToConfirm > c.HitWindow {
		c.HitsToConfirm = c.HitWindow
	}
	if c.MissesToClear <= 0 {
		c.MissesToClear = DefaultMissesToClear
	}
	return c
}

// Snapshot is the stable detection set derived from recent frames. It
// always carries the full set, never a diff, so applying it is idempotent
// and self-correcting even when an interval is missed.
type Snapshot struct {
	Seq      uint64
	At       time.Time
	Detected []string             // sorted identity keys currently stable
	Entered  map[string]time.Time // keys that became stable this frame
}

// Contains reports whether key is in the stable set.
func (s Snapshot) Contains(key string) bool {
	i := sort.SearchStrings(s.Detected, key)
	return i < len(s.Detected) && s.Detected[i] == key
}

type track struct {
	window    []bool // ring buffer of per-frame presence
	head      int
	misses    int
	stable    bool
	enteredAt time.Time
}

func (t *track) push(present bool) {
	t.window[t.head] = present
	t.head = (t.head + 1) % len(t.window)
}

func (t *track) hits() int {
	n := 0
	for _, p := range t.window {
		if p {
			n++
		}
	}
	return n
}

// StabilityTracker smooths per-frame candidate sets into a stable
// "currently detected" set. Observe runs on the inference worker;
// SetExcluded and Reset run on the engine control loop, hence the mutex.
type StabilityTracker struct {
	mu       sync.Mutex
	cfg      TrackerConfig
	tracks   map[string]*track
	excluded map[string]bool
	seq      uint64
}

// NewStabilityTracker creates a tracker. Zero config fields fall back to
// the package defaults.
func NewStabilityTracker(cfg TrackerConfig) *StabilityTracker {
	return &StabilityTracker{
		cfg:      cfg.withDefaults(),
		tracks:   make(map[string]*track),
		excluded: make(map[string]bool),
	}
}

// SetExcluded marks a key as exempt from tracking (manually marked or
// already fully found). An excluded key is dropped before evaluation and
// leaves the stable set on the next observed frame.
func (t *StabilityTracker) SetExcluded(key string, excluded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if excluded {
		t.excluded[key] = true
		delete(t.tracks, key)
	} else {
		delete(t.excluded, key)
	}
}

// Reset clears all tracks and exclusions (inventory reload).
func (t *StabilityTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracks = make(map[string]*track)
	t.excluded = make(map[string]bool)
}

// Observe records one processed frame's present identity keys and returns
// the resulting stable-set snapshot. Snapshots are monotonically
// sequenced so a late consumer can reject stale ones.
func (t *StabilityTracker) Observe(present []string, at time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool, len(present))
	for _, key := range present {
		if t.excluded[key] {
			continue
		}
		seen[key] = true
		if _, ok := t.tracks[key]; !ok {
			t.tracks[key] = &track{window: make([]bool, t.cfg.HitWindow)}
		}
	}

	entered := make(map[string]time.Time)
	for key, tr := range t.tracks {
		p := seen[key]
		tr.push(p)
		if p {
			tr.misses = 0
		} else {
			tr.misses++
		}

		switch {
		case !tr.stable && tr.hits() >= t.cfg.HitsToConfirm:
			tr.stable = true
			tr.enteredAt = at
			entered[key] = at
		case tr.stable && tr.misses >= t.cfg.MissesToClear:
			tr.stable = false
		}

		// Drop dead tracks so the map does not grow with every key ever seen.
		if !tr.stable && tr.misses >= t.cfg.MissesToClear && tr.hits() == 0 {
			delete(t.tracks, key)
		}
	}

	t.seq++
	snap := Snapshot{Seq: t.seq, At: at, Entered: entered}
	for key, tr := range t.tracks {
		if tr.stable {
			snap.Detected = append(snap.Detected, key)
		}
	}
	sort.Strings(snap.Detected)
	return snap
}
