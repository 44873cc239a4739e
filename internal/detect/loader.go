package detect

import (
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// LoadResult is delivered on the loader's result channel when a
// background load finishes.
type LoadResult struct {
	Detector Detector
	Err      error // *LoadError on failure
	Elapsed  time.Duration
}

// ModelLoader loads a recognition backend off the control thread. A load
// in progress cannot be cancelled by the user; only process shutdown
// abandons it. Loads are expected to be bounded (tens of seconds), so the
// UI shows elapsed time instead of offering an abort.
type ModelLoader struct {
	open func(path string) (Detector, error)

	mu        sync.Mutex
	inFlight  bool
	startedAt time.Time

	results chan LoadResult
	loads   atomic.Uint64
}

// NewModelLoader creates a loader around an open function (the gocv DNN
// backend, the contour backend, or a test fake).
func NewModelLoader(open func(path string) (Detector, error)) *ModelLoader {
	return &ModelLoader{
		open:    open,
		results: make(chan LoadResult, 1),
	}
}

// Results delivers exactly one LoadResult per started load.
func (l *ModelLoader) Results() <-chan LoadResult { return l.results }

// Elapsed returns how long the current load has been running, or 0 when
// no load is in flight.
func (l *ModelLoader) Elapsed() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.inFlight {
		return 0
	}
	return time.Since(l.startedAt)
}

// Loads returns the number of loads that have completed.
func (l *ModelLoader) Loads() uint64 { return l.loads.Load() }

// Start begins loading in a background goroutine. Returns false when a
// load is already in flight (the second call is a no-op, so two quick
// startLoad requests still produce exactly one result).
func (l *ModelLoader) Start(path string) bool {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return false
	}
	l.inFlight = true
	l.startedAt = time.Now()
	l.mu.Unlock()

	go l.load(path)
	return true
}

func (l *ModelLoader) load(path string) {
	start := time.Now()
	res := LoadResult{}

	defer func() {
		// A panicking backend must not take the process down; it becomes
		// a load failure like any other.
		if r := recover(); r != nil {
			res = LoadResult{
				Err:     &LoadError{Path: path, Reason: fmt.Sprintf("backend panic: %v", r)},
				Elapsed: time.Since(start),
			}
		}
		l.mu.Lock()
		l.inFlight = false
		l.mu.Unlock()
		l.loads.Add(1)
		l.results <- res
	}()

	if _, err := os.Stat(path); err != nil {
		res = LoadResult{
			Err:     &LoadError{Path: path, Reason: "model file not found", Err: err},
			Elapsed: time.Since(start),
		}
		return
	}

	log.Printf("Loading model from %s", path)
	det, err := l.open(path)
	elapsed := time.Since(start)
	if err != nil {
		if _, ok := err.(*LoadError); !ok {
			err = &LoadError{Path: path, Reason: "backend failed to open model", Err: err}
		}
		res = LoadResult{Err: err, Elapsed: elapsed}
		return
	}
	if det == nil {
		res = LoadResult{
			Err:     &LoadError{Path: path, Reason: "backend returned no model handle"},
			Elapsed: elapsed,
		}
		return
	}

	log.Printf("Model loaded in %.2fs", elapsed.Seconds())
	res = LoadResult{Detector: det, Elapsed: elapsed}
}
