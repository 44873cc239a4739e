package detect

import (
	"fmt"
	"image/color"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"brick-scout/internal/colormatch"
	"brick-scout/internal/set"
)

// Callbacks is the outbound presentation contract. Every callback fires
// from the engine control goroutine, never from a worker, so consumers
// may mutate widgets directly. Nil callbacks are skipped.
type Callbacks struct {
	// OnStateChanged reports every detection state transition together
	// with the error reason when the new state is StateError.
	OnStateChanged func(state State, reason string)

	// OnDetectionSetChanged delivers the full current stable set (sorted
	// identity keys), at most once per batch interval.
	OnDetectionSetChanged func(keys []string)

	// OnOrderingChanged delivers the new display order when it actually
	// changed.
	OnOrderingChanged func(order []string)

	// OnCountsChanged reports a found-counter change for one part.
	OnCountsChanged func(key string, found, required int)

	// OnStatus carries transient human-readable status lines (load
	// progress, load duration).
	OnStatus func(msg string)
}

// Options configures an Engine. Zero fields fall back to defaults.
type Options struct {
	QueueCapacity int
	BatchInterval time.Duration
	Tracker       TrackerConfig
	Quality       QualityConfig

	// Open creates the recognition backend for a model path. Required.
	Open func(path string) (Detector, error)

	// OnCandidates, when set, receives the filtered candidates of every
	// processed frame from the inference worker. For overlays only.
	OnCandidates func([]Candidate)
}

// Engine owns the detection pipeline end to end: the state machine, the
// model loader, the frame queue with its inference worker, the stability
// tracker and the batched dispatcher. Control requests (load, toggle,
// marking, counter changes) are posted to the control loop and applied
// there, which keeps the inventory single-writer and the state machine
// free of cross-goroutine mutation.
type Engine struct {
	opts Options
	cb   Callbacks

	sm         *StateMachine
	loader     *ModelLoader
	tracker    *StabilityTracker
	dispatcher *Dispatcher
	pipeline   *Pipeline

	quality  atomic.Pointer[QualityConfig]
	expected atomic.Pointer[map[string]color.RGBA]

	inv atomic.Pointer[set.Inventory]

	// Control-loop-owned fields. Touched only from run() and, after the
	// loop has been joined, from Stop.
	detector  Detector
	lastOrder []string

	commands chan func()
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewEngine creates an engine for the given inventory. The inventory may
// be empty and replaced later via LoadInventory.
func NewEngine(inv *set.Inventory, opts Options, cb Callbacks) (*Engine, error) {
	if opts.Open == nil {
		return nil, fmt.Errorf("engine: Open backend function is required")
	}
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = DefaultQueueCapacity
	}
	if opts.BatchInterval <= 0 {
		opts.BatchInterval = DefaultBatchInterval
	}
	if err := opts.Quality.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		opts:       opts,
		cb:         cb,
		sm:         NewStateMachine(),
		loader:     NewModelLoader(opts.Open),
		tracker:    NewStabilityTracker(opts.Tracker),
		dispatcher: NewDispatcher(),
		commands:   make(chan func(), 64),
		stop:       make(chan struct{}),
	}
	q := opts.Quality
	e.quality.Store(&q)

	e.inv.Store(inv)
	e.pipeline = NewPipeline(opts.QueueCapacity, e.sm, e.tracker,
		&e.quality, e.expectedColors, e.dispatcher.Submit)
	if opts.OnCandidates != nil {
		e.pipeline.OnCandidates(opts.OnCandidates)
	}
	e.installInventory(inv)
	return e, nil
}

// Start launches the inference worker and the control loop.
func (e *Engine) Start() {
	e.pipeline.Start()
	e.wg.Add(1)
	go e.run()
}

// Stop shuts the engine down, waiting at most timeout for the workers to
// finish. The loaded model, if any, is closed.
func (e *Engine) Stop(timeout time.Duration) {
	close(e.stop)
	e.wg.Wait()
	if !e.pipeline.Stop(timeout) {
		log.Printf("inference worker did not stop within %s", timeout)
	}
	if e.detector != nil {
		if err := e.detector.Close(); err != nil {
			log.Printf("close detector: %v", err)
		}
	}
}

// State returns the current detection state. Safe from any goroutine.
func (e *Engine) State() State { return e.sm.Current() }

// StateReason returns the failure reason while in StateError.
func (e *Engine) StateReason() string { return e.sm.Reason() }

// Quality returns the active filter configuration snapshot.
func (e *Engine) Quality() QualityConfig { return *e.quality.Load() }

// SetQualityConfig validates and atomically installs a new filter
// configuration. It takes effect on the next filter pass; no restart and
// no state transition happen. On a validation error the previous snapshot
// stays in effect.
func (e *Engine) SetQualityConfig(q QualityConfig) error {
	if err := q.Validate(); err != nil {
		return err
	}
	e.quality.Store(&q)
	return nil
}

// SubmitFrame hands a captured frame to the pipeline. Frames are only
// queued while detection is ACTIVE; otherwise the frame is shown by the
// caller but never processed. Never blocks.
func (e *Engine) SubmitFrame(f Frame) {
	if e.sm.Current() != StateActive {
		return
	}
	e.pipeline.Queue().Offer(f)
}

// StartLoad requests a model load. A request while already loading, or
// in any state other than OFF/ERROR, is a no-op.
func (e *Engine) StartLoad(path string) {
	e.post(func() {
		if !e.sm.StartLoad() {
			return
		}
		e.loader.Start(path)
		e.fireStateChanged()
	})
}

// Toggle requests detection on or off. Rejected (no-op) unless the state
// machine allows it: on requires READY, off requires ACTIVE.
func (e *Engine) Toggle(on bool) {
	e.post(func() {
		changed := false
		if on {
			changed = e.sm.ToggleOn()
		} else {
			changed = e.sm.ToggleOff()
		}
		if changed {
			e.fireStateChanged()
		}
	})
}

// SetManuallyMarked flags a part as manually found (or clears the flag).
// A marked part is excluded from the next tracker pass onward and its
// DetectedNow flag is cleared immediately.
func (e *Engine) SetManuallyMarked(key string, marked bool) {
	e.post(func() {
		if err := e.Inventory().SetManuallyMarked(key, marked); err != nil {
			log.Printf("mark %s: %v", key, err)
			return
		}
		e.syncExclusion(key)
		e.refreshOrdering()
	})
}

// AdjustFound changes a part's found counter by delta (clamped to the
// valid range). Completing a part excludes it from detection like a
// manual mark does.
func (e *Engine) AdjustFound(key string, delta int) {
	e.post(func() {
		n, err := e.Inventory().AdjustFound(key, delta)
		if err != nil {
			log.Printf("adjust %s: %v", key, err)
			return
		}
		e.syncExclusion(key)
		if p, ok := e.Inventory().Part(key); ok && e.cb.OnCountsChanged != nil {
			e.cb.OnCountsChanged(key, n, p.Required)
		}
		e.refreshOrdering()
	})
}

// LoadInventory replaces the tracked inventory, resetting all detection
// state derived from the old one.
func (e *Engine) LoadInventory(inv *set.Inventory) {
	e.post(func() {
		e.inv.Store(inv)
		e.tracker.Reset()
		e.dispatcher.Reset()
		e.installInventory(inv)
		e.lastOrder = set.Reorder(inv.Parts())
		if e.cb.OnOrderingChanged != nil {
			e.cb.OnOrderingChanged(e.lastOrder)
		}
		if e.cb.OnDetectionSetChanged != nil {
			e.cb.OnDetectionSetChanged(nil)
		}
	})
}

// Inventory returns the currently tracked inventory.
func (e *Engine) Inventory() *set.Inventory { return e.inv.Load() }

// Stats is a snapshot of pipeline throughput counters.
type Stats struct {
	QueueDepth    int
	QueueCapacity int
	FramesDropped uint64
	FramesRun     uint64
}

// PipelineStats returns current queue and worker counters.
func (e *Engine) PipelineStats() Stats {
	q := e.pipeline.Queue()
	return Stats{
		QueueDepth:    q.Depth(),
		QueueCapacity: q.Capacity(),
		FramesDropped: q.Dropped(),
		FramesRun:     e.pipeline.Processed(),
	}
}

func (e *Engine) post(fn func()) {
	select {
	case e.commands <- fn:
	case <-e.stop:
	}
}

func (e *Engine) run() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.opts.BatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case fn := <-e.commands:
			fn()
		case res := <-e.loader.Results():
			e.onLoadResult(res)
		case <-ticker.C:
			e.onTick()
		}
	}
}

func (e *Engine) onLoadResult(res LoadResult) {
	if res.Err != nil {
		log.Printf("model load failed: %v", res.Err)
		if e.sm.LoadFailed(res.Err.Error()) {
			e.fireStateChanged()
		}
		return
	}
	e.detector = res.Detector
	e.pipeline.SetDetector(res.Detector)
	if e.sm.LoadSucceeded() {
		e.fireStateChanged()
		e.status(fmt.Sprintf("Model loaded (%.1fs)", res.Elapsed.Seconds()))
	}
}

// onTick runs once per batch interval on the control loop: it is the only
// place detection results are applied to the inventory.
func (e *Engine) onTick() {
	if e.sm.Current() == StateLoading {
		e.status(fmt.Sprintf("Loading model… %.0fs", e.loader.Elapsed().Seconds()))
	}

	snap, ok := e.dispatcher.Take()
	if !ok {
		return
	}

	detected := make(map[string]bool, len(snap.Detected))
	for _, k := range snap.Detected {
		detected[k] = true
	}
	changed := e.Inventory().ApplyDetections(detected, snap.Entered)

	if e.cb.OnDetectionSetChanged != nil {
		e.cb.OnDetectionSetChanged(snap.Detected)
	}
	if changed {
		e.refreshOrdering()
	}
}

func (e *Engine) refreshOrdering() {
	order := set.Reorder(e.Inventory().Parts())
	if set.SameOrder(order, e.lastOrder) {
		return
	}
	e.lastOrder = order
	if e.cb.OnOrderingChanged != nil {
		e.cb.OnOrderingChanged(order)
	}
}

// syncExclusion keeps the tracker's exclusion set in step with a part's
// manual mark and completion status.
func (e *Engine) syncExclusion(key string) {
	p, ok := e.Inventory().Part(key)
	if !ok {
		return
	}
	e.tracker.SetExcluded(key, p.Excluded())
}

// installInventory seeds exclusions and the expected-color table from a
// freshly attached inventory.
func (e *Engine) installInventory(inv *set.Inventory) {
	for _, p := range inv.Parts() {
		if p.Excluded() {
			e.tracker.SetExcluded(p.PartNumber, true)
		}
	}
	expected := colormatch.ExpectedColors(inv.Colors())
	e.expected.Store(&expected)
}

func (e *Engine) expectedColors() map[string]color.RGBA {
	m := e.expected.Load()
	if m == nil {
		return nil
	}
	return *m
}

func (e *Engine) fireStateChanged() {
	if e.cb.OnStateChanged != nil {
		e.cb.OnStateChanged(e.sm.Current(), e.sm.Reason())
	}
}

func (e *Engine) status(msg string) {
	if e.cb.OnStatus != nil {
		e.cb.OnStatus(msg)
	}
}
