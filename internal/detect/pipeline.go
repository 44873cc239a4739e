package detect

import (
	"image/color"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueCapacity keeps at most two frames between capture and
// inference. Freshness beats completeness for a live camera feed, so the
// queue stays tiny and overflow discards the oldest frame.
const DefaultQueueCapacity = 2

// FrameQueue is the bounded producer/consumer queue between capture and
// inference. Offer never blocks: when the queue is full the oldest
// unconsumed frame is dropped to make room.
type FrameQueue struct {
	ch      chan Frame
	dropped atomic.Uint64

	closeOnce sync.Once
}

// NewFrameQueue creates a queue with the given capacity (minimum 1).
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &FrameQueue{ch: make(chan Frame, capacity)}
}

// Offer enqueues a frame without blocking, dropping the oldest queued
// frame under backpressure.
func (q *FrameQueue) Offer(f Frame) {
	for {
		select {
		case q.ch <- f:
			return
		default:
		}
		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}
	}
}

// Next blocks until a frame is available or the queue is closed.
func (q *FrameQueue) Next() (Frame, bool) {
	f, ok := <-q.ch
	return f, ok
}

// Close stops the queue. Pending frames are discarded by the consumer
// loop shutting down.
func (q *FrameQueue) Close() {
	q.closeOnce.Do(func() { close(q.ch) })
}

// Depth returns the number of frames currently queued.
func (q *FrameQueue) Depth() int { return len(q.ch) }

// Capacity returns the queue bound.
func (q *FrameQueue) Capacity() int { return cap(q.ch) }

// Dropped returns the number of frames discarded under backpressure.
func (q *FrameQueue) Dropped() uint64 { return q.dropped.Load() }

// Pipeline owns the frame queue and the single inference worker that
// drains it. The worker checks the state machine before every frame and
// discards frames unless detection is ACTIVE, so toggling off stops
// inference immediately without tearing down the model.
type Pipeline struct {
	queue   *FrameQueue
	sm      *StateMachine
	tracker *StabilityTracker

	detector atomic.Pointer[Detector]
	cfg      *atomic.Pointer[QualityConfig]

	// expected returns the identity-key -> expected-color table used by
	// the color-consistency filter. Called once per processed frame.
	expected func() map[string]color.RGBA

	// submit receives every snapshot produced by the tracker; the
	// dispatcher coalesces them for the presentation layer.
	submit func(Snapshot)

	// onCandidates, when set, receives the filtered candidates of every
	// processed frame. Called from the worker goroutine; used for the
	// live overlay, not for state.
	onCandidates func([]Candidate)

	processed atomic.Uint64
	wg        sync.WaitGroup
}

// NewPipeline wires the queue, state machine, tracker and snapshot sink.
func NewPipeline(capacity int, sm *StateMachine, tracker *StabilityTracker, cfg *atomic.Pointer[QualityConfig], expected func() map[string]color.RGBA, submit func(Snapshot)) *Pipeline {
	return &Pipeline{
		queue:    NewFrameQueue(capacity),
		sm:       sm,
		tracker:  tracker,
		cfg:      cfg,
		expected: expected,
		submit:   submit,
	}
}

// OnCandidates installs the per-frame candidate hook. Set before Start.
func (p *Pipeline) OnCandidates(fn func([]Candidate)) {
	p.onCandidates = fn
}

// SetDetector installs the loaded recognition backend. Called once per
// successful model load; the worker picks it up on the next frame.
func (p *Pipeline) SetDetector(d Detector) {
	p.detector.Store(&d)
}

// Queue exposes the frame queue for capture-side submission and stats.
func (p *Pipeline) Queue() *FrameQueue { return p.queue }

// Processed returns the number of frames that went through inference.
func (p *Pipeline) Processed() uint64 { return p.processed.Load() }

// Start launches the inference worker.
func (p *Pipeline) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop closes the queue and waits for the worker, at most for the given
// timeout. Returns false when the worker did not finish in time.
func (p *Pipeline) Stop(timeout time.Duration) bool {
	p.queue.Close()
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *Pipeline) run() {
	defer p.wg.Done()
	for {
		frame, ok := p.queue.Next()
		if !ok {
			return
		}
		if p.sm.Current() != StateActive {
			continue // captured but not processed while detection is off
		}
		dp := p.detector.Load()
		if dp == nil {
			continue
		}

		raw, err := (*dp).Detect(frame.Image)
		if err != nil {
			log.Printf("inference failed on frame %d: %v", frame.Seq, err)
			continue
		}

		cfg := p.cfg.Load()
		cands := FilterCandidates(raw, frame.CapturedAt, *cfg, p.expected())
		if p.onCandidates != nil {
			p.onCandidates(cands)
		}

		keys := make([]string, 0, len(cands))
		seen := make(map[string]bool, len(cands))
		for _, c := range cands {
			if !seen[c.Key] {
				seen[c.Key] = true
				keys = append(keys, c.Key)
			}
		}

		snap := p.tracker.Observe(keys, frame.CapturedAt)
		p.processed.Add(1)
		p.submit(snap)
	}
}
