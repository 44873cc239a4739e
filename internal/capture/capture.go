// Package capture reads frames from a camera and fans them out to the
// display and the detection pipeline. Frame pacing and reconnection
// live here so the rest of the app only ever sees decoded images.
package capture

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"brick-scout/internal/detect"
)

// DefaultFrameInterval paces the capture loop at roughly 15 fps, plenty
// for both preview and inference while keeping CPU in check.
const DefaultFrameInterval = 66 * time.Millisecond

// maxReopenDelay caps the reconnect backoff after repeated read
// failures.
const maxReopenDelay = 5 * time.Second

// Sink receives every captured frame. It must not block; slow consumers
// drop frames on their own side.
type Sink func(detect.Frame)

// Source owns one camera device and its capture goroutine.
type Source struct {
	deviceID int
	interval time.Duration
	sinks    []Sink

	seq    atomic.Uint64
	faults atomic.Uint64

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewSource creates a capture source for the given device. Sinks are
// called in order for every frame, from the capture goroutine.
func NewSource(deviceID int, interval time.Duration, sinks ...Sink) *Source {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Source{
		deviceID: deviceID,
		interval: interval,
		sinks:    sinks,
		stop:     make(chan struct{}),
	}
}

// Start launches the capture loop. The device is opened inside the
// loop, so a camera that is briefly unavailable at startup is retried
// rather than fatal.
func (s *Source) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop shuts the capture loop down and releases the device.
func (s *Source) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// Faults returns the number of read failures seen so far.
func (s *Source) Faults() uint64 { return s.faults.Load() }

func (s *Source) run() {
	defer s.wg.Done()

	delay := s.interval
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		cam, err := gocv.OpenVideoCapture(s.deviceID)
		if err != nil {
			s.fault(&detect.CaptureFault{Source: fmt.Sprintf("camera %d", s.deviceID), Err: err})
			if !s.sleep(delay) {
				return
			}
			delay = backoff(delay)
			continue
		}
		delay = s.interval

		if !s.readLoop(cam) {
			cam.Close()
			return
		}
		cam.Close()
		// Fell out of the read loop on a fault; reopen the device.
		if !s.sleep(delay) {
			return
		}
		delay = backoff(delay)
	}
}

// readLoop reads frames until stop (returns false) or until the device
// misbehaves badly enough to warrant a reopen (returns true).
func (s *Source) readLoop(cam *gocv.VideoCapture) bool {
	mat := gocv.NewMat()
	defer mat.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	misreads := 0
	for {
		select {
		case <-s.stop:
			return false
		case <-ticker.C:
		}

		if ok := cam.Read(&mat); !ok || mat.Empty() {
			misreads++
			s.fault(&detect.CaptureFault{
				Source: fmt.Sprintf("camera %d", s.deviceID),
				Err:    fmt.Errorf("empty frame"),
			})
			if misreads >= 10 {
				return true
			}
			continue
		}
		misreads = 0

		img, err := mat.ToImage()
		if err != nil {
			s.fault(&detect.CaptureFault{Source: fmt.Sprintf("camera %d", s.deviceID), Err: err})
			continue
		}

		f := detect.Frame{
			Seq:        s.seq.Add(1),
			Image:      img,
			CapturedAt: time.Now(),
		}
		for _, sink := range s.sinks {
			sink(f)
		}
	}
}

func (s *Source) fault(err error) {
	s.faults.Add(1)
	log.Printf("capture: %v", err)
}

func (s *Source) sleep(d time.Duration) bool {
	select {
	case <-s.stop:
		return false
	case <-time.After(d):
		return true
	}
}

func backoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxReopenDelay {
		d = maxReopenDelay
	}
	return d
}
