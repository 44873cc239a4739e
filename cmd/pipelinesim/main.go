// Command pipelinesim runs the full detection core headless with a
// scripted backend: parts from the inventory "appear" on camera one
// after another, with injected flicker, and the tool prints every
// checklist update the UI would have received.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"brick-scout/internal/detect"
	"brick-scout/internal/set"
	"brick-scout/pkg/geometry"
)

// scriptedDetector reports each inventory part for a fixed stretch of
// frames, one part after another, dropping every fourth frame to
// exercise the stability hysteresis.
type scriptedDetector struct {
	keys          []string
	framesPerPart int
	calls         atomic.Uint64
}

func (s *scriptedDetector) Detect(image.Image) ([]detect.RawDetection, error) {
	n := int(s.calls.Add(1)) - 1
	idx := n / s.framesPerPart
	if idx >= len(s.keys) {
		return nil, nil
	}
	if n%4 == 3 {
		return nil, nil // flicker: detector misses the part
	}
	return []detect.RawDetection{{
		Key:        s.keys[idx],
		Box:        geometry.NewRect(100, 100, 80, 60),
		Confidence: 0.9,
	}}, nil
}

func (s *scriptedDetector) Close() error { return nil }

func main() {
	inventory := flag.String("inventory", "", "Path to inventory CSV")
	frames := flag.Int("frames-per-part", 20, "Frames each part stays on camera")
	interval := flag.Duration("interval", 20*time.Millisecond, "Frame interval")
	batch := flag.Duration("batch", detect.DefaultBatchInterval, "UI batch interval")
	flag.Parse()

	if *inventory == "" {
		fmt.Println("Usage: pipelinesim -inventory <csv> [-frames-per-part N] [-interval d] [-batch d]")
		os.Exit(1)
	}

	inv, err := set.LoadCSV(*inventory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load inventory: %v\n", err)
		os.Exit(1)
	}

	keys := make([]string, 0, inv.Len())
	for _, p := range inv.Parts() {
		keys = append(keys, p.PartNumber)
	}
	script := &scriptedDetector{keys: keys, framesPerPart: *frames}

	cb := detect.Callbacks{
		OnStateChanged: func(st detect.State, reason string) {
			fmt.Printf("state: %s %s\n", st, reason)
		},
		OnDetectionSetChanged: func(set []string) {
			fmt.Printf("detected: [%s]\n", strings.Join(set, " "))
		},
		OnOrderingChanged: func(order []string) {
			fmt.Printf("ordering: [%s]\n", strings.Join(order, " "))
		},
	}

	eng, err := detect.NewEngine(inv, detect.Options{
		BatchInterval: *batch,
		Quality:       detect.DefaultQualityConfig(),
		Open:          func(string) (detect.Detector, error) { return script, nil },
	}, cb)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}
	eng.Start()

	// The loader only checks that the path exists; the scripted backend
	// ignores it, so the inventory file doubles as the model path.
	eng.StartLoad(*inventory)
	if !waitForState(eng, detect.StateReady, 5*time.Second) {
		fmt.Fprintln(os.Stderr, "Model never became ready")
		os.Exit(1)
	}
	eng.Toggle(true)
	if !waitForState(eng, detect.StateActive, time.Second) {
		fmt.Fprintln(os.Stderr, "Detection never became active")
		os.Exit(1)
	}

	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	total := *frames * (len(keys) + 1)
	for i := 0; i < total; i++ {
		eng.SubmitFrame(detect.Frame{
			Seq:        uint64(i + 1),
			Image:      img,
			CapturedAt: time.Now(),
		})
		time.Sleep(*interval)
	}

	eng.Toggle(false)
	time.Sleep(2 * *batch)

	stats := eng.PipelineStats()
	fmt.Printf("frames: %d processed, %d dropped\n", stats.FramesRun, stats.FramesDropped)
	eng.Stop(3 * time.Second)
}

func waitForState(eng *detect.Engine, want detect.State, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if eng.State() == want {
			return true
		}
		if eng.State() == detect.StateError {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
