// Command detecttest runs one frame through a recognition backend and
// the quality filter and prints what survives.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"brick-scout/internal/colormatch"
	"brick-scout/internal/detect"
	"brick-scout/internal/set"
)

func main() {
	imgPath := flag.String("image", "", "Path to test image")
	model := flag.String("model", "", "Path to recognition model (blank for contour backend)")
	inventory := flag.String("inventory", "", "Path to inventory CSV (expected colors)")
	confidence := flag.Float64("confidence", 0, "Override confidence threshold")
	raw := flag.Bool("raw", false, "Also print unfiltered detections")
	flag.Parse()

	if *imgPath == "" {
		fmt.Println("Usage: detecttest -image <frame> [-model <model>] [-inventory <csv>] [-confidence <t>] [-raw]")
		os.Exit(1)
	}

	f, err := os.Open(*imgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode image: %v\n", err)
		os.Exit(1)
	}

	expected := map[string]string{}
	if *inventory != "" {
		inv, err := set.LoadCSV(*inventory)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load inventory: %v\n", err)
			os.Exit(1)
		}
		expected = inv.Colors()
		fmt.Printf("Inventory: %d part types\n", inv.Len())
	}
	colors := colormatch.ExpectedColors(expected)

	var det detect.Detector
	if *model != "" {
		det, err = detect.OpenDNN(*model)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open backend: %v\n", err)
			os.Exit(1)
		}
	} else {
		det = detect.NewContourDetector(func() map[string]color.RGBA { return colors })
	}
	defer det.Close()

	start := time.Now()
	detections, err := det.Detect(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("=== %d raw detections in %v ===\n", len(detections), time.Since(start).Round(time.Millisecond))

	if *raw {
		for _, d := range detections {
			fmt.Printf("  %-12s conf=%.2f box=(%.0f,%.0f %.0fx%.0f)\n",
				d.Key, d.Confidence, d.Box.X, d.Box.Y, d.Box.Width, d.Box.Height)
		}
	}

	cfg := detect.DefaultQualityConfig()
	if *confidence > 0 {
		cfg.Confidence = *confidence
	}
	cands := detect.FilterCandidates(detections, time.Now(), cfg, colors)

	fmt.Printf("=== %d candidates after filtering (confidence >= %.2f) ===\n", len(cands), cfg.Confidence)
	for _, c := range cands {
		fmt.Printf("  %-12s conf=%.2f box=(%.0f,%.0f %.0fx%.0f)\n",
			c.Key, c.Confidence, c.Box.X, c.Box.Y, c.Box.Width, c.Box.Height)
	}
}
