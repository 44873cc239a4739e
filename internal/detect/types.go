// Package detect implements the real-time part detection pipeline: model
// loading, frame processing, candidate filtering, temporal stabilization
// and batched delivery of results to the presentation layer.
package detect

import (
	"image"
	"image/color"
	"time"

	"brick-scout/pkg/geometry"
)

// Frame is one captured video frame on its way through the pipeline.
// The image must not be mutated after the frame is submitted.
type Frame struct {
	Seq        uint64
	Image      image.Image
	CapturedAt time.Time
}

// RawDetection is a single detector output before quality filtering.
type RawDetection struct {
	Key        string // identity key (part number)
	Box        geometry.Rect
	Confidence float64

	// Color is the dominant color the backend sampled inside Box.
	// A zero Alpha means the backend did not sample a color and the
	// color-consistency filter skips this detection.
	Color color.RGBA
}

// Candidate is a filtered detection. Candidates live for exactly one
// pipeline pass and are never persisted.
type Candidate struct {
	Key        string
	Box        geometry.Rect
	Confidence float64
	At         time.Time
}

// Detector turns a frame into raw detections. The pipeline calls Detect
// from a single inference worker goroutine; implementations must not
// retain the image. A detector error never stops the pipeline, it just
// yields an empty result for that frame.
type Detector interface {
	Detect(img image.Image) ([]RawDetection, error)
	Close() error
}
