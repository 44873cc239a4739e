package detect

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"brick-scout/internal/colormatch"
	"brick-scout/pkg/geometry"
)

// ContourDetector is the classical fallback backend: edge detection and
// contour analysis find candidate regions, the dominant color of each
// region is matched against the inventory's expected colors, and the
// color similarity doubles as the confidence score. It needs no trained
// model and exists for sets without one.
type ContourDetector struct {
	colors func() map[string]color.RGBA

	mu     sync.Mutex
	closed bool
}

// NewContourDetector creates the classical backend. colors supplies the
// current identity-key -> expected-color table on every frame, so an
// inventory swap takes effect without reopening the backend.
func NewContourDetector(colors func() map[string]color.RGBA) *ContourDetector {
	return &ContourDetector{colors: colors}
}

// Detect segments the frame into candidate regions and labels each one
// with the inventory part whose expected color is nearest.
func (d *ContourDetector) Detect(img image.Image) ([]RawDetection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("detector is closed")
	}

	expected := d.colors()
	if len(expected) == 0 {
		return nil, nil
	}

	mat, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{5, 5}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	// Connect broken brick outlines before contour extraction.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	imgArea := float64(mat.Cols() * mat.Rows())

	var out []RawDetection
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < 16 || area > imgArea*0.5 {
			continue
		}

		r := gocv.BoundingRect(contour)
		dominant := colormatch.Dominant(img, r)
		key, similarity, ok := colormatch.Nearest(dominant, expected)
		if !ok {
			continue
		}

		out = append(out, RawDetection{
			Key:        key,
			Box:        geometry.NewRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())),
			Confidence: similarity,
			Color:      dominant,
		})
	}
	return out, nil
}

// Close marks the backend closed. It holds no native resources between
// frames.
func (d *ContourDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// OpenBackend returns a model-opening function that picks the backend
// from the file extension: trained network formats go through the DNN
// module, anything else gets the classical contour backend. colors
// feeds the contour backend's expected-color matching.
func OpenBackend(colors func() map[string]color.RGBA) func(path string) (Detector, error) {
	return func(path string) (Detector, error) {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pb", ".onnx", ".caffemodel":
			return OpenDNN(path)
		default:
			return NewContourDetector(colors), nil
		}
	}
}
