// Package video shows the live camera feed with detection overlays.
package video

import (
	"image"
	"image/draw"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"

	"brick-scout/internal/detect"
	"brick-scout/pkg/colorutil"
	"brick-scout/pkg/geometry"
)

// Display renders captured frames and draws hollow rectangles around
// the currently reported detections.
type Display struct {
	img *fynecanvas.Image

	mu    sync.Mutex
	boxes []geometry.Rect
}

// NewDisplay creates an empty video display.
func NewDisplay() *Display {
	img := fynecanvas.NewImageFromImage(nil)
	img.FillMode = fynecanvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(480, 360))
	return &Display{img: img}
}

// CanvasObject returns the displayable widget.
func (d *Display) CanvasObject() fyne.CanvasObject { return d.img }

// SetBoxes replaces the overlay rectangles drawn on subsequent frames.
func (d *Display) SetBoxes(boxes []geometry.Rect) {
	d.mu.Lock()
	d.boxes = boxes
	d.mu.Unlock()
}

// ShowFrame displays one captured frame. Called from the capture
// goroutine; the overlay is burned into a copy so the original image
// stays untouched for the pipeline.
func (d *Display) ShowFrame(f detect.Frame) {
	d.mu.Lock()
	boxes := d.boxes
	d.mu.Unlock()

	shown := f.Image
	if len(boxes) > 0 {
		shown = drawBoxes(f.Image, boxes)
	}
	d.img.Image = shown
	d.img.Refresh()
}

// drawBoxes copies the frame and strokes each rectangle in the overlay
// color, two pixels wide.
func drawBoxes(src image.Image, boxes []geometry.Rect) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)

	c := colorutil.Green
	for _, box := range boxes {
		r := image.Rect(int(box.X), int(box.Y), int(box.X+box.Width), int(box.Y+box.Height)).Intersect(b)
		if r.Empty() {
			continue
		}
		for t := 0; t < 2; t++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				dst.SetRGBA(x, r.Min.Y+t, c)
				dst.SetRGBA(x, r.Max.Y-1-t, c)
			}
			for y := r.Min.Y; y < r.Max.Y; y++ {
				dst.SetRGBA(r.Min.X+t, y, c)
				dst.SetRGBA(r.Max.X-1-t, y, c)
			}
		}
	}
	return dst
}
