// Package colormatch resolves inventory color names to RGB values and
// matches sampled region colors against them. It backs the filter's
// color-consistency check and the classical contour detector.
package colormatch

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"

	"brick-scout/pkg/colorutil"
)

// palette maps the common brick color names to reference RGB values.
// Names not listed here fall back to the SVG 1.1 color table.
var palette = map[string]color.RGBA{
	"black":             {R: 0x05, G: 0x13, B: 0x1D, A: 0xFF},
	"white":             {R: 0xF4, G: 0xF4, B: 0xF4, A: 0xFF},
	"red":               {R: 0xB4, G: 0x00, B: 0x00, A: 0xFF},
	"blue":              {R: 0x1E, G: 0x5A, B: 0xA8, A: 0xFF},
	"green":             {R: 0x00, G: 0x85, B: 0x2B, A: 0xFF},
	"yellow":            {R: 0xFA, G: 0xC8, B: 0x0A, A: 0xFF},
	"orange":            {R: 0xD6, G: 0x76, B: 0x23, A: 0xFF},
	"tan":               {R: 0xDE, G: 0xC6, B: 0x9C, A: 0xFF},
	"brown":             {R: 0x5F, G: 0x31, B: 0x09, A: 0xFF},
	"reddish brown":     {R: 0x5F, G: 0x31, B: 0x09, A: 0xFF},
	"lime":              {R: 0xA5, G: 0xCA, B: 0x18, A: 0xFF},
	"dark gray":         {R: 0x51, G: 0x5C, B: 0x5D, A: 0xFF},
	"light gray":        {R: 0x8A, G: 0x92, B: 0x8D, A: 0xFF},
	"light bluish gray": {R: 0xA3, G: 0xA2, B: 0xA9, A: 0xFF},
	"dark bluish gray":  {R: 0x63, G: 0x5F, B: 0x61, A: 0xFF},
	"dark blue":         {R: 0x14, G: 0x32, B: 0x5E, A: 0xFF},
	"dark red":          {R: 0x72, G: 0x0E, B: 0x0F, A: 0xFF},
	"dark green":        {R: 0x18, G: 0x46, B: 0x32, A: 0xFF},
	"bright green":      {R: 0x10, G: 0xCB, B: 0x31, A: 0xFF},
	"pink":              {R: 0xF7, G: 0x85, B: 0xB1, A: 0xFF},
	"purple":            {R: 0x81, G: 0x00, B: 0x7B, A: 0xFF},
	"magenta":           {R: 0xB3, G: 0x1C, B: 0x75, A: 0xFF},
	"cyan":              {R: 0x00, G: 0xB1, B: 0xC4, A: 0xFF},
}

// ByName resolves a color name to its reference RGB value. The brick
// palette is consulted first, then the SVG color table.
func ByName(name string) (color.RGBA, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := palette[key]; ok {
		return c, true
	}
	if c, ok := colornames.Map[strings.ReplaceAll(key, " ", "")]; ok {
		return c, true
	}
	return color.RGBA{}, false
}

// ExpectedColors builds the identity-key -> reference-color table from an
// inventory's key -> color-name mapping. Keys whose color name cannot be
// resolved are left out; the filter skips the check for them.
func ExpectedColors(colors map[string]string) map[string]color.RGBA {
	out := make(map[string]color.RGBA, len(colors))
	for key, name := range colors {
		if c, ok := ByName(name); ok {
			out[key] = c
		}
	}
	return out
}

// Nearest returns the candidate key whose reference color is closest to
// c, together with the 0-1 similarity score. ok is false for an empty
// candidate table. Ties break on key order so the result is stable.
func Nearest(c color.RGBA, candidates map[string]color.RGBA) (key string, similarity float64, ok bool) {
	best := -1.0
	for k, want := range candidates {
		s := colorutil.Similarity(c, want)
		if s > best || (s == best && k < key) {
			best = s
			key = k
		}
	}
	return key, best, best >= 0
}

// Dominant extracts the dominant color of the region r in img using a
// coarse RGB histogram (4 bits per channel). Pixels are sampled on a
// stride so large regions stay cheap.
func Dominant(img image.Image, r image.Rectangle) color.RGBA {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return color.RGBA{}
	}

	stride := 1
	if area := r.Dx() * r.Dy(); area > 64*64 {
		stride = r.Dx() / 64
		if stride < 1 {
			stride = 1
		}
	}

	type bucket struct {
		n       int
		r, g, b uint64
	}
	var buckets [16 * 16 * 16]bucket
	for y := r.Min.Y; y < r.Max.Y; y += stride {
		for x := r.Min.X; x < r.Max.X; x += stride {
			pr, pg, pb, _ := img.At(x, y).RGBA()
			r8, g8, b8 := uint8(pr>>8), uint8(pg>>8), uint8(pb>>8)
			idx := int(r8>>4)<<8 | int(g8>>4)<<4 | int(b8>>4)
			buckets[idx].n++
			buckets[idx].r += uint64(r8)
			buckets[idx].g += uint64(g8)
			buckets[idx].b += uint64(b8)
		}
	}

	best := 0
	for i := 1; i < len(buckets); i++ {
		if buckets[i].n > buckets[best].n {
			best = i
		}
	}
	if buckets[best].n == 0 {
		return color.RGBA{}
	}
	n := uint64(buckets[best].n)
	return color.RGBA{
		R: uint8(buckets[best].r / n),
		G: uint8(buckets[best].g / n),
		B: uint8(buckets[best].b / n),
		A: 0xFF,
	}
}
