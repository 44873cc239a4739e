package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBToHSV(t *testing.T) {
	t.Parallel()

	h, s, v := RGBToHSV(255, 0, 0) // pure red
	assert.InDelta(t, 0, h, 0.01)
	assert.InDelta(t, 255, s, 0.01)
	assert.InDelta(t, 255, v, 0.01)

	h, s, v = RGBToHSV(0, 255, 0) // pure green: H 120deg -> 60 in OpenCV range
	assert.InDelta(t, 60, h, 0.01)
	assert.InDelta(t, 255, s, 0.01)
	assert.InDelta(t, 255, v, 0.01)

	h, s, v = RGBToHSV(0, 0, 0) // black
	assert.InDelta(t, 0, h, 0.01)
	assert.InDelta(t, 0, s, 0.01)
	assert.InDelta(t, 0, v, 0.01)
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, Similarity(White, White), 1e-9)
	assert.InDelta(t, 0.0, Similarity(Black, White), 1e-9)

	near := color.RGBA{R: 250, G: 250, B: 250, A: 255}
	assert.Greater(t, Similarity(White, near), 0.97)

	// Symmetric.
	assert.Equal(t, Similarity(Blue, Yellow), Similarity(Yellow, Blue))
}
