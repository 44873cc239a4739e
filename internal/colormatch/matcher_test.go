package colormatch

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByNameBrickPalette(t *testing.T) {
	t.Parallel()
	c, ok := ByName("Red")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xB4, A: 0xFF}, c)

	// Case and surrounding space do not matter.
	c2, ok := ByName("  reddish brown ")
	require.True(t, ok)
	assert.Equal(t, uint8(0x5F), c2.R)
}

func TestByNameFallsBackToSVGNames(t *testing.T) {
	t.Parallel()
	// Not in the brick palette, resolved via the SVG table.
	_, ok := ByName("cornflower blue")
	assert.True(t, ok)

	_, ok = ByName("definitely not a color")
	assert.False(t, ok)
}

func TestExpectedColorsSkipsUnresolvable(t *testing.T) {
	t.Parallel()
	out := ExpectedColors(map[string]string{
		"3001": "red",
		"3022": "glitter trans-mystery",
	})
	assert.Contains(t, out, "3001")
	assert.NotContains(t, out, "3022")
}

func TestNearest(t *testing.T) {
	t.Parallel()
	candidates := map[string]color.RGBA{
		"red":  {R: 0xB4, A: 0xFF},
		"blue": {R: 0x1E, G: 0x5A, B: 0xA8, A: 0xFF},
	}

	key, sim, ok := Nearest(color.RGBA{R: 0xC0, G: 0x10, B: 0x10, A: 0xFF}, candidates)
	require.True(t, ok)
	assert.Equal(t, "red", key)
	assert.Greater(t, sim, 0.9)

	_, _, ok = Nearest(color.RGBA{}, nil)
	assert.False(t, ok)
}

func TestNearestTieBreaksOnKey(t *testing.T) {
	t.Parallel()
	same := color.RGBA{R: 10, G: 20, B: 30, A: 0xFF}
	candidates := map[string]color.RGBA{"b": same, "a": same, "c": same}

	for i := 0; i < 10; i++ {
		key, _, ok := Nearest(same, candidates)
		require.True(t, ok)
		assert.Equal(t, "a", key)
	}
}

func TestDominantPicksMajorityColor(t *testing.T) {
	t.Parallel()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	red := color.RGBA{R: 0xB4, A: 0xFF}
	blue := color.RGBA{B: 0xA8, A: 0xFF}
	draw.Draw(img, img.Bounds(), image.NewUniform(red), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, 40, 10), image.NewUniform(blue), image.Point{}, draw.Src)

	got := Dominant(img, img.Bounds())
	assert.Equal(t, red, got)

	// Restricting the region flips the answer.
	got = Dominant(img, image.Rect(0, 0, 40, 10))
	assert.Equal(t, blue, got)
}

func TestDominantEmptyRegion(t *testing.T) {
	t.Parallel()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	got := Dominant(img, image.Rect(50, 50, 60, 60))
	assert.Equal(t, color.RGBA{}, got)
}
