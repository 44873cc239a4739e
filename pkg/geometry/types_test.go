package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectIoU(t *testing.T) {
	t.Parallel()
	a := NewRect(0, 0, 100, 100)

	assert.Equal(t, 1.0, a.IoU(a))
	assert.Equal(t, 0.0, a.IoU(NewRect(200, 200, 50, 50)))

	// Half overlap: inter 5000, union 15000.
	b := NewRect(50, 0, 100, 100)
	assert.InDelta(t, 1.0/3.0, a.IoU(b), 1e-9)

	// Touching edges do not count as overlap.
	assert.Equal(t, 0.0, a.IoU(NewRect(100, 0, 50, 50)))
}

func TestRectIntersectAndUnion(t *testing.T) {
	t.Parallel()
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)

	assert.Equal(t, NewRect(5, 5, 5, 5), a.Intersect(b))
	assert.Equal(t, NewRect(0, 0, 15, 15), a.Union(b))
	assert.Equal(t, Rect{}, a.Intersect(NewRect(20, 20, 5, 5)))
}

func TestRectAspectRatio(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2.0, NewRect(0, 0, 80, 40).AspectRatio())
	assert.Equal(t, 0.0, NewRect(0, 0, 80, 0).AspectRatio())
}

func TestPointDistance(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 5.0, NewPoint2D(0, 0).Distance(NewPoint2D(3, 4)))
}
