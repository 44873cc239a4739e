package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partsABC(detected ...string) []Part {
	isDetected := func(key string) bool {
		for _, d := range detected {
			if d == key {
				return true
			}
		}
		return false
	}
	keys := []string{"A", "B", "C"}
	out := make([]Part, len(keys))
	for i, k := range keys {
		out[i] = Part{PartNumber: k, Required: 1, OriginalPosition: i, DetectedNow: isDetected(k)}
	}
	return out
}

func TestReorderDetectedFirst(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"B", "A", "C"}, Reorder(partsABC("B")))
	assert.Equal(t, []string{"A", "C", "B"}, Reorder(partsABC("A", "C")))
	assert.Equal(t, []string{"A", "B", "C"}, Reorder(partsABC()))
}

func TestReorderIsIdempotent(t *testing.T) {
	t.Parallel()
	parts := partsABC("B", "C")
	first := Reorder(parts)
	assert.Equal(t, first, Reorder(parts))
}

func TestReorderIsReversible(t *testing.T) {
	t.Parallel()
	parts := partsABC("B")
	require.Equal(t, []string{"B", "A", "C"}, Reorder(parts))

	// The part leaves the detected set and returns to its exact place.
	parts[1].DetectedNow = false
	assert.Equal(t, []string{"A", "B", "C"}, Reorder(parts))
}

func TestReorderPreservesRelativeOrderWithinPartitions(t *testing.T) {
	t.Parallel()
	parts := []Part{
		{PartNumber: "D", OriginalPosition: 3, DetectedNow: true},
		{PartNumber: "A", OriginalPosition: 0, DetectedNow: false},
		{PartNumber: "C", OriginalPosition: 2, DetectedNow: true},
		{PartNumber: "B", OriginalPosition: 1, DetectedNow: false},
	}
	// Input slice order does not matter, OriginalPosition does.
	assert.Equal(t, []string{"C", "D", "A", "B"}, Reorder(parts))
}

func TestSameOrder(t *testing.T) {
	t.Parallel()
	assert.True(t, SameOrder([]string{"A", "B"}, []string{"A", "B"}))
	assert.False(t, SameOrder([]string{"A", "B"}, []string{"B", "A"}))
	assert.False(t, SameOrder([]string{"A"}, []string{"A", "B"}))
	assert.True(t, SameOrder(nil, nil))
}
