package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(seq uint64, keys ...string) Snapshot {
	return Snapshot{Seq: seq, At: time.Now(), Detected: keys}
}

func TestDispatcherCoalescesToLatest(t *testing.T) {
	t.Parallel()
	d := NewDispatcher()

	d.Submit(snap(1, "3001"))
	d.Submit(snap(2, "3001", "3022"))
	d.Submit(snap(3, "3022"))

	got, ok := d.Take()
	require.True(t, ok)
	assert.Equal(t, uint64(3), got.Seq)
	assert.Equal(t, []string{"3022"}, got.Detected)

	// The slot is empty after a take.
	_, ok = d.Take()
	assert.False(t, ok)
}

func TestDispatcherDiscardsStaleSnapshots(t *testing.T) {
	t.Parallel()
	d := NewDispatcher()

	d.Submit(snap(5, "3001"))
	d.Submit(snap(4, "3022")) // older than pending

	got, ok := d.Take()
	require.True(t, ok)
	assert.Equal(t, uint64(5), got.Seq)

	// Older than the last applied snapshot.
	d.Submit(snap(3, "3022"))
	_, ok = d.Take()
	assert.False(t, ok)

	d.Submit(snap(6, "3022"))
	got, ok = d.Take()
	require.True(t, ok)
	assert.Equal(t, uint64(6), got.Seq)
}

func TestDispatcherReset(t *testing.T) {
	t.Parallel()
	d := NewDispatcher()
	d.Submit(snap(9, "3001"))
	_, ok := d.Take()
	require.True(t, ok)

	d.Reset()

	// After a reset the sequence watermark starts over.
	d.Submit(snap(1, "3022"))
	got, ok := d.Take()
	require.True(t, ok)
	assert.Equal(t, uint64(1), got.Seq)
}
