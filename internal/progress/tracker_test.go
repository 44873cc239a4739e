package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCompletion(t *testing.T) {
	t.Parallel()
	tr := NewTracker(10)
	tr.Record(4, time.Now())

	s := tr.Snapshot()
	assert.Equal(t, 4, s.Found)
	assert.Equal(t, 10, s.Required)
	assert.InDelta(t, 0.4, s.Completion, 1e-9)
}

func TestTrackerRateFromFindGaps(t *testing.T) {
	t.Parallel()
	tr := NewTracker(10)
	base := time.Unix(1700000000, 0)

	// One find every 30 seconds: 120 parts/hour.
	tr.Record(1, base)
	tr.Record(2, base.Add(30*time.Second))
	tr.Record(3, base.Add(60*time.Second))

	s := tr.Snapshot()
	assert.InDelta(t, 120, s.PartsPerHour, 1e-9)
	// 7 parts left at 30s each.
	assert.Equal(t, 210*time.Second, s.Remaining)
}

func TestTrackerJumpCountsAsMultipleFinds(t *testing.T) {
	t.Parallel()
	tr := NewTracker(10)
	base := time.Unix(1700000000, 0)

	tr.Record(1, base)
	tr.Record(3, base.Add(time.Minute)) // +2 at the same instant

	s := tr.Snapshot()
	assert.Equal(t, 3, s.Found)
	assert.Greater(t, s.PartsPerHour, 0.0)
}

func TestTrackerNoRateUntilTwoFinds(t *testing.T) {
	t.Parallel()
	tr := NewTracker(10)
	s := tr.Snapshot()
	assert.Zero(t, s.PartsPerHour)
	assert.Zero(t, s.Remaining)

	tr.Record(1, time.Now())
	s = tr.Snapshot()
	assert.Zero(t, s.PartsPerHour)
}

func TestTrackerDownwardCorrectionAddsNoFinds(t *testing.T) {
	t.Parallel()
	tr := NewTracker(10)
	tr.Record(2, time.Now())
	tr.Record(1, time.Now()) // user hit minus

	s := tr.Snapshot()
	assert.Equal(t, 1, s.Found)
}

func TestTrackerReset(t *testing.T) {
	t.Parallel()
	tr := NewTracker(10)
	tr.Record(5, time.Now())

	tr.Reset(20, 3)
	s := tr.Snapshot()
	require.Equal(t, 20, s.Required)
	assert.Equal(t, 3, s.Found)
	assert.Zero(t, s.PartsPerHour)
}
