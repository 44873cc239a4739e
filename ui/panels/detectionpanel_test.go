package panels

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brick-scout/internal/app"
	"brick-scout/internal/detect"
	"brick-scout/internal/progress"
	"brick-scout/internal/set"
)

func newPanelEngine(t *testing.T, inv *set.Inventory) *detect.Engine {
	t.Helper()
	eng, err := detect.NewEngine(inv, detect.Options{
		Quality: detect.DefaultQualityConfig(),
		Open:    func(string) (detect.Detector, error) { return nil, nil },
	}, detect.Callbacks{})
	require.NoError(t, err)
	return eng
}

func TestDetectionPanelSeedsProgressFromInventory(t *testing.T) {
	test.NewApp()

	inv := set.NewInventory("Fire Station", "60375")
	require.NoError(t, inv.Add("3001", "Brick 2x4", "red", 4))
	require.NoError(t, inv.Add("3022", "Plate 2x2", "blue", 2))

	st := app.NewState()
	prog := progress.NewTracker(0)
	dp := NewDetectionPanel(st, newPanelEngine(t, inv), prog)

	st.SetInventory(inv, "60375.csv")

	s := prog.Snapshot()
	assert.Equal(t, 6, s.Required)
	assert.Equal(t, 0, s.Found)
	assert.Equal(t, 0.0, s.Completion)
	assert.Contains(t, dp.statsLabel.Text, "0 of 6 parts (0%)")
}

func TestDetectionPanelRebasesProgressOnReload(t *testing.T) {
	test.NewApp()

	first := set.NewInventory("Fire Station", "60375")
	require.NoError(t, first.Add("3001", "Brick 2x4", "red", 4))

	st := app.NewState()
	prog := progress.NewTracker(0)
	NewDetectionPanel(st, newPanelEngine(t, first), prog)

	st.SetInventory(first, "60375.csv")
	prog.Record(3, time.Now())
	require.Equal(t, 3, prog.Snapshot().Found)

	second := set.NewInventory("Police Boat", "60376")
	require.NoError(t, second.Add("3003", "Brick 2x2", "white", 5))
	require.NoError(t, second.Add("3004", "Brick 1x2", "black", 5))
	st.SetInventory(second, "60376.csv")

	s := prog.Snapshot()
	assert.Equal(t, 10, s.Required)
	assert.Equal(t, 0, s.Found)
	assert.Zero(t, s.PartsPerHour)
}
