package panels

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"brick-scout/internal/app"
	"brick-scout/internal/detect"
	"brick-scout/internal/progress"
	"brick-scout/internal/set"
)

// DetectionPanel holds the detection controls: the on/off toggle, the
// current state with its error reason, a retry button after a failed
// load, and session progress.
type DetectionPanel struct {
	state    *app.State
	engine   *detect.Engine
	progress *progress.Tracker

	toggleBtn  *widget.Button
	retryBtn   *widget.Button
	stateLabel *widget.Label
	statsLabel *widget.Label

	content fyne.CanvasObject
}

// NewDetectionPanel creates the panel wired to the engine and the
// session progress tracker.
func NewDetectionPanel(state *app.State, engine *detect.Engine, prog *progress.Tracker) *DetectionPanel {
	dp := &DetectionPanel{
		state:    state,
		engine:   engine,
		progress: prog,
	}

	dp.stateLabel = widget.NewLabel("Detection off")
	dp.statsLabel = widget.NewLabel("")

	dp.toggleBtn = widget.NewButton("Start Detection", func() {
		dp.engine.Toggle(dp.engine.State() != detect.StateActive)
	})
	dp.toggleBtn.Disable()

	dp.retryBtn = widget.NewButton("Retry Load", func() {
		if path := dp.state.ModelPath; path != "" {
			dp.engine.StartLoad(path)
		}
	})
	dp.retryBtn.Hide()

	dp.content = container.NewVBox(
		dp.stateLabel,
		container.NewHBox(dp.toggleBtn, dp.retryBtn),
		widget.NewSeparator(),
		dp.statsLabel,
	)

	state.On(app.EventDetectionStateChanged, func(data interface{}) {
		dp.applyState()
	})
	state.On(app.EventCountsChanged, func(data interface{}) {
		dp.refreshStats()
	})
	state.On(app.EventInventoryLoaded, func(data interface{}) {
		if inv, ok := data.(*set.Inventory); ok && inv != nil {
			dp.progress.Reset(inv.TotalRequired(), inv.TotalFound())
		}
		dp.refreshStats()
	})

	return dp
}

// Container returns the panel's root object.
func (dp *DetectionPanel) Container() fyne.CanvasObject { return dp.content }

func (dp *DetectionPanel) applyState() {
	st := dp.engine.State()
	dp.retryBtn.Hide()

	switch st {
	case detect.StateOff:
		dp.stateLabel.SetText("Detection off")
		dp.toggleBtn.SetText("Start Detection")
		dp.toggleBtn.Disable()
	case detect.StateLoading:
		dp.stateLabel.SetText("Loading model…")
		dp.toggleBtn.Disable()
	case detect.StateReady:
		dp.stateLabel.SetText("Ready")
		dp.toggleBtn.SetText("Start Detection")
		dp.toggleBtn.Enable()
	case detect.StateActive:
		dp.stateLabel.SetText("Detecting")
		dp.toggleBtn.SetText("Stop Detection")
		dp.toggleBtn.Enable()
	case detect.StateError:
		dp.stateLabel.SetText("Load failed: " + dp.engine.StateReason())
		dp.toggleBtn.Disable()
		dp.retryBtn.Show()
	}
}

func (dp *DetectionPanel) refreshStats() {
	inv := dp.engine.Inventory()
	if inv == nil || inv.Len() == 0 {
		dp.statsLabel.SetText("")
		return
	}
	dp.progress.Record(inv.TotalFound(), time.Now())
	s := dp.progress.Snapshot()

	text := fmt.Sprintf("%d of %d parts (%.0f%%)", s.Found, s.Required, s.Completion*100)
	if s.PartsPerHour > 0 {
		text += fmt.Sprintf("\n%.0f parts/hour, ~%s left", s.PartsPerHour, s.Remaining.Round(time.Minute))
	}
	dp.statsLabel.SetText(text)
}
