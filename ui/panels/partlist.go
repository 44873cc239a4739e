// Package panels provides the side panels of the main window.
package panels

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"brick-scout/internal/app"
	"brick-scout/internal/colormatch"
	"brick-scout/internal/detect"
)

// PartListPanel shows the checklist: one row per part type with its
// color swatch, found counter and manual controls. Rows currently seen
// by the detector are pulled to the top and bolded.
type PartListPanel struct {
	state  *app.State
	engine *detect.Engine

	list    *widget.List
	order   []string
	content fyne.CanvasObject
}

// NewPartListPanel creates the checklist panel and subscribes it to the
// relevant application events.
func NewPartListPanel(state *app.State, engine *detect.Engine) *PartListPanel {
	pl := &PartListPanel{
		state:  state,
		engine: engine,
	}

	pl.list = widget.NewList(
		func() int { return len(pl.order) },
		func() fyne.CanvasObject {
			swatch := fynecanvas.NewRectangle(color.Transparent)
			swatch.SetMinSize(fyne.NewSize(18, 18))
			name := widget.NewLabel("part name")
			count := widget.NewLabel("0/0")
			minus := widget.NewButton("-", nil)
			plus := widget.NewButton("+", nil)
			check := widget.NewCheck("Have it", nil)
			return container.NewHBox(swatch, name, layout.NewSpacer(), count, minus, plus, check)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			pl.updateRow(id, obj)
		},
	)

	pl.content = pl.list

	state.On(app.EventOrderingChanged, func(data interface{}) {
		if order, ok := data.([]string); ok {
			pl.ApplyOrder(order)
		}
	})
	state.On(app.EventDetectionSetChanged, func(data interface{}) {
		pl.list.Refresh()
	})
	state.On(app.EventCountsChanged, func(data interface{}) {
		pl.list.Refresh()
	})
	state.On(app.EventInventoryLoaded, func(data interface{}) {
		pl.Reload()
	})

	return pl
}

// Container returns the panel's root object.
func (pl *PartListPanel) Container() fyne.CanvasObject { return pl.content }

// Reload rebuilds the row order from the engine's current inventory.
func (pl *PartListPanel) Reload() {
	pl.order = nil
	inv := pl.engine.Inventory()
	if inv != nil {
		for _, p := range inv.Parts() {
			pl.order = append(pl.order, p.PartNumber)
		}
	}
	pl.list.Refresh()
}

// ApplyOrder installs a new display order. The keys must match the
// loaded inventory; unknown keys are dropped at render time.
func (pl *PartListPanel) ApplyOrder(order []string) {
	pl.order = order
	pl.list.Refresh()
}

func (pl *PartListPanel) updateRow(id widget.ListItemID, obj fyne.CanvasObject) {
	if id >= len(pl.order) {
		return
	}
	key := pl.order[id]
	p, ok := pl.engine.Inventory().Part(key)
	if !ok {
		return
	}

	row := obj.(*fyne.Container)
	swatch := row.Objects[0].(*fynecanvas.Rectangle)
	name := row.Objects[1].(*widget.Label)
	count := row.Objects[3].(*widget.Label)
	minus := row.Objects[4].(*widget.Button)
	plus := row.Objects[5].(*widget.Button)
	check := row.Objects[6].(*widget.Check)

	if c, ok := colormatch.ByName(p.Color); ok {
		swatch.FillColor = c
	} else {
		swatch.FillColor = color.Transparent
	}
	swatch.Refresh()

	name.TextStyle = fyne.TextStyle{Bold: p.DetectedNow}
	name.SetText(p.DisplayName())

	count.SetText(fmt.Sprintf("%d/%d", p.Found, p.Required))

	minus.OnTapped = func() { pl.engine.AdjustFound(key, -1) }
	plus.OnTapped = func() { pl.engine.AdjustFound(key, +1) }

	check.OnChanged = nil
	check.SetChecked(p.ManuallyMarked)
	check.OnChanged = func(marked bool) {
		pl.engine.SetManuallyMarked(key, marked)
	}

	if p.FullyFound() {
		plus.Disable()
	} else {
		plus.Enable()
	}
	if p.Found == 0 {
		minus.Disable()
	} else {
		minus.Enable()
	}
}
