// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"brick-scout/internal/detect"
	"brick-scout/ui/prefs"
)

// SettingsDialog provides a property sheet for the detection quality
// filter. Changes apply to the running engine immediately; the
// confidence and color-check choices persist across sessions.
type SettingsDialog struct {
	engine *detect.Engine
	prefs  *prefs.Prefs
	window fyne.Window

	// Quality filter
	confidenceEntry *widget.Entry
	nmsEntry        *widget.Entry
	minSizeEntry    *widget.Entry
	maxSizeEntry    *widget.Entry
	aspectMinEntry  *widget.Entry
	aspectMaxEntry  *widget.Entry

	// Color check
	colorCheck          *widget.Check
	colorThresholdEntry *widget.Entry
}

// NewSettingsDialog creates the dialog seeded from the engine's current
// configuration.
func NewSettingsDialog(engine *detect.Engine, p *prefs.Prefs, window fyne.Window) *SettingsDialog {
	d := &SettingsDialog{
		engine: engine,
		prefs:  p,
		window: window,
	}
	d.createEntries()
	return d
}

// Show displays the dialog.
func (d *SettingsDialog) Show() {
	content := d.createContent()

	dlg := dialog.NewCustomConfirm(
		"Detection Settings",
		"Apply",
		"Cancel",
		content,
		func(apply bool) {
			if !apply {
				return
			}
			if err := d.applyChanges(); err != nil {
				dialog.ShowError(err, d.window)
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(420, 520))
	dlg.Show()
}

func (d *SettingsDialog) createEntries() {
	q := d.engine.Quality()

	d.confidenceEntry = widget.NewEntry()
	d.confidenceEntry.SetText(fmt.Sprintf("%.2f", q.Confidence))

	d.nmsEntry = widget.NewEntry()
	d.nmsEntry.SetText(fmt.Sprintf("%.2f", q.NMSIoU))

	d.minSizeEntry = widget.NewEntry()
	d.minSizeEntry.SetText(fmt.Sprintf("%.0f", q.MinSizePx))

	d.maxSizeEntry = widget.NewEntry()
	d.maxSizeEntry.SetText(fmt.Sprintf("%.0f", q.MaxSizePx))

	d.aspectMinEntry = widget.NewEntry()
	d.aspectMinEntry.SetText(fmt.Sprintf("%.1f", q.AspectRatioMin))

	d.aspectMaxEntry = widget.NewEntry()
	d.aspectMaxEntry.SetText(fmt.Sprintf("%.1f", q.AspectRatioMax))

	d.colorCheck = widget.NewCheck("Reject wrong-colored matches", nil)
	d.colorCheck.SetChecked(q.ColorConsistency)

	d.colorThresholdEntry = widget.NewEntry()
	d.colorThresholdEntry.SetText(fmt.Sprintf("%.2f", q.ColorThreshold))
}

func (d *SettingsDialog) createContent() fyne.CanvasObject {
	filterForm := widget.NewForm(
		widget.NewFormItem("Confidence (0-1)", d.confidenceEntry),
		widget.NewFormItem("NMS IoU (0-1)", d.nmsEntry),
		widget.NewFormItem("Min box size (px)", d.minSizeEntry),
		widget.NewFormItem("Max box size (px)", d.maxSizeEntry),
		widget.NewFormItem("Aspect ratio min", d.aspectMinEntry),
		widget.NewFormItem("Aspect ratio max", d.aspectMaxEntry),
	)

	colorForm := container.NewVBox(
		d.colorCheck,
		widget.NewForm(
			widget.NewFormItem("Min similarity (0-1)", d.colorThresholdEntry),
		),
	)

	return container.NewVBox(
		widget.NewCard("Quality Filter", "", filterForm),
		widget.NewCard("Color Check", "", colorForm),
	)
}

// applyChanges parses the form into a config snapshot and installs it.
// Unparsable fields keep their previous values; an out-of-range snapshot
// is rejected as a whole and the engine keeps the old one.
func (d *SettingsDialog) applyChanges() error {
	q := d.engine.Quality()

	if v, err := strconv.ParseFloat(d.confidenceEntry.Text, 64); err == nil {
		q.Confidence = v
	}
	if v, err := strconv.ParseFloat(d.nmsEntry.Text, 64); err == nil {
		q.NMSIoU = v
	}
	if v, err := strconv.ParseFloat(d.minSizeEntry.Text, 64); err == nil {
		q.MinSizePx = v
	}
	if v, err := strconv.ParseFloat(d.maxSizeEntry.Text, 64); err == nil {
		q.MaxSizePx = v
	}
	if v, err := strconv.ParseFloat(d.aspectMinEntry.Text, 64); err == nil {
		q.AspectRatioMin = v
	}
	if v, err := strconv.ParseFloat(d.aspectMaxEntry.Text, 64); err == nil {
		q.AspectRatioMax = v
	}
	q.ColorConsistency = d.colorCheck.Checked
	if v, err := strconv.ParseFloat(d.colorThresholdEntry.Text, 64); err == nil {
		q.ColorThreshold = v
	}

	if err := d.engine.SetQualityConfig(q); err != nil {
		return err
	}

	d.prefs.SetFloat(prefs.KeyConfidence, q.Confidence)
	d.prefs.SetBool(prefs.KeyColorCheck, q.ColorConsistency)
	return d.prefs.Save()
}
