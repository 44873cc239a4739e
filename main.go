// Brick Scout: point a camera at a pile of bricks and let the set
// checklist keep itself while you sort.
package main

import (
	"image/color"
	"log"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"brick-scout/internal/app"
	"brick-scout/internal/capture"
	"brick-scout/internal/colormatch"
	"brick-scout/internal/detect"
	"brick-scout/internal/progress"
	"brick-scout/internal/set"
	"brick-scout/pkg/geometry"
	"brick-scout/ui/mainwindow"
	"brick-scout/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	fyneApp := fyneapp.NewWithID("io.github.brickscout")
	fyneApp.Settings().SetTheme(&app.BrickScoutTheme{})

	p := prefs.Load()
	state := app.NewState()
	prog := progress.NewTracker(0)

	quality := detect.DefaultQualityConfig()
	quality.Confidence = p.Float(prefs.KeyConfidence, quality.Confidence)
	quality.ColorConsistency = p.Bool(prefs.KeyColorCheck, quality.ColorConsistency)

	// The contour backend matches against the loaded set's expected
	// colors; resolve them lazily so an inventory swap is picked up.
	var eng *detect.Engine
	open := detect.OpenBackend(func() map[string]color.RGBA {
		if eng == nil {
			return nil
		}
		return colormatch.ExpectedColors(eng.Inventory().Colors())
	})

	var win *mainwindow.MainWindow
	cb := detect.Callbacks{
		OnStateChanged: func(st detect.State, reason string) {
			state.Emit(app.EventDetectionStateChanged, st)
		},
		OnDetectionSetChanged: func(keys []string) {
			state.Emit(app.EventDetectionSetChanged, keys)
		},
		OnOrderingChanged: func(order []string) {
			state.Emit(app.EventOrderingChanged, order)
		},
		OnCountsChanged: func(key string, found, required int) {
			state.Emit(app.EventCountsChanged, key)
		},
		OnStatus: func(msg string) {
			state.Emit(app.EventStatus, msg)
		},
	}

	eng, err := detect.NewEngine(set.NewInventory("", ""), detect.Options{
		BatchInterval: time.Duration(p.Int(prefs.KeyBatchMillis, 100)) * time.Millisecond,
		Quality:       quality,
		Open:          open,
		OnCandidates: func(cands []detect.Candidate) {
			if win == nil {
				return
			}
			boxes := make([]geometry.Rect, 0, len(cands))
			for _, c := range cands {
				boxes = append(boxes, c.Box)
			}
			win.Display().SetBoxes(boxes)
		},
	}, cb)
	if err != nil {
		log.Fatalf("creating engine: %v", err)
	}
	eng.Start()
	defer eng.Stop(3 * time.Second)

	win = mainwindow.New(fyneApp, state, eng, prog, p)

	cameraID := p.Int(prefs.KeyCameraID, -1)
	if cameraID < 0 {
		cameraID = 0
		if ids := capture.ListDevices(); len(ids) > 0 {
			cameraID = ids[0]
			log.Printf("cameras found: %v, using %d", ids, cameraID)
		}
	}

	src := capture.NewSource(cameraID, 0,
		win.Display().ShowFrame,
		eng.SubmitFrame,
	)
	src.Start()
	defer src.Stop()

	if hr := app.NewHotReloader(2 * time.Second); hr != nil {
		hr.OnNewBinary(func() {
			dialog.ShowConfirm("New build", "A newer binary was built. Restart now?",
				func(yes bool) {
					if !yes {
						hr.ResetBaseline()
						hr.Start()
						return
					}
					if err := hr.Restart(); err != nil {
						log.Printf("restart failed: %v", err)
					}
				}, win)
		})
		hr.Start()
		defer hr.Stop()
	}

	win.ShowAndRun()
}
