// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"brick-scout/internal/app"
	"brick-scout/internal/detect"
	"brick-scout/internal/progress"
	"brick-scout/internal/set"
	"brick-scout/internal/version"
	"brick-scout/ui/dialogs"
	"brick-scout/ui/panels"
	"brick-scout/ui/prefs"
	"brick-scout/ui/video"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const prefKeyLastDir = "lastDirectory"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	engine *detect.Engine
	prefs  *prefs.Prefs

	display        *video.Display
	partList       *panels.PartListPanel
	detectionPanel *panels.DetectionPanel
	statusBar      *widget.Label
}

// New creates the main window around an already constructed engine.
func New(fyneApp fyne.App, state *app.State, engine *detect.Engine, prog *progress.Tracker, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Brick Scout")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		engine: engine,
		prefs:  p,
	}

	mw.setupUI(prog)
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restoreSession()

	return mw
}

// Display returns the video widget; the capture source feeds it.
func (mw *MainWindow) Display() *video.Display { return mw.display }

// setupUI creates the main layout: checklist | live feed.
func (mw *MainWindow) setupUI(prog *progress.Tracker) {
	mw.display = video.NewDisplay()
	mw.partList = panels.NewPartListPanel(mw.state, mw.engine)
	mw.detectionPanel = panels.NewDetectionPanel(mw.state, mw.engine, prog)
	mw.statusBar = widget.NewLabel("Ready")

	left := container.NewBorder(
		mw.detectionPanel.Container(), // top
		nil, nil, nil,
		mw.partList.Container(), // center
	)

	split := container.NewHSplit(left, mw.display.CanvasObject())
	split.SetOffset(0.35)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil, nil,
		split, // center
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1100, 700))
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Load Inventory...", mw.onLoadInventory),
		fyne.NewMenuItem("Load Model...", mw.onLoadModel),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Detection Settings...", mw.onSettings),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventInventoryLoaded, func(data interface{}) {
		if inv, ok := data.(*set.Inventory); ok && inv != nil {
			mw.SetTitle("Brick Scout - " + inv.Name)
			mw.updateStatus(fmt.Sprintf("Inventory loaded: %d part types, %d parts",
				inv.Len(), inv.TotalRequired()))
		}
	})

	mw.state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})

	mw.state.On(app.EventDetectionStateChanged, func(data interface{}) {
		if st, ok := data.(detect.State); ok {
			mw.updateStatus("Detection: " + st.String())
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// restoreSession reloads the last inventory and model from preferences.
func (mw *MainWindow) restoreSession() {
	if path := mw.prefs.String(prefs.KeyLastInventory); path != "" {
		if inv, err := set.LoadCSV(path); err == nil {
			mw.engine.LoadInventory(inv)
			mw.state.SetInventory(inv, path)
		}
	}
	if path := mw.prefs.String(prefs.KeyModelPath); path != "" {
		mw.state.SetModelPath(path)
		mw.engine.StartLoad(path)
	}
}

func (mw *MainWindow) onLoadInventory() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		inv, err := set.LoadCSV(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.engine.LoadInventory(inv)
		mw.state.SetInventory(inv, path)
		mw.prefs.SetString(prefs.KeyLastInventory, path)
		if err := mw.prefs.Save(); err != nil {
			mw.updateStatus("Could not save preferences: " + err.Error())
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onLoadModel() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		mw.state.SetModelPath(path)
		mw.prefs.SetString(prefs.KeyModelPath, path)
		if err := mw.prefs.Save(); err != nil {
			mw.updateStatus("Could not save preferences: " + err.Error())
		}
		mw.engine.StartLoad(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pb", ".onnx", ".caffemodel"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSettings() {
	dialogs.NewSettingsDialog(mw.engine, mw.prefs, mw.Window).Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		"Brick Scout "+version.String()+"\n\nSort sets faster: point a camera at the pile\nand let the checklist keep itself.",
		mw.Window)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	dir := filepath.Dir(filePath)
	mw.app.Preferences().SetString(prefKeyLastDir, dir)
}
