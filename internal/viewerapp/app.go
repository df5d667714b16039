// Package viewerapp wires the gallery presenter, the thumbnail widgets and the
// persisted configuration into the dat viewer window.
package viewerapp

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/edward-ap/datviewer/internal/config"
	"github.com/edward-ap/datviewer/internal/gallery"
	"github.com/edward-ap/datviewer/internal/logging"
	"github.com/edward-ap/datviewer/internal/render"
	"github.com/edward-ap/datviewer/internal/ui"
	"github.com/edward-ap/datviewer/internal/waveform"
)

const (
	idleNoFile  = "Open a .dat file or drop one on the window"
	flashPeriod = 2 * time.Second
	jobBacklog  = 16
)

// view is a copy of the presenter state taken on the worker goroutine and
// applied to widgets on the UI thread.
type view struct {
	title    string
	thumbs   []gallery.Thumbnail
	selected []int
	gain     float64
	size     int
	channels int
	samples  int
	took     time.Duration
	gen      uint64
}

func snapshot(p *gallery.Presenter) view {
	v := view{
		title:    p.Title(),
		thumbs:   p.Thumbnails(),
		selected: p.Selected(),
		gain:     p.Gain(),
		size:     p.ThumbSize(),
		took:     p.LastRender(),
		gen:      p.Generation(),
	}
	if ds := p.Dataset(); ds != nil {
		v.channels = ds.Channels()
		v.samples = ds.Samples()
	}
	return v
}

// App owns the fyne window and the presenter. The presenter is only touched
// from the worker goroutine started by newApp; widgets only from the UI thread.
type App struct {
	fa  fyne.App
	w   fyne.Window
	cfg *config.Config
	log *zap.Logger

	// clipboard receives copied selections; the window clipboard by default.
	clipboard gallery.Clipboard

	pres    *gallery.Presenter
	jobs    chan func()
	stopped chan struct{}
	mu      sync.Mutex
	closed  bool
	// displayed is the presenter generation the grid currently shows.
	displayed atomic.Uint64

	grid        *fyne.Container
	tiles       map[int]*ui.ThumbTile
	shown       []string
	status      *ui.StatusLine
	busy        *ui.BusyIndicator
	gainLbl     *widget.Label
	selLbl      *widget.Label
	gainUpBtn   *widget.Button
	gainDownBtn *widget.Button
	copyBtn     *widget.Button
	sizeSlider  *ui.SizeSlider
	rendererSel *widget.Select
}

// NewApp creates the fyne application and the main window.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	fa := app.NewWithID(config.AppID)
	if icon := AppIcon(); icon != nil {
		fa.SetIcon(icon)
	}
	return newApp(fa, cfg, log)
}

func newApp(fa fyne.App, cfg *config.Config, log *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	log = logging.OrNop(log)
	r, err := render.NewRenderer(cfg.Renderer)
	if err != nil {
		return nil, err
	}

	w := fa.NewWindow(gallery.DefaultTitle)
	w.SetMaster()
	if icon := AppIcon(); icon != nil {
		w.SetIcon(icon)
	}

	a := &App{
		fa:  fa,
		w:   w,
		cfg: cfg,
		log: log,
		pres: gallery.New(gallery.Options{
			Renderer:     r,
			ThumbSize:    cfg.ThumbSize,
			GainFactor:   cfg.GainFactor,
			ReloadOnGain: cfg.ReloadOnGain,
			HoldRetired:  true,
			Logger:       log.Named("gallery"),
		}),
		jobs:    make(chan func(), jobBacklog),
		stopped: make(chan struct{}),
		tiles:   map[int]*ui.ThumbTile{},
	}
	a.clipboard = w.Clipboard()
	go a.loop()

	a.buildUI()
	a.bindKeys()
	w.SetOnDropped(a.handleDrop)
	w.SetCloseIntercept(a.shutdown)
	w.Resize(fyne.NewSize(float32(cfg.WindowW), float32(cfg.WindowH)))
	return a, nil
}

// Run shows the window and enters the fyne event loop.
func (a *App) Run() {
	a.w.ShowAndRun()
}

// Window exposes the main window.
func (a *App) Window() fyne.Window { return a.w }

func (a *App) loop() {
	defer close(a.stopped)
	for job := range a.jobs {
		job()
		a.releaseReplaced()
	}
	if err := a.pres.Close(); err != nil {
		a.log.Warn("temp file cleanup on exit", zap.Error(err))
	}
}

// submit queues fn for the worker. It reports false once the app is closed.
func (a *App) submit(fn func()) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	a.jobs <- fn
	return true
}

// trySubmit queues fn unless the queue is full or closed.
func (a *App) trySubmit(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.jobs <- fn:
	default:
	}
}

// releaseReplaced deletes thumbnail files of passes the grid no longer
// shows. Runs on the worker.
func (a *App) releaseReplaced() {
	if err := a.pres.ReleaseRetired(a.displayed.Load()); err != nil {
		a.log.Warn("temp file cleanup", zap.Error(err))
	}
}

// wait blocks until every job queued so far has run.
func (a *App) wait() {
	done := make(chan struct{})
	if !a.submit(func() { close(done) }) {
		return
	}
	<-done
}

// run executes op on the worker with the busy indicator lit, then pushes the
// resulting state to the widgets. what names the action in logs and dialogs.
func (a *App) run(what string, op func(p *gallery.Presenter) error) {
	a.submit(func() {
		end := a.busy.Begin()
		err := op(a.pres)
		v := snapshot(a.pres)
		end()
		ui.CallOnMain(func() {
			a.apply(v)
			if err != nil {
				a.report(what, err)
			}
		})
	})
}

func (a *App) report(what string, err error) {
	if errors.Is(err, gallery.ErrNoFile) {
		a.status.Flash("Open a .dat file first", flashPeriod)
		return
	}
	a.log.Error(what+" failed", zap.Error(err))
	dialog.ShowError(fmt.Errorf("%s: %w", what, err), a.w)
}

// OpenFile loads path into the gallery.
func (a *App) OpenFile(path string) {
	a.run("open "+path, func(p *gallery.Presenter) error {
		return p.Open(path)
	})
}

func (a *App) increaseGain() {
	a.run("increase gain", func(p *gallery.Presenter) error { return p.IncreaseGain() })
}

func (a *App) decreaseGain() {
	a.run("decrease gain", func(p *gallery.Presenter) error { return p.DecreaseGain() })
}

func (a *App) setThumbSize(px int) {
	a.cfg.ThumbSize = render.ClampSize(px)
	a.run("resize thumbnails", func(p *gallery.Presenter) error { return p.SetThumbSize(px) })
}

func (a *App) setRenderer(kind string) {
	r, err := render.NewRenderer(kind)
	if err != nil {
		a.report("select renderer", err)
		return
	}
	a.cfg.Renderer = kind
	a.run("switch renderer", func(p *gallery.Presenter) error { return p.SetRenderer(r) })
}

func (a *App) toggleChannel(channel int, selected bool) {
	a.run("select channel", func(p *gallery.Presenter) error {
		if selected {
			p.Select(channel)
		} else {
			p.Deselect(channel)
		}
		return nil
	})
}

func (a *App) clearSelection() {
	a.run("clear selection", func(p *gallery.Presenter) error {
		p.ClearSelection()
		return nil
	})
}

// clipboardFunc adapts a function to gallery.Clipboard.
type clipboardFunc func(string)

func (f clipboardFunc) SetContent(s string) { f(s) }

// copySelection puts the selected channel numbers on the clipboard.
func (a *App) copySelection() {
	a.submit(func() {
		if len(a.pres.Selected()) == 0 {
			ui.CallOnMain(func() { a.status.Flash("No channels selected", flashPeriod) })
			return
		}
		a.pres.CopySelection(clipboardFunc(func(text string) {
			ui.CallOnMain(func() {
				a.clipboard.SetContent(text)
				a.status.Flash(fmt.Sprintf("Copied %q to the clipboard", text), flashPeriod)
			})
		}))
	})
}

// apply pushes v into the widgets. Tiles are rebuilt only when the set of
// thumbnail files changed; otherwise just their highlight is refreshed.
func (a *App) apply(v view) {
	a.w.SetTitle(v.title)
	a.gainLbl.SetText(fmt.Sprintf("Gain %g", v.gain))

	if !sameThumbs(a.shown, v.thumbs) {
		a.tiles = make(map[int]*ui.ThumbTile, len(v.thumbs))
		objs := make([]fyne.CanvasObject, 0, len(v.thumbs))
		a.shown = a.shown[:0]
		for _, th := range v.thumbs {
			tile := ui.NewThumbTile(th.Channel, th.Label, th.Path, float32(v.size))
			tile.OnToggled = a.toggleChannel
			a.tiles[th.Channel] = tile
			objs = append(objs, tile)
			a.shown = append(a.shown, th.Path)
		}
		a.grid.Layout = layout.NewGridWrapLayout(ui.TileSize(float32(v.size)))
		a.grid.Objects = objs
		a.grid.Refresh()
	}
	// Files of older passes may go once the grid no longer points at them.
	if v.gen > a.displayed.Load() {
		a.displayed.Store(v.gen)
		a.trySubmit(a.releaseReplaced)
	}

	sel := make(map[int]bool, len(v.selected))
	for _, c := range v.selected {
		sel[c] = true
	}
	for ch, tile := range a.tiles {
		tile.SetSelected(sel[ch])
	}
	a.selLbl.SetText(fmt.Sprintf("%d selected", len(v.selected)))
	if len(v.selected) > 0 {
		a.copyBtn.Enable()
	} else {
		a.copyBtn.Disable()
	}

	switch {
	case len(v.thumbs) > 0:
		a.status.SetIdle(fmt.Sprintf("%d channels x %d samples, rendered in %s",
			v.channels, v.samples, v.took.Round(time.Millisecond)))
	default:
		a.status.SetIdle(idleNoFile)
	}
}

func sameThumbs(shown []string, thumbs []gallery.Thumbnail) bool {
	if len(shown) != len(thumbs) {
		return false
	}
	for i, th := range thumbs {
		if shown[i] != th.Path {
			return false
		}
	}
	return true
}

// openFilter limits the open dialog to .dat files unless anyFile is set.
func openFilter(anyFile bool) storage.FileFilter {
	if anyFile {
		return nil
	}
	return storage.NewExtensionFileFilter([]string{".dat"})
}

func (a *App) showOpenDialog() { a.showOpenDialogFor(false) }

func (a *App) showOpenAnyDialog() { a.showOpenDialogFor(true) }

func (a *App) showOpenDialogFor(anyFile bool) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			a.report("open dialog", err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		a.rememberDir(rc.URI())
		a.OpenFile(path)
	}, a.w)
	if f := openFilter(anyFile); f != nil {
		d.SetFilter(f)
	}
	if a.cfg.LastDir != "" {
		if l, err := storage.ListerForURI(storage.NewFileURI(a.cfg.LastDir)); err == nil {
			d.SetLocation(l)
		}
	}
	d.Show()
}

func (a *App) rememberDir(u fyne.URI) {
	parent, err := storage.Parent(u)
	if err != nil {
		return
	}
	a.cfg.LastDir = parent.Path()
}

// handleDrop opens the first local file dropped on the window.
func (a *App) handleDrop(_ fyne.Position, uris []fyne.URI) {
	for _, u := range uris {
		if u.Scheme() != "file" {
			continue
		}
		a.rememberDir(u)
		a.OpenFile(u.Path())
		return
	}
}

func (a *App) bindKeys() {
	c := a.w.Canvas()
	c.SetOnTypedRune(func(r rune) {
		switch r {
		case '+', '=':
			a.increaseGain()
		case '-', '_':
			a.decreaseGain()
		}
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { a.showOpenDialog() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { a.showOpenAnyDialog() })
	c.AddShortcut(&fyne.ShortcutCopy{}, func(fyne.Shortcut) { a.copySelection() })
}

func (a *App) buildUI() {
	openBtn := widget.NewButtonWithIcon("Open a .dat file", theme.FolderOpenIcon(), a.showOpenDialog)
	a.gainUpBtn = widget.NewButtonWithIcon("Increase gain", theme.ZoomInIcon(), a.increaseGain)
	a.gainDownBtn = widget.NewButtonWithIcon("Decrease gain", theme.ZoomOutIcon(), a.decreaseGain)
	a.copyBtn = widget.NewButtonWithIcon("Copy selected channel numbers", theme.ContentCopyIcon(), a.copySelection)
	a.copyBtn.Disable()
	clearBtn := widget.NewButtonWithIcon("", theme.ContentClearIcon(), a.clearSelection)

	a.gainLbl = widget.NewLabel(fmt.Sprintf("Gain %g", waveform.DefaultGain))
	a.selLbl = widget.NewLabel("0 selected")

	a.sizeSlider = ui.NewSizeSlider(render.MinSize, render.MaxSize)
	a.sizeSlider.Value = float64(render.ClampSize(a.cfg.ThumbSize))
	a.sizeSlider.OnChangeEnded = func(v float64) { a.setThumbSize(int(v)) }

	a.rendererSel = widget.NewSelect([]string{render.KindPlot, render.KindChart}, nil)
	a.rendererSel.Selected = a.cfg.Renderer
	a.rendererSel.OnChanged = a.setRenderer

	a.busy = ui.NewBusyIndicator(10)
	statusLbl := widget.NewLabel("")
	statusLbl.Truncation = fyne.TextTruncateEllipsis
	a.status = ui.NewStatusLine(statusLbl, idleNoFile)

	buttons := container.NewHBox(openBtn, a.gainUpBtn, a.gainDownBtn, a.gainLbl,
		layout.NewSpacer(), a.selLbl, clearBtn, a.copyBtn)
	options := container.NewHBox(widget.NewLabel("Size"),
		container.NewGridWrap(fyne.NewSize(140, a.sizeSlider.MinSize().Height), a.sizeSlider),
		widget.NewLabel("Renderer"), a.rendererSel)
	top := container.NewVBox(buttons, options)
	bottom := container.NewBorder(nil, nil, a.busy.CanvasObject(), nil, statusLbl)

	a.grid = container.New(layout.NewGridWrapLayout(ui.TileSize(float32(render.ClampSize(a.cfg.ThumbSize)))))
	a.w.SetMainMenu(fyne.NewMainMenu(fyne.NewMenu("File",
		fyne.NewMenuItem("Open .dat file...", a.showOpenDialog),
		fyne.NewMenuItem("Open any file...", a.showOpenAnyDialog),
	)))
	a.w.SetContent(container.NewBorder(top, bottom, nil, nil, container.NewVScroll(a.grid)))
}

// shutdown persists the window size, stops the worker (which removes every
// temporary file) and closes the window.
func (a *App) shutdown() {
	sz := a.w.Canvas().Size()
	if sz.Width > 0 && sz.Height > 0 {
		a.cfg.WindowW = int(sz.Width)
		a.cfg.WindowH = int(sz.Height)
	}
	if err := a.cfg.Save(); err != nil {
		a.log.Warn("config save", zap.Error(err))
	}
	a.grid.Objects = nil
	a.grid.Refresh()
	a.stop()
	a.status.Close()
	logging.Sync(a.log)
	a.w.Close()
	a.fa.Quit()
}

// stop closes the job queue and waits for the worker to drain it.
func (a *App) stop() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.jobs)
	}
	a.mu.Unlock()
	<-a.stopped
}
