package viewerapp

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"

	"github.com/edward-ap/datviewer/internal/config"
	"github.com/edward-ap/datviewer/internal/gallery"
	"github.com/edward-ap/datviewer/internal/render"
	"github.com/edward-ap/datviewer/internal/waveform"
)

type fakeClipboard struct{ content string }

func (c *fakeClipboard) SetContent(s string) { c.content = s }

func writeDat(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.dat")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const threeChannels = "0\t1\t2\t\n1\t2\t3\t\n2\t3\t4\t\n3\t2\t1\t\n"

func newTestApp(t *testing.T) (*App, *fakeClipboard) {
	t.Helper()
	fa := test.NewApp()
	t.Cleanup(func() { test.NewApp() })

	cfg := config.Default()
	cfg.ThumbSize = 40
	a, err := newApp(fa, cfg, nil)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.stop)
	cb := &fakeClipboard{}
	a.clipboard = cb
	return a, cb
}

func TestOpenFileShowsOneTilePerChannel(t *testing.T) {
	a, _ := newTestApp(t)
	path := writeDat(t, threeChannels)

	a.OpenFile(path)
	a.wait()

	if got, want := a.w.Title(), gallery.DefaultTitle+" ["+path+"]"; got != want {
		t.Fatalf("title = %q, want %q", got, want)
	}
	if len(a.tiles) != 3 || len(a.grid.Objects) != 3 {
		t.Fatalf("tiles = %d, grid objects = %d, want 3", len(a.tiles), len(a.grid.Objects))
	}
	if !strings.Contains(a.status.Text(), "3 channels x 4 samples") {
		t.Fatalf("status = %q", a.status.Text())
	}
	for _, p := range a.shown {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("thumbnail %s missing: %v", p, err)
		}
	}
}

func TestSelectionCopiedInPickOrder(t *testing.T) {
	a, cb := newTestApp(t)
	a.OpenFile(writeDat(t, threeChannels))
	a.wait()

	if !a.copyBtn.Disabled() {
		t.Fatal("copy enabled with empty selection")
	}
	test.Tap(a.tiles[3])
	test.Tap(a.tiles[1])
	a.wait()
	if a.copyBtn.Disabled() {
		t.Fatal("copy disabled with a selection")
	}
	if a.selLbl.Text != "2 selected" {
		t.Fatalf("selection label = %q", a.selLbl.Text)
	}

	a.copySelection()
	a.wait()
	if cb.content != "3 1" {
		t.Fatalf("clipboard = %q, want %q", cb.content, "3 1")
	}

	a.clearSelection()
	a.wait()
	cb.content = ""
	a.copySelection()
	a.wait()
	if cb.content != "" {
		t.Fatalf("empty selection copied %q", cb.content)
	}
	if a.status.Text() != "No channels selected" {
		t.Fatalf("status = %q", a.status.Text())
	}
}

func TestGainKeysRerenderAndKeepSelection(t *testing.T) {
	a, _ := newTestApp(t)
	a.OpenFile(writeDat(t, threeChannels))
	a.wait()
	test.Tap(a.tiles[2])
	a.wait()
	before := append([]string(nil), a.shown...)

	a.w.Canvas().OnTypedRune()('+')
	a.wait()
	if a.gainLbl.Text != "Gain 2" {
		t.Fatalf("gain label = %q", a.gainLbl.Text)
	}
	if sameThumbs(before, toThumbs(a.shown)) {
		t.Fatal("tiles were not rebuilt after a gain change")
	}
	for _, p := range before {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("old thumbnail %s still on disk", p)
		}
	}
	if !a.tiles[2].Selected() {
		t.Fatal("selection lost across gain change")
	}

	a.w.Canvas().OnTypedRune()('-')
	a.w.Canvas().OnTypedRune()('-')
	a.wait()
	if a.gainLbl.Text != "Gain 0.5" {
		t.Fatalf("gain label = %q", a.gainLbl.Text)
	}
}

func toThumbs(paths []string) []gallery.Thumbnail {
	out := make([]gallery.Thumbnail, len(paths))
	for i, p := range paths {
		out[i] = gallery.Thumbnail{Channel: i + 1, Path: p}
	}
	return out
}

func TestGainWithoutFileFlashesHint(t *testing.T) {
	a, _ := newTestApp(t)
	a.increaseGain()
	a.wait()
	if a.status.Text() != "Open a .dat file first" {
		t.Fatalf("status = %q", a.status.Text())
	}
	if a.w.Title() != gallery.DefaultTitle {
		t.Fatalf("title = %q", a.w.Title())
	}
}

func TestBadFileKeepsGallery(t *testing.T) {
	a, _ := newTestApp(t)
	good := writeDat(t, threeChannels)
	a.OpenFile(good)
	a.wait()

	bad := filepath.Join(t.TempDir(), "bad.dat")
	if err := os.WriteFile(bad, []byte("1\tx\t\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a.OpenFile(bad)
	a.wait()

	if len(a.tiles) != 3 {
		t.Fatalf("tiles = %d after a failed open, want 3", len(a.tiles))
	}
	if !strings.Contains(a.w.Title(), good) {
		t.Fatalf("title = %q, want the previous file", a.w.Title())
	}
}

func TestDropOpensFirstFile(t *testing.T) {
	a, _ := newTestApp(t)
	path := writeDat(t, threeChannels)

	a.handleDrop(fyne.Position{}, []fyne.URI{storage.NewFileURI(path)})
	a.wait()

	if len(a.tiles) != 3 {
		t.Fatalf("tiles = %d, want 3", len(a.tiles))
	}
	if a.cfg.LastDir != filepath.Dir(path) {
		t.Fatalf("LastDir = %q, want %q", a.cfg.LastDir, filepath.Dir(path))
	}
}

func TestStopRemovesTempFiles(t *testing.T) {
	a, _ := newTestApp(t)
	a.OpenFile(writeDat(t, threeChannels))
	a.wait()
	files := append([]string(nil), a.shown...)
	if len(files) == 0 {
		t.Fatal("no thumbnails rendered")
	}

	a.stop()
	for _, p := range files {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("%s survived shutdown", p)
		}
	}
	if a.submit(func() {}) {
		t.Fatal("submit accepted a job after stop")
	}
}

func TestAppIconIsPNG(t *testing.T) {
	icon := AppIcon()
	if icon == nil {
		t.Fatal("no icon")
	}
	if !strings.HasPrefix(string(icon.Content()), "\x89PNG") {
		t.Fatal("icon content is not a PNG")
	}
}

// renderFunc adapts a function to render.Renderer.
type renderFunc func(trace []float64, scale waveform.Scale, dpi int) (image.Image, error)

func (f renderFunc) Render(trace []float64, scale waveform.Scale, dpi int) (image.Image, error) {
	return f(trace, scale, dpi)
}

func TestShownThumbnailsStayOnDiskWhileRerendering(t *testing.T) {
	a, _ := newTestApp(t)
	a.OpenFile(writeDat(t, threeChannels))
	a.wait()

	// Runs on the worker in the middle of a pass, while the grid still
	// shows the previous one.
	calls := 0
	var missing []string
	checking := renderFunc(func(trace []float64, scale waveform.Scale, dpi int) (image.Image, error) {
		calls++
		for _, p := range a.shown {
			if _, err := os.Stat(p); err != nil {
				missing = append(missing, p)
			}
		}
		return render.PlotRenderer{}.Render(trace, scale, dpi)
	})
	a.run("switch renderer", func(p *gallery.Presenter) error { return p.SetRenderer(checking) })
	a.wait()
	before := append([]string(nil), a.shown...)

	a.increaseGain()
	a.wait()
	a.decreaseGain()
	a.wait()

	if calls != 9 {
		t.Fatalf("renderer called %d times, want 9", calls)
	}
	if len(missing) != 0 {
		t.Fatalf("displayed thumbnails deleted during a render pass: %v", missing)
	}
	for _, p := range before {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("replaced thumbnail %s never removed", p)
		}
	}
	for _, p := range a.shown {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("shown thumbnail %s missing: %v", p, err)
		}
	}
}

func TestOpenFilter(t *testing.T) {
	if openFilter(true) != nil {
		t.Fatal("any-file open must not filter")
	}
	f := openFilter(false)
	tests := []struct {
		path string
		want bool
	}{
		{path: "/data/scan.dat", want: true},
		{path: "/data/scan.txt", want: false},
		{path: "/data/scan", want: false},
	}
	for _, tt := range tests {
		if got := f.Matches(storage.NewFileURI(tt.path)); got != tt.want {
			t.Errorf("Matches(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFileMenuOffersAnyFile(t *testing.T) {
	a, _ := newTestApp(t)
	menu := a.w.MainMenu()
	if menu == nil || len(menu.Items) == 0 {
		t.Fatal("no main menu")
	}
	var labels []string
	for _, it := range menu.Items[0].Items {
		labels = append(labels, it.Label)
	}
	if strings.Join(labels, "|") != "Open .dat file...|Open any file..." {
		t.Fatalf("File menu = %v", labels)
	}
}
