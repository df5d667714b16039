// Package gallery holds the state behind the thumbnail window: the cached
// dataset of the open file, the current gain, the rendered thumbnails and
// the user's channel selection. It has no UI dependencies so it can be
// driven from the fyne window and from tests alike.
package gallery

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edward-ap/datviewer/internal/logging"
	"github.com/edward-ap/datviewer/internal/render"
	"github.com/edward-ap/datviewer/internal/waveform"
)

// DefaultTitle is the window title without an open file.
const DefaultTitle = "dat File Viewer"

// ErrNoFile is returned by actions that need an open file.
var ErrNoFile = errors.New("gallery: no file open")

// Thumbnail is one rendered channel. Channel numbers are 1-based.
type Thumbnail struct {
	Channel int
	Label   string
	Path    string
}

// Clipboard receives copied selection text. fyne.Clipboard satisfies it.
type Clipboard interface {
	SetContent(content string)
}

// Options configure a Presenter.
type Options struct {
	Renderer   render.Renderer
	ThumbSize  int
	GainFactor float64
	// TempDir holds thumbnail files; os.TempDir when empty.
	TempDir string
	// ReloadOnGain re-reads the file on every gain change instead of
	// reusing the parsed channels.
	ReloadOnGain bool
	// HoldRetired keeps the files of a replaced pass on disk until
	// ReleaseRetired, for views that swap their thumbnails asynchronously.
	HoldRetired bool
	Logger      *zap.Logger
}

// retiredPass is the file set of a replaced render pass.
type retiredPass struct {
	gen   uint64
	paths []string
}

// Presenter owns the gallery state and the temporary files behind it.
type Presenter struct {
	raster       render.Rasterizer
	reloadOnGain bool
	holdRetired  bool
	log          *zap.Logger

	// pass counts render passes; retired files are tagged with the pass
	// that produced them.
	pass    uint64
	retired []retiredPass

	path     string
	data     *waveform.Dataset
	gain     waveform.Gain
	scale    waveform.Scale
	thumbs   []Thumbnail
	selected []int
	lastPass time.Duration
}

// New returns an empty presenter. A nil Renderer selects the default backend.
func New(opts Options) *Presenter {
	r := opts.Renderer
	if r == nil {
		r = render.PlotRenderer{}
	}
	return &Presenter{
		raster: render.Rasterizer{
			Renderer: r,
			Store:    render.NewTempStore(opts.TempDir),
			Size:     render.ClampSize(opts.ThumbSize),
		},
		reloadOnGain: opts.ReloadOnGain,
		holdRetired:  opts.HoldRetired,
		log:          logging.OrNop(opts.Logger),
		gain:         waveform.NewGain(opts.GainFactor),
	}
}

// Open parses path and renders one thumbnail per channel. The file is parsed
// before anything is cleared, so a bad file leaves the current gallery as is.
func (p *Presenter) Open(path string) error {
	p.log.Info("opening file", zap.String("path", path))
	ds, err := waveform.Load(path)
	if err != nil {
		return err
	}
	p.clear()
	p.selected = nil
	p.path = path
	p.data = ds
	p.gain.Reset()
	return p.renderPass()
}

// IncreaseGain zooms in by one gain step and re-renders.
func (p *Presenter) IncreaseGain() error {
	return p.stepGain(p.gain.Increase)
}

// DecreaseGain zooms out by one gain step and re-renders.
func (p *Presenter) DecreaseGain() error {
	return p.stepGain(p.gain.Decrease)
}

// stepGain applies step and re-renders. If the file cannot be re-read the
// gain and the gallery stay as they were.
func (p *Presenter) stepGain(step func()) error {
	if p.data == nil {
		return ErrNoFile
	}
	prev := p.gain
	step()
	if err := p.reload(); err != nil {
		p.gain = prev
		return err
	}
	p.clear()
	return p.renderPass()
}

// SetThumbSize changes the thumbnail edge length and re-renders an open file.
func (p *Presenter) SetThumbSize(px int) error {
	px = render.ClampSize(px)
	if px == p.raster.Size {
		return nil
	}
	p.raster.Size = px
	if p.data == nil {
		return nil
	}
	return p.rerender()
}

// SetRenderer swaps the rendering backend and re-renders an open file.
func (p *Presenter) SetRenderer(r render.Renderer) error {
	if r == nil {
		return errors.New("gallery: nil renderer")
	}
	p.raster.Renderer = r
	if p.data == nil {
		return nil
	}
	return p.rerender()
}

func (p *Presenter) rerender() error {
	if err := p.reload(); err != nil {
		return err
	}
	p.clear()
	return p.renderPass()
}

// reload re-reads the open file when ReloadOnGain is set. The file is
// parsed before anything is cleared, as in Open.
func (p *Presenter) reload() error {
	if !p.reloadOnGain {
		return nil
	}
	ds, err := waveform.Load(p.path)
	if err != nil {
		return err
	}
	p.data = ds
	return nil
}

// renderPass draws every channel of the cached dataset. The thumbnail list
// and the temp store must already be empty. Any failure discards the partial
// pass.
func (p *Presenter) renderPass() error {
	p.pass++
	start := time.Now()
	traces := p.data.Traces()
	scale, err := waveform.SharedScale(traces, p.gain.Value)
	if err != nil {
		p.discard()
		return err
	}
	p.scale = scale
	thumbs := make([]Thumbnail, 0, len(traces))
	for i, tr := range traces {
		path, err := p.raster.Rasterize(tr, scale)
		if err != nil {
			p.discard()
			return fmt.Errorf("render channel %d: %w", i+1, err)
		}
		thumbs = append(thumbs, Thumbnail{Channel: i + 1, Label: strconv.Itoa(i + 1), Path: path})
	}
	p.thumbs = thumbs
	p.pruneSelection()
	p.lastPass = time.Since(start)
	p.log.Info("done rendering traces",
		zap.Int("channels", len(thumbs)),
		zap.Int("samples", p.data.Samples()),
		zap.Float64("gain", p.gain.Value),
		zap.Duration("elapsed", p.lastPass))
	return nil
}

// clear drops the thumbnail list first and only then lets go of the files,
// so no thumbnail ever points at a removed file. With HoldRetired the files
// are only set aside.
func (p *Presenter) clear() {
	p.thumbs = nil
	if p.raster.Store.Len() == 0 {
		return
	}
	if p.holdRetired {
		p.retired = append(p.retired, retiredPass{gen: p.pass, paths: p.raster.Store.Detach()})
		return
	}
	p.purgeStore()
}

// discard throws away a failed pass. Its files were never shown.
func (p *Presenter) discard() {
	p.thumbs = nil
	p.pruneSelection()
	p.purgeStore()
}

func (p *Presenter) purgeStore() {
	if p.raster.Store.Len() == 0 {
		return
	}
	p.log.Debug("removing temp files", zap.Int("count", p.raster.Store.Len()))
	if err := p.raster.Store.Purge(); err != nil {
		p.log.Warn("temp file cleanup", zap.Error(err))
	}
}

// Generation identifies the current render pass. A view showing the
// thumbnails of generation g may call ReleaseRetired(g).
func (p *Presenter) Generation() uint64 { return p.pass }

// ReleaseRetired removes the files of every pass older than shown.
func (p *Presenter) ReleaseRetired(shown uint64) error {
	var errs []error
	kept := p.retired[:0]
	for _, r := range p.retired {
		if r.gen >= shown {
			kept = append(kept, r)
			continue
		}
		p.log.Debug("removing temp files", zap.Int("count", len(r.paths)))
		if err := render.RemoveFiles(r.paths); err != nil {
			errs = append(errs, err)
		}
	}
	p.retired = kept
	return errors.Join(errs...)
}

// RetiredFiles lists files of replaced passes that are still on disk.
func (p *Presenter) RetiredFiles() []string {
	var out []string
	for _, r := range p.retired {
		out = append(out, r.paths...)
	}
	return out
}

// Close releases every temporary file. The presenter stays usable.
func (p *Presenter) Close() error {
	p.thumbs = nil
	p.selected = nil
	var errs []error
	for _, r := range p.retired {
		errs = append(errs, render.RemoveFiles(r.paths))
	}
	p.retired = nil
	errs = append(errs, p.raster.Store.Purge())
	return errors.Join(errs...)
}

// Thumbnails returns the current thumbnails in channel order.
func (p *Presenter) Thumbnails() []Thumbnail {
	return append([]Thumbnail(nil), p.thumbs...)
}

// TempFiles returns the paths of all temporary files currently owned.
func (p *Presenter) TempFiles() []string { return p.raster.Store.Paths() }

// Path returns the open file, or "".
func (p *Presenter) Path() string { return p.path }

// Gain returns the current gain value.
func (p *Presenter) Gain() float64 { return p.gain.Value }

// Scale returns the shared scale of the last render pass.
func (p *Presenter) Scale() waveform.Scale { return p.scale }

// ThumbSize returns the thumbnail edge length in pixels.
func (p *Presenter) ThumbSize() int { return p.raster.Size }

// LastRender returns how long the last render pass took.
func (p *Presenter) LastRender() time.Duration { return p.lastPass }

// Dataset returns the cached dataset, or nil.
func (p *Presenter) Dataset() *waveform.Dataset { return p.data }

// Title returns the window title for the current state.
func (p *Presenter) Title() string {
	if p.path == "" {
		return DefaultTitle
	}
	return fmt.Sprintf("%s [%s]", DefaultTitle, p.path)
}

// ShortName returns the base name of the open file.
func (p *Presenter) ShortName() string {
	if p.path == "" {
		return ""
	}
	return filepath.Base(p.path)
}

// Toggle flips the selection state of channel and reports the new state.
func (p *Presenter) Toggle(channel int) bool {
	if p.IsSelected(channel) {
		p.Deselect(channel)
		return false
	}
	return p.Select(channel)
}

// Select appends channel to the selection. Unknown or already selected
// channels are ignored; the result reports whether channel is selected.
func (p *Presenter) Select(channel int) bool {
	if channel < 1 || channel > len(p.thumbs) {
		return false
	}
	if !p.IsSelected(channel) {
		p.selected = append(p.selected, channel)
	}
	return true
}

// Deselect removes channel from the selection.
func (p *Presenter) Deselect(channel int) {
	for i, c := range p.selected {
		if c == channel {
			p.selected = append(p.selected[:i], p.selected[i+1:]...)
			return
		}
	}
}

// ClearSelection empties the selection.
func (p *Presenter) ClearSelection() { p.selected = nil }

// IsSelected reports whether channel is selected.
func (p *Presenter) IsSelected(channel int) bool {
	for _, c := range p.selected {
		if c == channel {
			return true
		}
	}
	return false
}

// Selected returns selected channel numbers in the order they were picked.
func (p *Presenter) Selected() []int { return append([]int(nil), p.selected...) }

// SelectionText joins the selected channel labels with single spaces.
func (p *Presenter) SelectionText() string {
	labels := make([]string, len(p.selected))
	for i, c := range p.selected {
		labels[i] = strconv.Itoa(c)
	}
	return strings.Join(labels, " ")
}

// CopySelection writes SelectionText to cb and returns it.
func (p *Presenter) CopySelection(cb Clipboard) string {
	text := p.SelectionText()
	if cb != nil {
		cb.SetContent(text)
	}
	p.log.Info("selection copied", zap.String("channels", text))
	return text
}

// pruneSelection drops channels that no longer exist after a render pass.
func (p *Presenter) pruneSelection() {
	kept := p.selected[:0]
	for _, c := range p.selected {
		if c >= 1 && c <= len(p.thumbs) {
			kept = append(kept, c)
		}
	}
	p.selected = kept
}
