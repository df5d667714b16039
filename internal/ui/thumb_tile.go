package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var tileClear = color.NRGBA{0, 0, 0, 0}

// ThumbTile shows one channel thumbnail with its number underneath. Tapping
// toggles the selection highlight, matching a multi-select icon list.
type ThumbTile struct {
	widget.BaseWidget

	Channel int
	Label   string
	Path    string
	Edge    float32

	// OnToggled fires after a tap with the new selection state.
	OnToggled func(channel int, selected bool)

	selected bool
}

// NewThumbTile creates a tile for the PNG at path drawn edge x edge.
func NewThumbTile(channel int, label, path string, edge float32) *ThumbTile {
	t := &ThumbTile{Channel: channel, Label: label, Path: path, Edge: edge}
	t.ExtendBaseWidget(t)
	return t
}

// Selected reports the highlight state.
func (t *ThumbTile) Selected() bool { return t.selected }

// SetSelected updates the highlight without firing OnToggled.
func (t *ThumbTile) SetSelected(b bool) {
	if t.selected == b {
		return
	}
	t.selected = b
	t.Refresh()
}

// Tapped toggles selection.
func (t *ThumbTile) Tapped(*fyne.PointEvent) {
	t.selected = !t.selected
	t.Refresh()
	if t.OnToggled != nil {
		t.OnToggled(t.Channel, t.selected)
	}
}

func (t *ThumbTile) CreateRenderer() fyne.WidgetRenderer {
	img := canvas.NewImageFromFile(t.Path)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	img.SetMinSize(fyne.NewSize(t.Edge, t.Edge))

	r := &thumbTileRenderer{
		t:     t,
		bg:    canvas.NewRectangle(tileClear),
		img:   img,
		label: canvas.NewText(t.Label, theme.ForegroundColor()),
	}
	r.label.Alignment = fyne.TextAlignCenter
	r.label.TextSize = theme.CaptionTextSize()
	r.objs = []fyne.CanvasObject{r.bg, r.img, r.label}
	r.Refresh()
	return r
}

// MinSize is the image edge plus room for the caption.
func (t *ThumbTile) MinSize() fyne.Size { return TileSize(t.Edge) }

// TileSize is the cell size a tile with the given image edge needs.
func TileSize(edge float32) fyne.Size {
	pad := theme.Padding()
	return fyne.NewSize(edge+2*pad, edge+theme.CaptionTextSize()+3*pad)
}

type thumbTileRenderer struct {
	t     *ThumbTile
	bg    *canvas.Rectangle
	img   *canvas.Image
	label *canvas.Text
	objs  []fyne.CanvasObject
}

func (r *thumbTileRenderer) Layout(sz fyne.Size) {
	pad := theme.Padding()
	r.bg.Move(fyne.NewPos(0, 0))
	r.bg.Resize(sz)

	edge := r.t.Edge
	r.img.Move(fyne.NewPos((sz.Width-edge)/2, pad))
	r.img.Resize(fyne.NewSize(edge, edge))

	lh := r.label.MinSize().Height
	r.label.Move(fyne.NewPos(0, pad+edge+pad/2))
	r.label.Resize(fyne.NewSize(sz.Width, lh))
}

func (r *thumbTileRenderer) MinSize() fyne.Size { return r.t.MinSize() }

func (r *thumbTileRenderer) Refresh() {
	if r.t.selected {
		r.bg.FillColor = theme.SelectionColor()
		r.bg.StrokeColor = theme.PrimaryColor()
		r.bg.StrokeWidth = 1
	} else {
		r.bg.FillColor = tileClear
		r.bg.StrokeColor = tileClear
		r.bg.StrokeWidth = 0
	}
	r.label.Text = r.t.Label
	r.label.Color = theme.ForegroundColor()
	r.Layout(r.t.Size())
	canvas.Refresh(r.bg)
	canvas.Refresh(r.label)
}

func (r *thumbTileRenderer) Destroy() {}

func (r *thumbTileRenderer) Objects() []fyne.CanvasObject { return r.objs }
