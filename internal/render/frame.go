// Package render composites the face layers into an image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/logic"
)

// Screen dimensions of the watch display.
const (
	Width  = 144
	Height = 168
)

// Resources resolves icon and font identifiers.
type Resources interface {
	Icon(id logic.IconID) (image.Image, error)
	Font(id logic.FontID) (font.Face, error)
}

// layerSpec is the fixed placement of one layer.
type layerSpec struct {
	rect image.Rectangle
	// fill paints the layer rect before its content, nil for transparent.
	fill color.Color
}

var layout = map[face.Element]layerSpec{
	face.ElementBackground: {rect: image.Rect(0, 0, Width, Height)},
	face.ElementDateWindow: {rect: image.Rect(117, 75, 117+27, 75+21)},
	face.ElementDateText:   {rect: image.Rect(119, 72, 119+30, 72+30)},
	face.ElementBluetooth:  {rect: image.Rect(60, 139, 60+24, 139+24)},
	face.ElementBattery:    {rect: image.Rect(53, 4, 53+41, 4+24), fill: color.Black},
	face.ElementHands:      {rect: image.Rect(0, 0, Width, Height)},
}

// order is the back-to-front compositing order.
var order = []face.Element{
	face.ElementBackground,
	face.ElementDateWindow,
	face.ElementDateText,
	face.ElementBluetooth,
	face.ElementBattery,
	face.ElementHands,
}

type layer struct {
	icon   logic.IconID
	text   string
	hidden bool
	dirty  int
}

// Frame is the software display. It implements face.Screen for the bitmap
// and text layers and face.Canvas for the hands layer. Safe for concurrent
// use: the event loop mutates it while HTTP handlers render it.
type Frame struct {
	mu     sync.RWMutex
	res    Resources
	date   font.Face
	layers map[face.Element]*layer
	hands  *image.RGBA
}

var (
	_ face.Screen      = (*Frame)(nil)
	_ face.BatchCanvas = (*Frame)(nil)
)

// NewFrame resolves every icon and the date font up front. Any missing
// resource is an error so the face never starts half drawn.
func NewFrame(res Resources) (*Frame, error) {
	for _, id := range logic.AllIcons {
		if _, err := res.Icon(id); err != nil {
			return nil, fmt.Errorf("resolve icon %s: %w", id, err)
		}
	}
	date, err := res.Font(logic.FontDate)
	if err != nil {
		return nil, fmt.Errorf("resolve font %s: %w", logic.FontDate, err)
	}

	f := &Frame{
		res:    res,
		date:   date,
		layers: make(map[face.Element]*layer, len(order)),
		hands:  image.NewRGBA(image.Rect(0, 0, Width, Height)),
	}
	for _, el := range order {
		f.layers[el] = &layer{}
	}
	return f, nil
}

func (f *Frame) SetBitmap(el face.Element, icon logic.IconID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.layers[el]; ok {
		l.icon = icon
	}
}

func (f *Frame) SetText(el face.Element, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.layers[el]; ok {
		l.text = text
	}
}

func (f *Frame) SetHidden(el face.Element, hidden bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.layers[el]; ok {
		l.hidden = hidden
	}
}

func (f *Frame) MarkDirty(el face.Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.layers[el]; ok {
		l.dirty++
	}
}

// Hidden reports whether el is currently hidden.
func (f *Frame) Hidden(el face.Element) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	l, ok := f.layers[el]
	return !ok || l.hidden
}

func (f *Frame) Bounds() image.Rectangle {
	return f.hands.Bounds()
}

// Clear makes the hands layer fully transparent.
func (f *Frame) Clear() {
	f.Batch(func(c face.Canvas) { c.Clear() })
}

func (f *Frame) FillPolygon(pts []image.Point, c color.Color) {
	f.Batch(func(cv face.Canvas) { cv.FillPolygon(pts, c) })
}

func (f *Frame) StrokePolygon(pts []image.Point, c color.Color) {
	f.Batch(func(cv face.Canvas) { cv.StrokePolygon(pts, c) })
}

func (f *Frame) FillCircle(center image.Point, radius int, c color.Color) {
	f.Batch(func(cv face.Canvas) { cv.FillCircle(center, radius, c) })
}

// Batch runs fn with the hands layer locked. Render waits for fn to return.
func (f *Frame) Batch(fn func(face.Canvas)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(handsLayer{f.hands})
}

// handsLayer draws straight onto the hands image. Callers hold the lock.
type handsLayer struct {
	img *image.RGBA
}

func (h handsLayer) Bounds() image.Rectangle { return h.img.Bounds() }

func (h handsLayer) Clear() {
	draw.Draw(h.img, h.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (h handsLayer) FillPolygon(pts []image.Point, c color.Color) {
	FillPolygon(h.img, pts, c)
}

func (h handsLayer) StrokePolygon(pts []image.Point, c color.Color) {
	StrokePolygon(h.img, pts, c)
}

func (h handsLayer) FillCircle(center image.Point, radius int, c color.Color) {
	FillCircle(h.img, center, radius, c)
}

// Render composites the visible layers back to front. It takes the write
// lock because font faces keep per-glyph caches.
func (f *Frame) Render() *image.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	FillRect(img, img.Bounds(), color.Black)

	for _, el := range order {
		l := f.layers[el]
		if l.hidden {
			continue
		}
		geo := layout[el]
		dst := img.SubImage(geo.rect).(*image.RGBA)
		if geo.fill != nil {
			FillRect(dst, geo.rect, geo.fill)
		}
		switch {
		case el == face.ElementHands:
			draw.Draw(img, img.Bounds(), f.hands, image.Point{}, draw.Over)
		case el == face.ElementDateText:
			f.drawText(dst, geo.rect, l.text)
		case l.icon != "":
			f.drawIcon(dst, geo.rect, l.icon)
		}
	}
	return img
}

func (f *Frame) drawIcon(dst *image.RGBA, r image.Rectangle, id logic.IconID) {
	icon, err := f.res.Icon(id)
	if err != nil {
		// Resolved in NewFrame; only a Resources that changed underneath us gets here.
		return
	}
	draw.Draw(dst, r, icon, icon.Bounds().Min, draw.Over)
}

func (f *Frame) drawText(dst *image.RGBA, r image.Rectangle, text string) {
	if text == "" {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: f.date,
		Dot:  fixed.P(r.Min.X, r.Min.Y+f.date.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// PNG encodes the current frame.
func (f *Frame) PNG(w io.Writer) error {
	return png.Encode(w, f.Render())
}
