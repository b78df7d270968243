package face

import (
	"image"
	"image/color"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

// ScreenOp is one recorded screen call.
type ScreenOp struct {
	Op      string // "bitmap", "text", "hidden", "dirty"
	Element Element
	Icon    logic.IconID
	Text    string
	Hidden  bool
}

// FakeScreen records screen calls and tracks the resulting layer state.
type FakeScreen struct {
	Ops     []ScreenOp
	Bitmaps map[Element]logic.IconID
	Texts   map[Element]string
	Hidden  map[Element]bool
	Dirty   map[Element]int
}

// NewFakeScreen creates an empty FakeScreen.
func NewFakeScreen() *FakeScreen {
	return &FakeScreen{
		Bitmaps: make(map[Element]logic.IconID),
		Texts:   make(map[Element]string),
		Hidden:  make(map[Element]bool),
		Dirty:   make(map[Element]int),
	}
}

func (f *FakeScreen) SetBitmap(el Element, icon logic.IconID) {
	f.Ops = append(f.Ops, ScreenOp{Op: "bitmap", Element: el, Icon: icon})
	f.Bitmaps[el] = icon
}

func (f *FakeScreen) SetText(el Element, text string) {
	f.Ops = append(f.Ops, ScreenOp{Op: "text", Element: el, Text: text})
	f.Texts[el] = text
}

func (f *FakeScreen) SetHidden(el Element, hidden bool) {
	f.Ops = append(f.Ops, ScreenOp{Op: "hidden", Element: el, Hidden: hidden})
	f.Hidden[el] = hidden
}

func (f *FakeScreen) MarkDirty(el Element) {
	f.Ops = append(f.Ops, ScreenOp{Op: "dirty", Element: el})
	f.Dirty[el]++
}

// Reset clears recorded ops but keeps the layer state.
func (f *FakeScreen) Reset() {
	f.Ops = nil
}

// DrawCmd is one recorded canvas call.
type DrawCmd struct {
	Op     string // "clear", "fill", "stroke", "circle"
	Points []image.Point
	Center image.Point
	Radius int
	Color  color.Color
}

// FakeCanvas records drawing commands.
type FakeCanvas struct {
	Rect image.Rectangle
	Cmds []DrawCmd
}

// NewFakeCanvas creates a canvas with the given bounds.
func NewFakeCanvas(r image.Rectangle) *FakeCanvas {
	return &FakeCanvas{Rect: r}
}

func (f *FakeCanvas) Bounds() image.Rectangle { return f.Rect }

func (f *FakeCanvas) Clear() {
	f.Cmds = append(f.Cmds, DrawCmd{Op: "clear"})
}

func (f *FakeCanvas) FillPolygon(pts []image.Point, c color.Color) {
	f.Cmds = append(f.Cmds, DrawCmd{Op: "fill", Points: append([]image.Point(nil), pts...), Color: c})
}

func (f *FakeCanvas) StrokePolygon(pts []image.Point, c color.Color) {
	f.Cmds = append(f.Cmds, DrawCmd{Op: "stroke", Points: append([]image.Point(nil), pts...), Color: c})
}

func (f *FakeCanvas) FillCircle(center image.Point, radius int, c color.Color) {
	f.Cmds = append(f.Cmds, DrawCmd{Op: "circle", Center: center, Radius: radius, Color: c})
}

// FakeVibrator records the time of each pulse.
type FakeVibrator struct {
	Now    func() time.Time
	Pulses []time.Time
}

func (f *FakeVibrator) ShortPulse() {
	var t time.Time
	if f.Now != nil {
		t = f.Now()
	}
	f.Pulses = append(f.Pulses, t)
}

// FakeSources serves fixed battery and bluetooth snapshots.
type FakeSources struct {
	Battery   logic.BatteryState
	Connected bool
}

func (f *FakeSources) PeekBattery() logic.BatteryState { return f.Battery }

func (f *FakeSources) PeekBluetooth() bool { return f.Connected }
