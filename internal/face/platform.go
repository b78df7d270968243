// Package face drives the watch face: it owns the face state, runs the status
// overlay and bluetooth alert state machines, and turns platform events into
// screen updates. Drawing, resources, sources and haptics are collaborators
// supplied through Platform.
package face

import (
	"image"
	"image/color"

	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/timer"
)

// Element identifies a show/hide-able layer of the face.
type Element string

const (
	ElementBackground Element = "background"
	ElementDateWindow Element = "date_window"
	ElementDateText   Element = "date_text"
	ElementBluetooth  Element = "bluetooth"
	ElementBattery    Element = "battery"
	ElementHands      Element = "hands"
)

// Screen is the layer tree of the drawing surface.
type Screen interface {
	SetBitmap(el Element, icon logic.IconID)
	SetText(el Element, text string)
	SetHidden(el Element, hidden bool)
	// MarkDirty schedules el for the next redraw pass.
	MarkDirty(el Element)
}

// Canvas is the drawing target of the hands layer.
type Canvas interface {
	Bounds() image.Rectangle
	Clear()
	FillPolygon(pts []image.Point, c color.Color)
	StrokePolygon(pts []image.Point, c color.Color)
	FillCircle(center image.Point, radius int, c color.Color)
}

// BatchCanvas is a Canvas that can apply a group of calls as one update,
// so concurrent readers never see a partly drawn layer.
type BatchCanvas interface {
	Canvas
	Batch(fn func(Canvas))
}

// Vibrator fires a short haptic pulse. Fire-and-forget.
type Vibrator interface {
	ShortPulse()
}

// BatterySource supplies the current battery snapshot on demand.
type BatterySource interface {
	PeekBattery() logic.BatteryState
}

// BluetoothSource supplies the current link state on demand.
type BluetoothSource interface {
	PeekBluetooth() bool
}

// Subscription is a registration with an event source.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() { f() }

// Platform bundles the collaborators the controller needs.
type Platform struct {
	Scheduler timer.Scheduler
	Screen    Screen
	Canvas    Canvas
	Vibrator  Vibrator
	Battery   BatterySource
	Bluetooth BluetoothSource
}
