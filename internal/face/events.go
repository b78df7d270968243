package face

import (
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

// Event is a platform notification delivered to the controller.
type Event interface {
	EventName() string
}

// MinuteTick carries the wall-clock time at a minute boundary.
type MinuteTick struct{ Time time.Time }

// BatteryChanged carries a new battery sample.
type BatteryChanged struct{ State logic.BatteryState }

// BluetoothChanged carries a new link state.
type BluetoothChanged struct{ Connected bool }

// Tapped is a tap or shake of the watch.
type Tapped struct{}

// RedrawRequested asks for the hands layer to be drawn.
type RedrawRequested struct{}

func (MinuteTick) EventName() string       { return "minute_tick" }
func (BatteryChanged) EventName() string   { return "battery_change" }
func (BluetoothChanged) EventName() string { return "bluetooth_change" }
func (Tapped) EventName() string           { return "tap" }
func (RedrawRequested) EventName() string  { return "redraw" }

// NoticeType names a state change worth reporting outside the face.
type NoticeType string

const (
	NoticeOverlayShown   NoticeType = "OVERLAY_SHOWN"
	NoticeOverlayHidden  NoticeType = "OVERLAY_HIDDEN"
	NoticeBTConnected    NoticeType = "BT_CONNECTED"
	NoticeBTDisconnected NoticeType = "BT_DISCONNECTED"
	NoticeBTAlert        NoticeType = "BT_ALERT"
	NoticeBattery        NoticeType = "BATTERY_CHANGED"
)

// Notice is emitted to the optional sink after a state change.
type Notice struct {
	Timestamp time.Time
	Type      NoticeType
	Snapshot  Snapshot
}
