// Package logic contains the pure decision rules of the watch face.
// This package has NO external dependencies (no drawing, timers, OS, or time.Sleep).
// Every function is a mapping from discrete hardware state to what should be shown.
package logic

import "time"

// Visibility is the state of the status overlay.
type Visibility string

const (
	Hidden  Visibility = "HIDDEN"
	Showing Visibility = "SHOWING"
)

// Visible reports whether the overlay is currently showing.
func (v Visibility) Visible() bool {
	return v == Showing
}

// BatteryState is the latest battery sample from the platform.
type BatteryState struct {
	Level    int  // percent, normally one of 0, 10, ..., 100
	Plugged  bool // external power attached
	Charging bool // actively charging (implies Plugged on real hardware)
}

// BluetoothState tracks the phone link and the alert latch.
type BluetoothState struct {
	Connected bool
	// AlreadyVibrated is set when a disconnect alert fires and cleared only
	// on a confirmed reconnect.
	AlreadyVibrated bool
}

// TimeSample is the wall-clock reading that drives the hands and the date window.
type TimeSample struct {
	Hour   int // 0..23
	Minute int // 0..59
	Day    int // 1..31, day of month for the date window
}

// SampleTime converts a wall-clock time into a TimeSample.
func SampleTime(t time.Time) TimeSample {
	return TimeSample{
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Day:    t.Day(),
	}
}

// IconID names a drawable resource. The set is closed; loaders must resolve every ID.
type IconID string

const (
	IconBatteryCharging IconID = "ICON_BATTERY_CHARGING"
	IconBattery100      IconID = "ICON_BATTERY_100"
	IconBattery90       IconID = "ICON_BATTERY_90"
	IconBattery80       IconID = "ICON_BATTERY_80"
	IconBattery70       IconID = "ICON_BATTERY_70"
	IconBattery60       IconID = "ICON_BATTERY_60"
	IconBattery50       IconID = "ICON_BATTERY_50"
	IconBattery40       IconID = "ICON_BATTERY_40"
	IconBattery30       IconID = "ICON_BATTERY_30"
	IconBattery20       IconID = "ICON_BATTERY_20"
	IconBattery10       IconID = "ICON_BATTERY_10"

	IconBluetoothConnected    IconID = "BLUETOOTH_CONNECTED"
	IconBluetoothDisconnected IconID = "BLUETOOTH_DISCONNECTED"

	IconBackgroundBadge   IconID = "IMAGE_BACKGROUND_BADGE"
	IconBackgroundNoBadge IconID = "IMAGE_BACKGROUND_NOBADGE"
	IconDateWindow        IconID = "IMAGE_DATE_WINDOW"
)

// AllIcons lists every icon the face needs. Startup resolves each one.
var AllIcons = []IconID{
	IconBatteryCharging,
	IconBattery100, IconBattery90, IconBattery80, IconBattery70, IconBattery60,
	IconBattery50, IconBattery40, IconBattery30, IconBattery20, IconBattery10,
	IconBluetoothConnected, IconBluetoothDisconnected,
	IconBackgroundBadge, IconBackgroundNoBadge, IconDateWindow,
}

// FontID names a font resource.
type FontID string

const FontDate FontID = "FONT_ROBOTO_CONDENSED_21"
