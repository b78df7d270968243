package face

import (
	"fmt"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

// Timing of the overlay and the bluetooth alert.
const (
	DisplayTimeout = 4000 * time.Millisecond
	GracePeriod    = 5000 * time.Millisecond
	PulseGap       = 350 * time.Millisecond
)

// Config holds the two face flags.
type Config struct {
	// Badge selects the background art with the badge.
	Badge bool `toml:"badge" env:"BADGE"`
	// HideDate makes the date window follow the overlay instead of staying visible.
	HideDate bool `toml:"hide_date" env:"HIDE_DATE"`
}

// DefaultConfig returns the stock face flags.
func DefaultConfig() Config {
	return Config{Badge: true, HideDate: false}
}

// FaceState is the single owned copy of everything the face displays.
// Icons and hidden flags are never stored; they are derived on demand.
type FaceState struct {
	Time      logic.TimeSample
	Battery   logic.BatteryState
	Bluetooth logic.BluetoothState
	Overlay   logic.Visibility
	// DateText caches the rendered day of month.
	DateText string
}

// FormatDate renders the date window text (zero-padded day of month).
func FormatDate(t logic.TimeSample) string {
	return fmt.Sprintf("%02d", t.Day)
}

// Counts tallies controller activity since startup.
type Counts struct {
	Taps         int
	OverlayShows int
	OverlayHides int
	Alerts       int
	Pulses       int
	Redraws      int
}

// Snapshot is a point-in-time view of the face with derived display flags.
// It is a value type and safe to hand to other goroutines.
type Snapshot struct {
	Config          Config
	Time            logic.TimeSample
	DateText        string
	Battery         logic.BatteryState
	Bluetooth       logic.BluetoothState
	Overlay         logic.Visibility
	BatteryIcon     logic.IconID
	BatteryHidden   bool
	BluetoothIcon   logic.IconID
	BluetoothHidden bool
	DateHidden      bool
	Hands           logic.HandAngles
	Counts          Counts
}

func snapshotOf(cfg Config, s *FaceState, counts Counts) Snapshot {
	return Snapshot{
		Config:          cfg,
		Time:            s.Time,
		DateText:        s.DateText,
		Battery:         s.Battery,
		Bluetooth:       s.Bluetooth,
		Overlay:         s.Overlay,
		BatteryIcon:     logic.SelectBatteryIcon(s.Battery, s.Overlay),
		BatteryHidden:   logic.BatteryIconHidden(s.Battery, s.Overlay),
		BluetoothIcon:   logic.SelectBluetoothIcon(s.Bluetooth.Connected),
		BluetoothHidden: logic.BluetoothIconHidden(s.Bluetooth.Connected, s.Overlay),
		DateHidden:      logic.DateHidden(cfg.HideDate, s.Overlay),
		Hands:           logic.ComputeHandAngles(s.Time),
		Counts:          counts,
	}
}
