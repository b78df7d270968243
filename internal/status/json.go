package status

import (
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Ready         bool        `json:"ready"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Face          FaceJSON    `json:"face"`
	Counts        CountsJSON  `json:"counts"`
	LastNotice    *NoticeJSON `json:"last_notice,omitempty"`
	Config        ConfigJSON  `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// FaceJSON is what the face currently displays.
type FaceJSON struct {
	Time      string        `json:"time"`
	Date      string        `json:"date"`
	Overlay   string        `json:"overlay"`
	Battery   BatteryJSON   `json:"battery"`
	Bluetooth BluetoothJSON `json:"bluetooth"`
	Icons     IconsJSON     `json:"icons"`
	Hands     HandsJSON     `json:"hands"`
}

// BatteryJSON is the JSON representation of the battery sample.
type BatteryJSON struct {
	Level    int  `json:"level"`
	Plugged  bool `json:"plugged"`
	Charging bool `json:"charging"`
}

// BluetoothJSON is the JSON representation of the link state.
type BluetoothJSON struct {
	Connected       bool `json:"connected"`
	AlreadyVibrated bool `json:"already_vibrated"`
}

// IconsJSON is the JSON representation of the derived icons.
type IconsJSON struct {
	Battery         string `json:"battery"`
	BatteryHidden   bool   `json:"battery_hidden"`
	Bluetooth       string `json:"bluetooth"`
	BluetoothHidden bool   `json:"bluetooth_hidden"`
	DateHidden      bool   `json:"date_hidden"`
}

// HandsJSON gives the hand angles in degrees clockwise from 12 o'clock.
type HandsJSON struct {
	HourDeg   float64 `json:"hour_deg"`
	MinuteDeg float64 `json:"minute_deg"`
}

// CountsJSON is the JSON representation of controller counts.
type CountsJSON struct {
	Taps         int `json:"taps"`
	OverlayShows int `json:"overlay_shows"`
	OverlayHides int `json:"overlay_hides"`
	Alerts       int `json:"alerts"`
	Pulses       int `json:"pulses"`
	Redraws      int `json:"redraws"`
}

// NoticeJSON is the most recent face notice.
type NoticeJSON struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Source      string `json:"source"`
	Broker      string `json:"broker"`
	Prefix      string `json:"prefix"`
	HTTPAddr    string `json:"http_addr"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Badge       bool   `json:"badge"`
	HideDate    bool   `json:"hide_date"`
}

func degrees(fraction float64) float64 {
	return math.Round(fraction*360*10) / 10
}

func buildInner(snap Snapshot) StatusInner {
	f := snap.Face
	overlay := string(f.Overlay)
	if overlay == "" {
		overlay = "UNKNOWN"
	}

	inner := StatusInner{
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Face: FaceJSON{
			Time:    fmt.Sprintf("%02d:%02d", f.Time.Hour, f.Time.Minute),
			Date:    f.DateText,
			Overlay: overlay,
			Battery: BatteryJSON{
				Level:    f.Battery.Level,
				Plugged:  f.Battery.Plugged,
				Charging: f.Battery.Charging,
			},
			Bluetooth: BluetoothJSON{
				Connected:       f.Bluetooth.Connected,
				AlreadyVibrated: f.Bluetooth.AlreadyVibrated,
			},
			Icons: IconsJSON{
				Battery:         string(f.BatteryIcon),
				BatteryHidden:   f.BatteryHidden,
				Bluetooth:       string(f.BluetoothIcon),
				BluetoothHidden: f.BluetoothHidden,
				DateHidden:      f.DateHidden,
			},
			Hands: HandsJSON{
				HourDeg:   degrees(f.Hands.Hour),
				MinuteDeg: degrees(f.Hands.Minute),
			},
		},
		Counts: CountsJSON{
			Taps:         f.Counts.Taps,
			OverlayShows: f.Counts.OverlayShows,
			OverlayHides: f.Counts.OverlayHides,
			Alerts:       f.Counts.Alerts,
			Pulses:       f.Counts.Pulses,
			Redraws:      f.Counts.Redraws,
		},
		Config: ConfigJSON{
			Source:      snap.Config.Source,
			Broker:      snap.Config.Broker,
			Prefix:      snap.Config.Prefix,
			HTTPAddr:    snap.Config.HTTPAddr,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Badge:       snap.Config.Badge,
			HideDate:    snap.Config.HideDate,
		},
	}
	if snap.LastNotice != "" {
		inner.LastNotice = &NoticeJSON{
			Type:      string(snap.LastNotice),
			Timestamp: snap.LastNoticeAt.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
