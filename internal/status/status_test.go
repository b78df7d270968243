package status

import (
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/logic"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleFace() face.Snapshot {
	t := logic.TimeSample{Hour: 15, Minute: 0, Day: 7}
	return face.Snapshot{
		Time:          t,
		DateText:      "07",
		Overlay:       logic.Hidden,
		Battery:       logic.BatteryState{Level: 20},
		Bluetooth:     logic.BluetoothState{Connected: false, AlreadyVibrated: true},
		BatteryIcon:   logic.IconBattery20,
		BluetoothIcon: logic.IconBluetoothDisconnected,
		DateHidden:    false,
		Hands:         logic.ComputeHandAngles(t),
		Counts:        face.Counts{Taps: 2, OverlayShows: 3, OverlayHides: 3, Alerts: 1, Pulses: 2, Redraws: 9},
	}
}

func TestNewTracker(t *testing.T) {
	cfg := Config{Source: "mqtt", Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.HTTPAddr != ":8080" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":8080")
	}
	if snap.Ready {
		t.Error("expected Ready=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(sampleFace())

	snap := tr.Snapshot()
	if !snap.Ready {
		t.Error("expected Ready=true after Update")
	}
	if snap.Face.Battery.Level != 20 {
		t.Errorf("Face.Battery.Level: got %d, want 20", snap.Face.Battery.Level)
	}
	if snap.LastNotice != "" {
		t.Errorf("Update should not set LastNotice, got %q", snap.LastNotice)
	}
}

func TestObserveNotice(t *testing.T) {
	tr := NewTracker(start, Config{})
	at := start.Add(time.Minute)

	tr.Observe(face.Notice{Timestamp: at, Type: face.NoticeBTAlert, Snapshot: sampleFace()})

	snap := tr.Snapshot()
	if snap.LastNotice != face.NoticeBTAlert {
		t.Errorf("LastNotice: got %q", snap.LastNotice)
	}
	if !snap.LastNoticeAt.Equal(at) {
		t.Errorf("LastNoticeAt: got %v", snap.LastNoticeAt)
	}
	if !snap.Face.Bluetooth.AlreadyVibrated {
		t.Error("notice snapshot not stored")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(start, Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(sampleFace())

	snap1 := tr.Snapshot()

	next := sampleFace()
	next.Battery.Level = 90
	tr.Update(next)

	if snap1.Face.Battery.Level != 20 {
		t.Error("snapshot should be a copy; battery was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	snap := Snapshot{
		Face:          sampleFace(),
		Ready:         true,
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Source: "mqtt", HeartbeatMs: 900000, Broker: "tcp://localhost:1883", HTTPAddr: ":8080", Badge: true},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if !s.Ready {
		t.Error("expected Ready=true")
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if !s.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if s.Face.Time != "15:00" || s.Face.Date != "07" {
		t.Errorf("time/date: got %q/%q", s.Face.Time, s.Face.Date)
	}
	if s.Face.Overlay != "HIDDEN" {
		t.Errorf("Overlay: got %q", s.Face.Overlay)
	}
	if s.Face.Icons.Battery != "ICON_BATTERY_20" || s.Face.Icons.Bluetooth != "BLUETOOTH_DISCONNECTED" {
		t.Errorf("icons: got %+v", s.Face.Icons)
	}
	// 15:00 puts the hour hand at 3 o'clock and the minute hand at 12.
	if s.Face.Hands.HourDeg != 90 || s.Face.Hands.MinuteDeg != 0 {
		t.Errorf("hands: got %+v", s.Face.Hands)
	}
	if s.Counts.Alerts != 1 || s.Counts.Redraws != 9 {
		t.Errorf("counts: got %+v", s.Counts)
	}
	if !s.Config.Badge || s.Config.Source != "mqtt" {
		t.Errorf("config: got %+v", s.Config)
	}
	// Event, Reason and LastNotice should be omitted
	if s.Event != "" || s.Reason != "" {
		t.Errorf("expected empty Event/Reason for web format, got %q/%q", s.Event, s.Reason)
	}
	if s.LastNotice != nil {
		t.Errorf("expected no last notice, got %+v", s.LastNotice)
	}
}

func TestFormatJSONBeforeStart(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Second),
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Status.Face.Overlay != "UNKNOWN" {
		t.Errorf("Overlay: got %q, want UNKNOWN", parsed.Status.Face.Overlay)
	}
	if parsed.Status.Ready {
		t.Error("expected Ready=false")
	}
}

func TestFormatJSONLastNotice(t *testing.T) {
	snap := Snapshot{
		Face:         sampleFace(),
		LastNotice:   face.NoticeOverlayShown,
		LastNoticeAt: start.Add(time.Minute),
		StartTime:    start,
		Now:          start.Add(2 * time.Minute),
	}

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &parsed); err != nil {
		t.Fatal(err)
	}
	want := NoticeJSON{Type: "OVERLAY_SHOWN", Timestamp: "2026-01-01T00:01:00Z"}
	if parsed.Status.LastNotice == nil || *parsed.Status.LastNotice != want {
		t.Errorf("LastNotice: got %+v, want %+v", parsed.Status.LastNotice, want)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{
		Face:          sampleFace(),
		Ready:         true,
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("Reason: got %q, want empty", parsed.Status.Reason)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Second),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	// Verify "reason" is not in the raw JSON output
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			fs := sampleFace()
			fs.Counts.Redraws = i
			tr.Update(fs)
			tr.Observe(face.Notice{Type: face.NoticeBattery, Snapshot: fs})
			tr.SetMQTTConnected(i%2 == 0)
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
