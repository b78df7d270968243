package web

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/logic"
	"github.com/sweeney/watchface/internal/status"
	"github.com/sweeney/watchface/internal/xslog"
)

type stubFrame struct {
	err error
}

func (s stubFrame) PNG(w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	return png.Encode(w, image.NewRGBA(image.Rect(0, 0, 144, 168)))
}

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Source:      "mqtt",
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		Prefix:      "watchface",
		HTTPAddr:    ":80",
		Badge:       true,
	}
	tr := status.NewTracker(start, cfg)
	opts = append([]Option{WithLogger(xslog.Discard())}, opts...)
	srv := New(":0", tr, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func sampleFace() face.Snapshot {
	tm := logic.TimeSample{Hour: 10, Minute: 9, Day: 28}
	return face.Snapshot{
		Time:          tm,
		DateText:      "28",
		Overlay:       logic.Showing,
		Battery:       logic.BatteryState{Level: 60},
		Bluetooth:     logic.BluetoothState{Connected: true},
		BatteryIcon:   logic.IconBattery60,
		BluetoothIcon: logic.IconBluetoothConnected,
		Hands:         logic.ComputeHandAngles(tm),
		Counts:        face.Counts{Taps: 5, OverlayShows: 6, OverlayHides: 5},
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(sampleFace())
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Face.Overlay != "SHOWING" {
		t.Errorf("Overlay: got %q, want SHOWING", sj.Status.Face.Overlay)
	}
	if sj.Status.Face.Time != "10:09" {
		t.Errorf("Time: got %q, want 10:09", sj.Status.Face.Time)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Taps != 5 {
		t.Errorf("Counts.Taps: got %d, want 5", sj.Status.Counts.Taps)
	}
	if sj.Status.Face.Icons.Battery != "ICON_BATTERY_60" {
		t.Errorf("Icons.Battery: got %q", sj.Status.Face.Icons.Battery)
	}
	if sj.Status.Config.Source != "mqtt" {
		t.Errorf("Config.Source: got %q", sj.Status.Config.Source)
	}
}

func TestJSONUnknownOverlayBeforeStart(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Face.Overlay != "UNKNOWN" {
		t.Errorf("Overlay before start: got %q, want UNKNOWN", sj.Status.Face.Overlay)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, WithFrame(stubFrame{}))
	tr.Update(sampleFace())

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"10:09", "SHOWING", "ICON_BATTERY_60", `src="/face.png"`} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("page missing %q", want)
		}
	}
	if bytes.Contains(body, []byte("tap-form")) {
		t.Error("tap button shown without a tap sink")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestFacePNG(t *testing.T) {
	ts, _ := newTestServer(t, WithFrame(stubFrame{}))

	resp, err := http.Get(ts.URL + "/face.png")
	if err != nil {
		t.Fatalf("GET /face.png: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type: got %q, want image/png", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(144, 168) {
		t.Errorf("size: got %v", got)
	}
}

func TestFacePNGWithoutFrame(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/face.png")
	if err != nil {
		t.Fatalf("GET /face.png: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestFacePNGRenderError(t *testing.T) {
	ts, _ := newTestServer(t, WithFrame(stubFrame{err: errors.New("boom")}))

	resp, err := http.Get(ts.URL + "/face.png")
	if err != nil {
		t.Fatalf("GET /face.png: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 500 {
		t.Errorf("status: got %d, want 500", resp.StatusCode)
	}
}

func TestTapInjectsEvent(t *testing.T) {
	events := make(chan face.Event, 1)
	ts, _ := newTestServer(t, WithTaps(events))

	resp, err := http.Post(ts.URL+"/tap", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /tap: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status: got %d, want 202", resp.StatusCode)
	}
	select {
	case ev := <-events:
		if _, ok := ev.(face.Tapped); !ok {
			t.Errorf("event: got %T, want face.Tapped", ev)
		}
	default:
		t.Fatal("no event delivered")
	}
}

func TestTapQueueFull(t *testing.T) {
	events := make(chan face.Event, 1)
	events <- face.Tapped{}
	ts, _ := newTestServer(t, WithTaps(events))

	resp, err := http.Post(ts.URL+"/tap", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /tap: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", resp.StatusCode)
	}
}

func TestTapRejectsGet(t *testing.T) {
	events := make(chan face.Event, 1)
	ts, _ := newTestServer(t, WithTaps(events))

	resp, err := http.Get(ts.URL + "/tap")
	if err != nil {
		t.Fatalf("GET /tap: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
	if len(events) != 0 {
		t.Error("GET should not deliver a tap")
	}
}

func TestTapWithoutSink(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/tap", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /tap: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	// Initially not started
	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	// Update state
	fs := sampleFace()
	fs.Bluetooth = logic.BluetoothState{Connected: false, AlreadyVibrated: true}
	tr.Observe(face.Notice{Timestamp: time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC), Type: face.NoticeBTAlert, Snapshot: fs})
	tr.SetMQTTConnected(true)

	// Should reflect new state
	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if !sj2.Status.Face.Bluetooth.AlreadyVibrated {
		t.Error("expected already_vibrated after alert")
	}
	if sj2.Status.LastNotice == nil || sj2.Status.LastNotice.Type != "BT_ALERT" {
		t.Errorf("LastNotice: got %+v", sj2.Status.LastNotice)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
