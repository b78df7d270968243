// Package status provides a thread-safe status tracker for the watchface daemon.
// It is read by HTTP handlers and the MQTT heartbeat while the event loop writes it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/watchface/internal/face"
)

// Config contains daemon configuration for display.
type Config struct {
	Source      string // where battery and bluetooth come from: "mqtt", "dbus" or "fixed"
	Broker      string
	Prefix      string
	HTTPAddr    string
	HeartbeatMs int64
	Badge       bool
	HideDate    bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Face          face.Snapshot
	Ready         bool // true once the face has started
	LastNotice    face.NoticeType
	LastNoticeAt  time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest face snapshot.
// Called from the event loop after startup and after each redraw.
func (t *Tracker) Update(fs face.Snapshot) {
	t.mu.Lock()
	t.snap.Face = fs
	t.snap.Ready = true
	t.mu.Unlock()
}

// Observe records a face notice and the snapshot it carries.
func (t *Tracker) Observe(n face.Notice) {
	t.mu.Lock()
	t.snap.Face = n.Snapshot
	t.snap.Ready = true
	t.snap.LastNotice = n.Type
	t.snap.LastNoticeAt = n.Timestamp
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
