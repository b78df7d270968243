// Package mqtt connects the face to a phone bridge over MQTT. Inbound
// topics carry battery and bluetooth snapshots and remote taps; outbound
// topics carry face notices and daemon lifecycle events.
package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/logic"
)

// DefaultPrefix is the topic prefix when none is configured.
const DefaultPrefix = "watchface"

// Topics holds the full topic names under one prefix.
type Topics struct {
	Battery   string // inbound battery snapshots
	Bluetooth string // inbound link state
	Tap       string // inbound remote taps
	Events    string // outbound face notices
	System    string // outbound lifecycle events
}

// NewTopics builds the topic set under prefix.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Topics{
		Battery:   prefix + "/battery",
		Bluetooth: prefix + "/bluetooth",
		Tap:       prefix + "/tap",
		Events:    prefix + "/events",
		System:    prefix + "/system",
	}
}

// Inbound lists the topics the client subscribes to.
func (t Topics) Inbound() []string {
	return []string{t.Battery, t.Bluetooth, t.Tap}
}

// Publisher publishes face notices and lifecycle events.
type Publisher interface {
	// Publish sends a face notice to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(n face.Notice) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Handler receives decoded inbound events. It is called on the MQTT
// client's goroutine and must not block.
type Handler func(face.Event)

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// BatteryPayload is the wire form of a battery snapshot, both directions.
type BatteryPayload struct {
	Level    int  `json:"level"`
	Plugged  bool `json:"plugged"`
	Charging bool `json:"charging"`
}

// BluetoothPayload is the wire form of the link state, both directions.
type BluetoothPayload struct {
	Connected       bool `json:"connected"`
	AlreadyVibrated bool `json:"already_vibrated,omitempty"`
}

// NoticePayload is the outbound envelope for a face notice.
type NoticePayload struct {
	Face FacePayload `json:"face"`
}

// FacePayload contains the notice details.
type FacePayload struct {
	Timestamp string           `json:"timestamp"`
	Event     string           `json:"event"`
	Overlay   string           `json:"overlay"`
	Battery   BatteryPayload   `json:"battery"`
	Bluetooth BluetoothPayload `json:"bluetooth"`
	Icons     IconsPayload     `json:"icons"`
}

// IconsPayload reports what the face currently shows.
type IconsPayload struct {
	Battery         string `json:"battery"`
	BatteryHidden   bool   `json:"battery_hidden"`
	Bluetooth       string `json:"bluetooth"`
	BluetoothHidden bool   `json:"bluetooth_hidden"`
	DateHidden      bool   `json:"date_hidden"`
}

// FormatPayload creates the JSON payload for a face notice.
func FormatPayload(n face.Notice) ([]byte, error) {
	s := n.Snapshot
	payload := NoticePayload{
		Face: FacePayload{
			Timestamp: n.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(n.Type),
			Overlay:   string(s.Overlay),
			Battery: BatteryPayload{
				Level:    s.Battery.Level,
				Plugged:  s.Battery.Plugged,
				Charging: s.Battery.Charging,
			},
			Bluetooth: BluetoothPayload{
				Connected:       s.Bluetooth.Connected,
				AlreadyVibrated: s.Bluetooth.AlreadyVibrated,
			},
			Icons: IconsPayload{
				Battery:         string(s.BatteryIcon),
				BatteryHidden:   s.BatteryHidden,
				Bluetooth:       string(s.BluetoothIcon),
				BluetoothHidden: s.BluetoothHidden,
				DateHidden:      s.DateHidden,
			},
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// ErrBadPayload is returned for inbound messages that cannot be decoded.
var ErrBadPayload = errors.New("bad payload")

// ErrUnknownTopic is returned for messages on a topic outside Topics.Inbound.
var ErrUnknownTopic = errors.New("unknown topic")

// Decode turns an inbound message into a face event.
func (t Topics) Decode(topic string, payload []byte) (face.Event, error) {
	switch topic {
	case t.Battery:
		var p BatteryPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: battery: %v", ErrBadPayload, err)
		}
		if p.Level < 0 || p.Level > 100 {
			return nil, fmt.Errorf("%w: battery level %d out of range", ErrBadPayload, p.Level)
		}
		return face.BatteryChanged{State: logic.BatteryState{
			Level:    p.Level,
			Plugged:  p.Plugged,
			Charging: p.Charging,
		}}, nil
	case t.Bluetooth:
		var p BluetoothPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: bluetooth: %v", ErrBadPayload, err)
		}
		return face.BluetoothChanged{Connected: p.Connected}, nil
	case t.Tap:
		return face.Tapped{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
}

// Cache remembers the last battery and bluetooth snapshots seen on the
// inbound topics so the face can peek them at startup.
// Safe for concurrent use.
type Cache struct {
	mu        sync.RWMutex
	battery   logic.BatteryState
	connected bool
}

// NewCache creates a Cache with the given initial values.
func NewCache(battery logic.BatteryState, connected bool) *Cache {
	return &Cache{battery: battery, connected: connected}
}

// Observe records ev if it carries a snapshot.
func (c *Cache) Observe(ev face.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e := ev.(type) {
	case face.BatteryChanged:
		c.battery = e.State
	case face.BluetoothChanged:
		c.connected = e.Connected
	}
}

func (c *Cache) PeekBattery() logic.BatteryState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.battery
}

func (c *Cache) PeekBluetooth() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
