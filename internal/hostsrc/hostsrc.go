// Package hostsrc reads the battery and the phone link of the host machine
// over the D-Bus system bus: UPower's display device for the battery and
// BlueZ Device1 objects for the bluetooth link.
package hostsrc

import (
	"math"
	"strings"
	"sync"

	dbus "github.com/godbus/dbus/v5"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/logic"
)

const (
	upowerService     = "org.freedesktop.UPower"
	upowerDeviceIface = "org.freedesktop.UPower.Device"
	upowerDisplayPath = dbus.ObjectPath("/org/freedesktop/UPower/devices/DisplayDevice")

	bluezService    = "org.bluez"
	deviceIface     = "org.bluez.Device1"
	objManagerIface = "org.freedesktop.DBus.ObjectManager"
	propsIface      = "org.freedesktop.DBus.Properties"
)

// UPower device states.
const (
	upowerCharging         uint32 = 1
	upowerFullyCharged     uint32 = 4
	upowerPendingCharge    uint32 = 5
	upowerPendingDischarge uint32 = 6
)

// ManagedObjects is the reply shape of ObjectManager.GetManagedObjects.
type ManagedObjects = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// batteryFromProps maps UPower device properties to a battery sample.
// Missing properties keep the values from prev.
func batteryFromProps(prev logic.BatteryState, props map[string]dbus.Variant) logic.BatteryState {
	s := prev
	if v, ok := props["Percentage"]; ok {
		if pct, ok := v.Value().(float64); ok {
			s.Level = clampLevel(int(math.Round(pct)))
		}
	}
	if v, ok := props["State"]; ok {
		if st, ok := v.Value().(uint32); ok {
			s.Charging = st == upowerCharging
			s.Plugged = st == upowerCharging || st == upowerFullyCharged ||
				st == upowerPendingCharge || st == upowerPendingDischarge
		}
	}
	return s
}

func clampLevel(l int) int {
	switch {
	case l < 0:
		return 0
	case l > 100:
		return 100
	default:
		return l
	}
}

// connectedFromObjects reports whether any BlueZ device is connected. With
// addr set, only the device with that address counts.
func connectedFromObjects(objs ManagedObjects, addr string) bool {
	for _, ifaces := range objs {
		props, ok := ifaces[deviceIface]
		if !ok {
			continue
		}
		if addr != "" {
			v, ok := props["Address"]
			a, _ := v.Value().(string)
			if !ok || !strings.EqualFold(a, addr) {
				continue
			}
		}
		if v, ok := props["Connected"]; ok {
			if c, _ := v.Value().(bool); c {
				return true
			}
		}
	}
	return false
}

// tracker holds the last known host state and turns PropertiesChanged
// signals into face events. Safe for concurrent use.
type tracker struct {
	addr string

	mu        sync.RWMutex
	battery   logic.BatteryState
	connected bool
}

func (t *tracker) PeekBattery() logic.BatteryState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.battery
}

func (t *tracker) PeekBluetooth() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

func (t *tracker) setBattery(props map[string]dbus.Variant) (logic.BatteryState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := batteryFromProps(t.battery, props)
	changed := next != t.battery
	t.battery = next
	return next, changed
}

func (t *tracker) setConnected(c bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	changed := c != t.connected
	t.connected = c
	return changed
}

// onSignal handles one PropertiesChanged signal. A device link change is
// resolved with lookup, since several devices may be paired.
func (t *tracker) onSignal(sig *dbus.Signal, lookup func() (ManagedObjects, error)) (face.Event, error) {
	if sig.Name != propsIface+".PropertiesChanged" || len(sig.Body) < 2 {
		return nil, nil
	}
	iface, _ := sig.Body[0].(string)
	changed, _ := sig.Body[1].(map[string]dbus.Variant)

	switch {
	case sig.Path == upowerDisplayPath && iface == upowerDeviceIface:
		if s, ok := t.setBattery(changed); ok {
			return face.BatteryChanged{State: s}, nil
		}
	case iface == deviceIface:
		if _, ok := changed["Connected"]; !ok {
			return nil, nil
		}
		objs, err := lookup()
		if err != nil {
			return nil, err
		}
		c := connectedFromObjects(objs, t.addr)
		if t.setConnected(c) {
			return face.BluetoothChanged{Connected: c}, nil
		}
	}
	return nil, nil
}
