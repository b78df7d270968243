//go:build linux

package hostsrc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	dbus "github.com/godbus/dbus/v5"

	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/xslog"
)

// DBus watches UPower and BlueZ on the system bus.
type DBus struct {
	tracker
	bus    *dbus.Conn
	logger *slog.Logger

	mu      sync.Mutex
	closed  bool
	cleanup []func()
}

// New connects to the system bus and reads the initial state. addr limits
// the bluetooth link to one device address; empty means any device.
func New(addr string, logger *slog.Logger) (*DBus, error) {
	bus, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("hostsrc: connect system bus: %w", err)
	}
	d := &DBus{tracker: tracker{addr: addr}, bus: bus, logger: logger}
	d.cleanup = append(d.cleanup, func() { bus.Close() })

	if err := d.refresh(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *DBus) refresh() error {
	var props map[string]dbus.Variant
	obj := d.bus.Object(upowerService, upowerDisplayPath)
	if call := obj.Call(propsIface+".GetAll", 0, upowerDeviceIface); call.Err != nil {
		return fmt.Errorf("hostsrc: UPower GetAll: %w", call.Err)
	} else if err := call.Store(&props); err != nil {
		return fmt.Errorf("hostsrc: decode UPower GetAll: %w", err)
	}
	d.setBattery(props)

	objs, err := d.managedObjects()
	if err != nil {
		// No BlueZ on this host; the link reads as disconnected.
		d.logger.Warn("bluez unavailable", xslog.Error(err))
		return nil
	}
	d.setConnected(connectedFromObjects(objs, d.addr))
	return nil
}

func (d *DBus) managedObjects() (ManagedObjects, error) {
	var objs ManagedObjects
	obj := d.bus.Object(bluezService, dbus.ObjectPath("/"))
	if call := obj.Call(objManagerIface+".GetManagedObjects", 0); call.Err != nil {
		return nil, fmt.Errorf("hostsrc: GetManagedObjects: %w", call.Err)
	} else if err := call.Store(&objs); err != nil {
		return nil, fmt.Errorf("hostsrc: decode GetManagedObjects: %w", err)
	}
	return objs, nil
}

// Watch delivers battery and link changes to handler until ctx is canceled.
func (d *DBus) Watch(ctx context.Context, handler func(face.Event)) error {
	match := []dbus.MatchOption{
		dbus.WithMatchInterface(propsIface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
	if err := d.bus.AddMatchSignal(match...); err != nil {
		return fmt.Errorf("hostsrc: AddMatchSignal: %w", err)
	}
	defer func() { _ = d.bus.RemoveMatchSignal(match...) }()

	sigCh := make(chan *dbus.Signal, 16)
	d.bus.Signal(sigCh)
	defer d.bus.RemoveSignal(sigCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-sigCh:
			if !ok {
				return errors.New("hostsrc: signal channel closed")
			}
			ev, err := d.onSignal(sig, d.managedObjects)
			if err != nil {
				d.logger.Warn("hostsrc: signal dropped", xslog.Error(err))
				continue
			}
			if ev != nil {
				handler(ev)
			}
		}
	}
}

// Close disconnects from the bus. Safe for concurrent and redundant calls.
func (d *DBus) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	cleanup := d.cleanup
	d.cleanup = nil
	d.mu.Unlock()

	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
	return nil
}
