//go:build !linux

package hostsrc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sweeney/watchface/internal/face"
)

// DBus is not available on non-Linux platforms.
type DBus struct {
	tracker
}

// New returns an error on non-Linux platforms.
func New(addr string, logger *slog.Logger) (*DBus, error) {
	return nil, errors.New("hostsrc: not supported on this platform (requires Linux)")
}

// Watch is not implemented on non-Linux platforms.
func (d *DBus) Watch(ctx context.Context, handler func(face.Event)) error {
	return errors.New("hostsrc: not supported")
}

// Close is a no-op on non-Linux platforms.
func (d *DBus) Close() error { return nil }
