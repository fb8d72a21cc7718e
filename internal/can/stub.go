//go:build !linux

package can

import (
	"errors"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
)

// RealBus is not available on non-Linux platforms (SocketCAN is Linux-only).
type RealBus struct{}

// NewRealBus returns an error on non-Linux platforms.
func NewRealBus(ifaceName string) (*RealBus, error) {
	return nil, errors.New("can: SocketCAN not supported on this platform (requires Linux)")
}

// Send is not implemented on non-Linux platforms.
func (b *RealBus) Send(f cyphal.Frame) error {
	return errors.New("can: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *RealBus) Close() error {
	return nil
}
