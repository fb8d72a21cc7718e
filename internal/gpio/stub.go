//go:build !linux

package gpio

import (
	"errors"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/ranging"
)

// RealSensor is not available on non-Linux platforms.
type RealSensor struct{}

// NewRealSensor returns an error on non-Linux platforms.
func NewRealSensor(triggerPin, echoPin int) (*RealSensor, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Trigger is not implemented on non-Linux platforms.
func (s *RealSensor) Trigger() error {
	return errors.New("gpio: not supported")
}

// Edges returns a nil channel on non-Linux platforms.
func (s *RealSensor) Edges() <-chan ranging.Edge {
	return nil
}

// Dropped is not implemented on non-Linux platforms.
func (s *RealSensor) Dropped() uint64 {
	return 0
}

// Close is not implemented on non-Linux platforms.
func (s *RealSensor) Close() error {
	return nil
}
