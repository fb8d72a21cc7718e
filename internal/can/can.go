// Package can provides the physical CAN socket with hardware abstraction.
// The real implementation wraps a Linux SocketCAN interface; the fake
// implementation records frames for tests.
package can

import (
	"errors"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
)

// ErrClosed indicates the bus has been closed.
var ErrClosed = errors.New("can: bus closed")

// Bus transmits frames onto the physical CAN bus.
type Bus interface {
	// Send pushes one frame onto the bus. A failed send is reported to the
	// caller; it is the caller's decision whether to drop or abort.
	Send(f cyphal.Frame) error

	// Close releases the socket.
	Close() error
}
