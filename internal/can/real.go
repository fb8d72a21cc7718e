//go:build linux

package can

import (
	"fmt"
	"net"

	socketcan "github.com/brutella/can"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
)

// effFlag marks a SocketCAN frame ID as 29-bit extended.
const effFlag uint32 = 1 << 31

// RealBus sends frames over a SocketCAN interface.
type RealBus struct {
	bus    *socketcan.Bus
	closed bool
}

// NewRealBus opens the named SocketCAN interface (e.g. "can0", "vcan0").
func NewRealBus(ifaceName string) (*RealBus, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("lookup interface %s: %w", ifaceName, err)
	}

	conn, err := socketcan.NewReadWriteCloserForInterface(iface)
	if err != nil {
		return nil, fmt.Errorf("open CAN socket on %s: %w", ifaceName, err)
	}

	return &RealBus{bus: socketcan.NewBus(conn)}, nil
}

// Send publishes one extended frame on the socket.
func (b *RealBus) Send(f cyphal.Frame) error {
	if b.closed {
		return ErrClosed
	}
	frame := socketcan.Frame{
		ID:     f.ID | effFlag,
		Length: f.Length,
	}
	copy(frame.Data[:], f.Data[:])
	if err := b.bus.Publish(frame); err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	return nil
}

// Close disconnects from the socket.
func (b *RealBus) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.bus.Disconnect()
}
