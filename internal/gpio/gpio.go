// Package gpio provides the ultrasonic sensor pins with hardware abstraction.
// The real implementation uses the Linux GPIO character device; the fake
// implementation allows testing without hardware.
package gpio

import (
	"time"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/ranging"
)

// Sensor drives the trigger pin and delivers echo edges.
type Sensor interface {
	// Trigger emits one measurement pulse on the trigger pin. It blocks
	// only for the pulse width.
	Trigger() error

	// Edges returns the channel carrying echo-pin transitions. Edges are
	// produced by the GPIO event goroutine and consumed by the main loop;
	// when the channel's buffer is full, edges are dropped, not blocked on.
	Edges() <-chan ranging.Edge

	// Dropped returns the number of edges discarded because the channel
	// buffer was full.
	Dropped() uint64

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering).
const (
	DefaultTriggerPin = 18
	DefaultEchoPin    = 24
)

// PulseWidth is the trigger pulse duration. The HC-SR04 requires at least
// 10 µs to start a measurement.
const PulseWidth = 10 * time.Microsecond

// EdgeBuffer is the capacity of the edge channel. One ranging cycle produces
// two edges, so this covers many cycles of main-loop latency.
const EdgeBuffer = 16
