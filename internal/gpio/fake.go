package gpio

import (
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/ranging"
)

// FakeSensor is a test double that counts trigger pulses and lets tests
// inject scripted echo edges.
type FakeSensor struct {
	// Triggers counts calls to Trigger.
	Triggers int

	// TriggerError, if set, will be returned by Trigger.
	TriggerError error

	// Closed tracks if Close was called.
	Closed bool

	edges   chan ranging.Edge
	dropped uint64
}

// NewFakeSensor creates a FakeSensor with a buffered edge channel.
func NewFakeSensor() *FakeSensor {
	return &FakeSensor{edges: make(chan ranging.Edge, EdgeBuffer)}
}

// InjectEdge places an edge on the channel as the hardware would; full
// buffers drop the edge, mirroring the real sensor.
func (f *FakeSensor) InjectEdge(e ranging.Edge) {
	select {
	case f.edges <- e:
	default:
		f.dropped++
	}
}

// Trigger counts the pulse.
func (f *FakeSensor) Trigger() error {
	if f.TriggerError != nil {
		return f.TriggerError
	}
	f.Triggers++
	return nil
}

// Edges returns the scripted edge channel.
func (f *FakeSensor) Edges() <-chan ranging.Edge {
	return f.edges
}

// Dropped returns the number of injected edges that found a full buffer.
func (f *FakeSensor) Dropped() uint64 {
	return f.dropped
}

// Close marks the sensor as closed.
func (f *FakeSensor) Close() error {
	f.Closed = true
	return nil
}
