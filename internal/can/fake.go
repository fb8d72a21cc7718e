package can

import (
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
)

// FakeBus records sent frames for test assertions.
type FakeBus struct {
	// Frames contains every frame for which Send succeeded.
	Frames []cyphal.Frame

	// SendError, if set, will be returned by every Send call.
	SendError error

	// FailOn contains zero-based Send call indices that return SendErrOnce
	// (or SendError if SendErrOnce is nil). Lets tests fail specific frames.
	FailOn map[int]bool

	// SendErrOnce is the error returned for calls listed in FailOn.
	SendErrOnce error

	// Calls counts every Send call, successful or not.
	Calls int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeBus creates a FakeBus for testing.
func NewFakeBus() *FakeBus {
	return &FakeBus{}
}

// Send records the frame, or fails if scripted to.
func (b *FakeBus) Send(f cyphal.Frame) error {
	i := b.Calls
	b.Calls++

	if b.SendError != nil {
		return b.SendError
	}
	if b.FailOn[i] {
		if b.SendErrOnce != nil {
			return b.SendErrOnce
		}
		return ErrClosed
	}

	b.Frames = append(b.Frames, f)
	return nil
}

// Close marks the bus as closed.
func (b *FakeBus) Close() error {
	b.Closed = true
	return nil
}

// Reset clears recorded frames and scripted failures.
func (b *FakeBus) Reset() {
	b.Frames = nil
	b.SendError = nil
	b.FailOn = nil
	b.SendErrOnce = nil
	b.Calls = 0
	b.Closed = false
}
