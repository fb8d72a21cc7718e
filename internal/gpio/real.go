//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/ranging"
)

// RealSensor drives an HC-SR04 through the Linux GPIO character device.
type RealSensor struct {
	chip    *gpiocdev.Chip
	trigger *gpiocdev.Line
	echo    *gpiocdev.Line
	echoPin int
	edges   chan ranging.Edge
	dropped atomic.Uint64
}

// NewRealSensor requests the trigger output and the echo input on actual
// Raspberry Pi hardware. Echo edges are timestamped by the kernel with the
// monotonic clock and delivered on the Edges channel.
func NewRealSensor(triggerPin, echoPin int) (*RealSensor, error) {
	chip, err := gpiocdev.NewChip("gpiochip0", gpiocdev.WithConsumer("rangenode"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &RealSensor{
		chip:    chip,
		echoPin: echoPin,
		edges:   make(chan ranging.Edge, EdgeBuffer),
	}

	// Trigger starts low; the pulse is the only time it goes high.
	trigger, err := chip.RequestLine(triggerPin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request trigger pin %d: %w", triggerPin, err)
	}
	s.trigger = trigger

	// Echo as input with pull-down, both edges, kernel-timestamped events.
	echo, err := chip.RequestLine(echoPin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handleEdge))
	if err != nil {
		trigger.Close()
		chip.Close()
		return nil, fmt.Errorf("request echo pin %d: %w", echoPin, err)
	}
	s.echo = echo

	return s, nil
}

// handleEdge runs on the go-gpiocdev event goroutine. It must never block:
// a full channel drops the edge and counts it.
func (s *RealSensor) handleEdge(evt gpiocdev.LineEvent) {
	level := ranging.LevelLow
	if evt.Type == gpiocdev.LineEventRisingEdge {
		level = ranging.LevelHigh
	}

	e := ranging.Edge{
		Pin:   s.echoPin,
		Level: level,
		// Kernel monotonic timestamp truncated to a wrapping 32-bit
		// microsecond tick.
		Tick: uint32(evt.Timestamp / time.Microsecond),
	}

	select {
	case s.edges <- e:
	default:
		s.dropped.Add(1)
	}
}

// Trigger emits the 10 µs measurement pulse. The width sits near the
// sensor's minimum threshold, so the wait is a busy spin rather than
// time.Sleep, whose granularity on a Pi easily exceeds the pulse itself.
func (s *RealSensor) Trigger() error {
	if err := s.trigger.SetValue(1); err != nil {
		return fmt.Errorf("trigger high: %w", err)
	}
	start := time.Now()
	for time.Since(start) < PulseWidth {
	}
	if err := s.trigger.SetValue(0); err != nil {
		return fmt.Errorf("trigger low: %w", err)
	}
	return nil
}

// Edges returns the echo edge channel.
func (s *RealSensor) Edges() <-chan ranging.Edge {
	return s.edges
}

// Dropped returns the number of edges discarded due to a full channel.
func (s *RealSensor) Dropped() uint64 {
	return s.dropped.Load()
}

// Close drives the trigger low and releases the lines and chip.
func (s *RealSensor) Close() error {
	var errs []error

	if s.trigger != nil {
		if err := s.trigger.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("trigger low: %w", err))
		}
		if err := s.trigger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trigger pin: %w", err))
		}
	}
	if s.echo != nil {
		if err := s.echo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close echo pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
