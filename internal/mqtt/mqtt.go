// Package mqtt provides an optional telemetry mirror of the CAN traffic:
// distance samples and node lifecycle events as JSON, with abstraction for
// testing. The CAN bus stays the source of truth; the mirror is best-effort.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for distance samples.
const Topic = "sensors/range/measurements"

// TopicSystem is the MQTT topic for node lifecycle events.
const TopicSystem = "sensors/range/system"

// Sample is one distance measurement to mirror.
type Sample struct {
	Timestamp  time.Time
	DistanceCm float64
	Tick       uint32
}

// Publisher publishes samples and lifecycle events to MQTT.
type Publisher interface {
	// Publish sends a distance sample to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(s Sample) error

	// PublishSystem sends a node lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a node lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the sample message payload structure.
type Payload struct {
	Range RangePayload `json:"range"`
}

// RangePayload contains the distance sample details.
type RangePayload struct {
	Timestamp  string  `json:"timestamp"`
	DistanceCm float64 `json:"distance_cm"`
	Tick       uint32  `json:"tick"`
}

// FormatPayload creates the JSON payload for a distance sample.
func FormatPayload(s Sample) ([]byte, error) {
	payload := Payload{
		Range: RangePayload{
			Timestamp:  s.Timestamp.UTC().Format(time.RFC3339Nano),
			DistanceCm: s.DistanceCm,
			Tick:       s.Tick,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
