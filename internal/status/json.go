package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Distance      *RangeJSON   `json:"distance,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counters      CountersJSON `json:"counters"`
	Config        ConfigJSON   `json:"config"`
}

// RangeJSON is the JSON representation of the latest distance sample.
type RangeJSON struct {
	DistanceCm float64 `json:"distance_cm"`
	Tick       uint32  `json:"tick"`
	SampledAt  string  `json:"sampled_at"`
}

// MQTTStatus reports MQTT mirror connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountersJSON is the JSON representation of publish and drop counters.
type CountersJSON struct {
	Heartbeats     uint64 `json:"heartbeats"`
	Distances      uint64 `json:"distances"`
	EnqueueDrops   uint64 `json:"enqueue_drops"`
	Suppressed     uint64 `json:"suppressed_samples"`
	SendDrops      uint64 `json:"send_drops"`
	EdgeDrops      uint64 `json:"edge_drops"`
	DiscardedEdges uint64 `json:"discarded_edges"`
	QueueDepth     int    `json:"queue_depth"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Iface           string `json:"iface"`
	NodeID          int    `json:"node_id"`
	TriggerPin      int    `json:"trigger_pin"`
	EchoPin         int    `json:"echo_pin"`
	TriggerPeriodMs int64  `json:"trigger_period_ms"`
	QueueCapacity   int    `json:"queue_capacity"`
	Broker          string `json:"broker,omitempty"`
	HTTPAddr        string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counters: CountersJSON{
			Heartbeats:     snap.Publish.Heartbeats,
			Distances:      snap.Publish.Distances,
			EnqueueDrops:   snap.Publish.EnqueueDrops,
			Suppressed:     snap.Publish.Suppressed,
			SendDrops:      snap.SendDrops,
			EdgeDrops:      snap.EdgeDrops,
			DiscardedEdges: snap.DiscardedEdges,
			QueueDepth:     snap.QueueDepth,
		},
		Config: ConfigJSON{
			Iface:           snap.Config.Iface,
			NodeID:          snap.Config.NodeID,
			TriggerPin:      snap.Config.TriggerPin,
			EchoPin:         snap.Config.EchoPin,
			TriggerPeriodMs: snap.Config.TriggerPeriodMs,
			QueueCapacity:   snap.Config.QueueCapacity,
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
		},
	}

	if snap.HasSample {
		inner.Distance = &RangeJSON{
			DistanceCm: snap.LastDistanceCm,
			Tick:       snap.LastTick,
			SampledAt:  snap.LastSampleAt.UTC().Format(time.RFC3339Nano),
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
