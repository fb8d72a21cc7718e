// Package status provides a thread-safe status tracker for the rangenode
// daemon. It is read by the HTTP handlers and by the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/node"
)

// Config contains daemon configuration for display.
type Config struct {
	Iface           string
	NodeID          int
	TriggerPin      int
	EchoPin         int
	TriggerPeriodMs int64
	QueueCapacity   int
	Broker          string // MQTT mirror broker (empty = disabled)
	HTTPAddr        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and stays valid after the lock is released.
type Snapshot struct {
	HasSample      bool
	LastDistanceCm float64
	LastTick       uint32
	LastSampleAt   time.Time

	Publish        node.Counters
	SendDrops      uint64 // frames lost on the CAN socket
	EdgeDrops      uint64 // edges lost to a full edge channel
	DiscardedEdges uint64 // falling edges with no preceding rising edge
	QueueDepth     int

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// SetSample records the latest distance measurement.
func (t *Tracker) SetSample(distanceCm float64, tick uint32, at time.Time) {
	t.mu.Lock()
	t.snap.HasSample = true
	t.snap.LastDistanceCm = distanceCm
	t.snap.LastTick = tick
	t.snap.LastSampleAt = at
	t.mu.Unlock()
}

// Update sets the publish counters and queue state.
// Called from the main loop after every drain pass.
func (t *Tracker) Update(publish node.Counters, sendDrops, edgeDrops, discarded uint64, queueDepth int) {
	t.mu.Lock()
	t.snap.Publish = publish
	t.snap.SendDrops = sendDrops
	t.snap.EdgeDrops = edgeDrops
	t.snap.DiscardedEdges = discarded
	t.snap.QueueDepth = queueDepth
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT mirror connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
