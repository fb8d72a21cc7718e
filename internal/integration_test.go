package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/can"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/gpio"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/mqtt"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/node"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/ranging"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/status"
)

// TestIntegrationFullFlow drives the complete pipeline with fakes: scripted
// echo edges through the ranging state machine, the scheduler, the transmit
// queue and the drain loop, down to the frames a bus peer would see.
func TestIntegrationFullFlow(t *testing.T) {
	const nodeID = 42
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sensor := gpio.NewFakeSensor()
	bus := can.NewFakeBus()
	queue := cyphal.NewTxQueue(nodeID, 16)
	pub := node.NewPublisher(queue, start)
	var sm ranging.StateMachine

	// Three ranging cycles at the 20 Hz cadence, interleaved with heartbeat
	// checks at every cycle. Simulated wall clock reaches 1.1 s, so exactly
	// one heartbeat joins the three distance transfers.
	cycles := []struct {
		high, low uint32
		at        time.Duration
	}{
		{1000, 1100, 50 * time.Millisecond},
		{51000, 51400, 100 * time.Millisecond},
		{1001000, 1001058, 1100 * time.Millisecond},
	}

	for _, c := range cycles {
		sensor.InjectEdge(ranging.Edge{Pin: gpio.DefaultEchoPin, Level: ranging.LevelHigh, Tick: c.high})
		sensor.InjectEdge(ranging.Edge{Pin: gpio.DefaultEchoPin, Level: ranging.LevelLow, Tick: c.low})

	drain:
		for {
			select {
			case e := <-sensor.Edges():
				if m, ok := sm.OnEdge(e); ok {
					if err := pub.PublishDistance(m); err != nil {
						t.Fatalf("publish distance: %v", err)
					}
				}
			default:
				break drain
			}
		}

		if _, err := pub.CheckHeartbeat(start.Add(c.at)); err != nil {
			t.Fatalf("heartbeat: %v", err)
		}
		node.Drain(queue, bus)
	}

	if queue.Len() != 0 {
		t.Fatalf("queue not drained: %d frames left", queue.Len())
	}

	var distances, heartbeats []cyphal.Frame
	for _, f := range bus.Frames {
		switch uint16(f.ID >> 8 & 0xFFFF) {
		case node.DistanceSubjectID:
			distances = append(distances, f)
		case node.HeartbeatSubjectID:
			heartbeats = append(heartbeats, f)
		default:
			t.Fatalf("unexpected frame ID %#x", f.ID)
		}
	}

	if len(distances) != 3 {
		t.Fatalf("got %d distance frames, want 3", len(distances))
	}
	wantCm := []float64{
		ranging.DistanceFromElapsed(100),
		ranging.DistanceFromElapsed(400),
		ranging.DistanceFromElapsed(58),
	}
	for i, f := range distances {
		// Source node-ID occupies the low byte of the extended ID.
		if f.ID&0xFF != nodeID {
			t.Errorf("frame %d source = %d, want %d", i, f.ID&0xFF, nodeID)
		}
		got, err := node.DecodeDistance(f.Data[:4])
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if got != float64(float32(wantCm[i])) {
			t.Errorf("frame %d distance = %v, want %v", i, got, wantCm[i])
		}
		// Per-cycle transfer-ID.
		if tid := f.Data[4] & 0x1F; tid != uint8(i) {
			t.Errorf("frame %d transfer-ID = %d, want %d", i, tid, i)
		}
	}

	if len(heartbeats) != 1 {
		t.Fatalf("got %d heartbeat frames, want 1", len(heartbeats))
	}
	uptime, err := node.DecodeHeartbeatUptime(heartbeats[0].Data[:7])
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if uptime != 1 {
		t.Errorf("heartbeat uptime = %d, want 1", uptime)
	}

	stats := pub.Stats()
	if stats.Distances != 3 || stats.Heartbeats != 1 || stats.EnqueueDrops != 0 {
		t.Errorf("stats = %+v, want 3 distances, 1 heartbeat, 0 drops", stats)
	}
}

// TestIntegrationStatusAndMirror checks that the status snapshot and the
// MQTT mirror agree on what was published.
func TestIntegrationStatusAndMirror(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	bus := can.NewFakeBus()
	queue := cyphal.NewTxQueue(7, 16)
	pub := node.NewPublisher(queue, start)
	mirror := mqtt.NewFakePublisher()
	tracker := status.NewTracker(start, status.Config{Iface: "vcan0", NodeID: 7})
	var sm ranging.StateMachine

	sm.OnEdge(ranging.Edge{Level: ranging.LevelHigh, Tick: 1000})
	m, ok := sm.OnEdge(ranging.Edge{Level: ranging.LevelLow, Tick: 1100})
	if !ok {
		t.Fatal("expected completed measurement")
	}

	at := start.Add(55 * time.Millisecond)
	if err := pub.PublishDistance(m); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := mirror.Publish(mqtt.Sample{Timestamp: at, DistanceCm: m.DistanceCm, Tick: m.Tick}); err != nil {
		t.Fatalf("mirror: %v", err)
	}
	tracker.SetSample(m.DistanceCm, m.Tick, at)
	res := node.Drain(queue, bus)
	tracker.Update(pub.Stats(), uint64(res.Dropped), 0, sm.Discarded(), queue.Len())

	snap := tracker.Snapshot()
	if snap.LastDistanceCm != m.DistanceCm {
		t.Errorf("tracker distance = %v, want %v", snap.LastDistanceCm, m.DistanceCm)
	}
	if snap.Publish.Distances != 1 {
		t.Errorf("tracker distance count = %d, want 1", snap.Publish.Distances)
	}

	// The mirror payload carries the same measurement the bus saw.
	var payload mqtt.Payload
	if err := json.Unmarshal(mirror.Payloads[0], &payload); err != nil {
		t.Fatalf("unmarshal mirror payload: %v", err)
	}
	if payload.Range.DistanceCm != m.DistanceCm {
		t.Errorf("mirror distance = %v, want %v", payload.Range.DistanceCm, m.DistanceCm)
	}
	wire, err := node.DecodeDistance(bus.Frames[0].Data[:4])
	if err != nil {
		t.Fatalf("decode wire frame: %v", err)
	}
	if float32(wire) != float32(payload.Range.DistanceCm) {
		t.Errorf("wire distance %v disagrees with mirror %v", wire, payload.Range.DistanceCm)
	}
}
