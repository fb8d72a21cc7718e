package node

import (
	"math"
	"testing"
	"time"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/ranging"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// tailTransferID extracts the 5-bit transfer-ID from a single-frame tail byte.
func tailTransferID(f cyphal.Frame) uint8 {
	return f.Data[f.Length-1] & 0x1F
}

// drainAll pops every queued frame for inspection.
func drainAll(q *cyphal.TxQueue) []cyphal.Frame {
	var frames []cyphal.Frame
	for {
		f, ok := q.Peek()
		if !ok {
			return frames
		}
		frames = append(frames, f)
		q.Pop()
	}
}

func TestHeartbeatScheduleOverSimulatedClock(t *testing.T) {
	q := cyphal.NewTxQueue(42, 16)
	p := NewPublisher(q, t0)

	// Simulate 2.5 s of wall clock checked every 50 ms: exactly two
	// heartbeats, uptimes 1 and 2 (first due one second after start).
	for step := 0; step <= 50; step++ {
		now := t0.Add(time.Duration(step) * 50 * time.Millisecond)
		if _, err := p.CheckHeartbeat(now); err != nil {
			t.Fatalf("CheckHeartbeat at step %d: %v", step, err)
		}
	}

	frames := drainAll(q)
	if len(frames) != 2 {
		t.Fatalf("got %d heartbeat frames, want 2", len(frames))
	}
	for i, want := range []uint32{1, 2} {
		uptime, err := DecodeHeartbeatUptime(frames[i].Data[:7])
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if uptime != want {
			t.Errorf("heartbeat %d uptime = %d, want %d", i, uptime, want)
		}
	}
	if p.Stats().Heartbeats != 2 {
		t.Errorf("Heartbeats counter = %d, want 2", p.Stats().Heartbeats)
	}
}

func TestHeartbeatStallResync(t *testing.T) {
	q := cyphal.NewTxQueue(42, 16)
	p := NewPublisher(q, t0)

	// First check happens 5.4 s in: exactly one heartbeat fires, not five.
	fired, err := p.CheckHeartbeat(t0.Add(5400 * time.Millisecond))
	if err != nil || !fired {
		t.Fatalf("fired=%v err=%v, want one heartbeat", fired, err)
	}
	if fired, _ := p.CheckHeartbeat(t0.Add(5600 * time.Millisecond)); fired {
		t.Fatal("heartbeat backfilled after stall")
	}

	// The schedule realigned to the current second: next fires at 6 s.
	fired, _ = p.CheckHeartbeat(t0.Add(6 * time.Second))
	if !fired {
		t.Fatal("heartbeat did not resynchronise after stall")
	}

	frames := drainAll(q)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	uptime, _ := DecodeHeartbeatUptime(frames[0].Data[:7])
	if uptime != 5 {
		t.Errorf("stalled heartbeat uptime = %d, want 5", uptime)
	}
	uptime, _ = DecodeHeartbeatUptime(frames[1].Data[:7])
	if uptime != 6 {
		t.Errorf("resynced heartbeat uptime = %d, want 6", uptime)
	}
}

func TestTransferIDCountersIndependent(t *testing.T) {
	q := cyphal.NewTxQueue(42, 8)
	p := NewPublisher(q, t0)

	// Interleave: distance, heartbeat, distance. Each subject counts its
	// own transfers.
	if err := p.PublishDistance(ranging.Measurement{DistanceCm: 1.0}); err != nil {
		t.Fatalf("PublishDistance: %v", err)
	}
	if _, err := p.CheckHeartbeat(t0.Add(time.Second)); err != nil {
		t.Fatalf("CheckHeartbeat: %v", err)
	}
	if err := p.PublishDistance(ranging.Measurement{DistanceCm: 2.0}); err != nil {
		t.Fatalf("PublishDistance: %v", err)
	}

	var distanceTIDs, heartbeatTIDs []uint8
	for _, f := range drainAll(q) {
		switch uint16(f.ID >> 8 & 0xFFFF) {
		case DistanceSubjectID:
			distanceTIDs = append(distanceTIDs, tailTransferID(f))
		case HeartbeatSubjectID:
			heartbeatTIDs = append(heartbeatTIDs, tailTransferID(f))
		default:
			t.Fatalf("unexpected subject in frame ID %#x", f.ID)
		}
	}

	if len(distanceTIDs) != 2 || distanceTIDs[0] != 0 || distanceTIDs[1] != 1 {
		t.Errorf("distance transfer-IDs = %v, want [0 1]", distanceTIDs)
	}
	if len(heartbeatTIDs) != 1 || heartbeatTIDs[0] != 0 {
		t.Errorf("heartbeat transfer-IDs = %v, want [0]", heartbeatTIDs)
	}
}

func TestDistanceTransferIDWrapsMod256(t *testing.T) {
	q := cyphal.NewTxQueue(42, 4)
	p := NewPublisher(q, t0)

	for i := 0; i < 300; i++ {
		if err := p.PublishDistance(ranging.Measurement{DistanceCm: 10}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
		drainAll(q)
	}

	// 300 mod 256 = 44; the wire carries the low 5 bits: 44 & 31 = 12.
	if err := p.PublishDistance(ranging.Measurement{DistanceCm: 10}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	frames := drainAll(q)
	if got := tailTransferID(frames[0]); got != 44&0x1F {
		t.Errorf("transfer-ID on wire = %d, want %d", got, 44&0x1F)
	}
	if p.Stats().Distances != 301 {
		t.Errorf("Distances counter = %d, want 301", p.Stats().Distances)
	}
}

func TestEnqueueFailureDoesNotAdvanceTransferID(t *testing.T) {
	q := cyphal.NewTxQueue(42, 1)
	p := NewPublisher(q, t0)

	if err := p.PublishDistance(ranging.Measurement{DistanceCm: 1}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	// Queue is full now; this publish is dropped.
	if err := p.PublishDistance(ranging.Measurement{DistanceCm: 2}); err != cyphal.ErrQueueFull {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if p.Stats().EnqueueDrops != 1 {
		t.Errorf("EnqueueDrops = %d, want 1", p.Stats().EnqueueDrops)
	}

	drainAll(q)

	// The next successful publish reuses transfer-ID 1: the drop did not
	// consume a sequence number.
	if err := p.PublishDistance(ranging.Measurement{DistanceCm: 3}); err != nil {
		t.Fatalf("publish after drop: %v", err)
	}
	frames := drainAll(q)
	if got := tailTransferID(frames[0]); got != 1 {
		t.Errorf("transfer-ID = %d, want 1", got)
	}
}

func TestPublishDistanceNonFiniteSuppressed(t *testing.T) {
	q := cyphal.NewTxQueue(42, 8)
	p := NewPublisher(q, t0)

	if err := p.PublishDistance(ranging.Measurement{DistanceCm: math.NaN()}); err != ErrNonFinite {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
	if q.Len() != 0 {
		t.Error("non-finite sample reached the queue")
	}
	if p.Stats().Suppressed != 1 {
		t.Errorf("Suppressed = %d, want 1", p.Stats().Suppressed)
	}
	// Counters for real publishes are unaffected.
	if p.Stats().Distances != 0 {
		t.Errorf("Distances = %d, want 0", p.Stats().Distances)
	}
}
