package node

import (
	"time"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/ranging"
)

// Counters tracks publish activity and drops since startup.
type Counters struct {
	Heartbeats   uint64 // heartbeat transfers enqueued
	Distances    uint64 // distance transfers enqueued
	EnqueueDrops uint64 // transfers dropped because the queue refused them
	Suppressed   uint64 // samples suppressed before reaching the queue
}

// Publisher decides subject, priority and transfer-ID for each outbound
// message and hands it to the transmit queue. It owns the per-subject
// transfer-ID counters and the heartbeat schedule; all fields are touched
// only by the main loop.
type Publisher struct {
	q     *cyphal.TxQueue
	start time.Time

	nextHeartbeat time.Time
	heartbeatTID  uint8
	distanceTID   uint8

	counters Counters
}

// NewPublisher creates a Publisher whose heartbeat schedule is phase-locked
// to the given start time; the first heartbeat is due one second in.
func NewPublisher(q *cyphal.TxQueue, start time.Time) *Publisher {
	return &Publisher{
		q:             q,
		start:         start,
		nextHeartbeat: start.Add(time.Second),
	}
}

// CheckHeartbeat enqueues a heartbeat if one is due. At most one heartbeat
// fires per call regardless of how late the check runs: missed seconds are
// not backfilled, the schedule advances by one second and resynchronises to
// the current second after a stall. The transfer-ID counter advances only
// on successful enqueue.
func (p *Publisher) CheckHeartbeat(now time.Time) (bool, error) {
	if now.Before(p.nextHeartbeat) {
		return false, nil
	}

	p.nextHeartbeat = p.nextHeartbeat.Add(time.Second)
	if !p.nextHeartbeat.After(now) {
		// The loop stalled past the next slot; realign to the start phase.
		p.nextHeartbeat = p.start.Add(now.Sub(p.start).Truncate(time.Second) + time.Second)
	}

	uptime := uint32(now.Sub(p.start) / time.Second)
	err := p.q.Push(cyphal.Transfer{
		Priority:   cyphal.PriorityNominal,
		SubjectID:  HeartbeatSubjectID,
		TransferID: p.heartbeatTID,
		Payload:    EncodeHeartbeat(uptime),
	})
	if err != nil {
		p.counters.EnqueueDrops++
		return true, err
	}
	p.heartbeatTID++
	p.counters.Heartbeats++
	return true, nil
}

// PublishDistance enqueues a distance transfer for one completed ranging
// cycle. Non-finite distances are suppressed; enqueue failures are dropped
// and counted, never retried.
func (p *Publisher) PublishDistance(m ranging.Measurement) error {
	payload, err := EncodeDistance(m.DistanceCm)
	if err != nil {
		p.counters.Suppressed++
		return err
	}

	err = p.q.Push(cyphal.Transfer{
		Priority:   cyphal.PriorityNominal,
		SubjectID:  DistanceSubjectID,
		TransferID: p.distanceTID,
		Payload:    payload,
	})
	if err != nil {
		p.counters.EnqueueDrops++
		return err
	}
	p.distanceTID++
	p.counters.Distances++
	return nil
}

// Stats returns a copy of the publish counters.
func (p *Publisher) Stats() Counters {
	return p.counters
}
