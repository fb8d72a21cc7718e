package cyphal

// DefaultQueueCapacity bounds the transmit queue when no explicit capacity
// is given. At 20 Hz ranging plus 1 Hz heartbeat this is several seconds of
// backlog before pushes start failing.
const DefaultQueueCapacity = 64

// TxQueue is a bounded transmit queue ordered by priority (FIFO within one
// priority level). Push encodes a transfer into a frame; Peek and Pop hand
// frames to the drain loop. Not safe for concurrent use: the scheduler and
// drain loop both run on the main goroutine.
type TxQueue struct {
	source uint8
	cap    int
	frames []Frame
}

// NewTxQueue creates a queue for frames originating from the given node-ID.
// A capacity <= 0 selects DefaultQueueCapacity.
func NewTxQueue(source uint8, capacity int) *TxQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &TxQueue{
		source: source,
		cap:    capacity,
		frames: make([]Frame, 0, capacity),
	}
}

// Push encodes the transfer and inserts its frame in priority order.
// The queue owns the frame until Pop removes it.
func (q *TxQueue) Push(t Transfer) error {
	if len(t.Payload) > MaxPayload {
		return ErrPayloadTooLarge
	}
	if len(q.frames) >= q.cap {
		return ErrQueueFull
	}

	f := singleFrame(t, q.source)

	// Insert after the last frame with priority <= ours.
	i := len(q.frames)
	for i > 0 && q.frames[i-1].priority > f.priority {
		i--
	}
	q.frames = append(q.frames, Frame{})
	copy(q.frames[i+1:], q.frames[i:])
	q.frames[i] = f
	return nil
}

// Peek returns the highest-priority queued frame without removing it.
func (q *TxQueue) Peek() (Frame, bool) {
	if len(q.frames) == 0 {
		return Frame{}, false
	}
	return q.frames[0], true
}

// Pop removes the frame last returned by Peek. Each pushed frame is removed
// at most once; popping an empty queue is a no-op.
func (q *TxQueue) Pop() {
	if len(q.frames) == 0 {
		return
	}
	copy(q.frames, q.frames[1:])
	q.frames = q.frames[:len(q.frames)-1]
}

// Len returns the number of queued frames.
func (q *TxQueue) Len() int {
	return len(q.frames)
}
