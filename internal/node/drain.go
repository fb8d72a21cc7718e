package node

import (
	"log"

	"github.com/bluecorn/raspberry-can-HC-SR04/internal/can"
	"github.com/bluecorn/raspberry-can-HC-SR04/internal/cyphal"
)

// DrainResult reports one drain pass.
type DrainResult struct {
	Sent    int
	Dropped int
}

// Drain moves every queued frame onto the bus, running to exhaustion so no
// backlog survives between main-loop iterations. Each frame leaves the
// queue exactly once whether or not the send succeeded; a failed send is
// logged and counted as a drop, and the loop continues with the next frame.
func Drain(q *cyphal.TxQueue, bus can.Bus) DrainResult {
	var res DrainResult
	for {
		f, ok := q.Peek()
		if !ok {
			return res
		}

		err := bus.Send(f)
		q.Pop()
		if err != nil {
			res.Dropped++
			log.Printf("can send failed, frame dropped: %v", err)
			continue
		}
		res.Sent++
	}
}
