// Package cyphal implements the transmit side of a Cyphal/CAN-style transfer
// protocol: it turns prioritised message transfers into classic CAN frames
// and holds them in a bounded, priority-ordered transmit queue until the
// socket layer drains them.
//
// Only single-frame broadcast message transfers are supported: every payload
// this node publishes fits in one classic CAN frame. Node discovery, service
// calls and register access are out of scope.
package cyphal

import "errors"

// Priority is the transfer priority level. Lower values transmit first.
type Priority uint8

const (
	PriorityExceptional Priority = iota
	PriorityImmediate
	PriorityFast
	PriorityHigh
	PriorityNominal // default for periodic telemetry
	PriorityLow
	PrioritySlow
	PriorityOptional
)

const (
	// MTU is the payload capacity of a classic CAN frame.
	MTU = 8

	// MaxPayload is the largest single-frame transfer payload: one byte of
	// the frame is always the tail byte.
	MaxPayload = MTU - 1

	// transferIDMask is the width of the transfer-ID field in the tail byte.
	transferIDMask = 0x1F
)

// Tail byte flags. A single-frame transfer carries start, end and toggle set.
const (
	tailStartOfTransfer = 0x80
	tailEndOfTransfer   = 0x40
	tailToggle          = 0x20
)

// Errors returned by TxQueue.Push.
var (
	ErrPayloadTooLarge = errors.New("cyphal: payload exceeds single-frame MTU")
	ErrQueueFull       = errors.New("cyphal: transmit queue full")
)

// Transfer is one logical outbound message. The payload must not exceed
// MaxPayload; ownership of the payload passes to the queue on Push.
type Transfer struct {
	Priority   Priority
	SubjectID  uint16
	TransferID uint8 // wraps mod 256; only the low 5 bits reach the wire
	Payload    []byte
}
