package cyphal

// Frame is one physical CAN frame ready for the socket layer. The ID is a
// 29-bit extended identifier without the socket-specific EFF flag; the bus
// implementation is responsible for adding it.
type Frame struct {
	ID     uint32
	Length uint8
	Data   [MTU]byte

	priority Priority // retained for queue ordering
}

// Extended CAN ID field offsets for message transfers:
// bits 28-26 priority, bit 25 service flag (0 for messages), bit 24 anonymous
// flag (0, this node has a real node-ID), bits 23-8 subject, bits 7-0 source.
const (
	offsetPriority  = 26
	offsetSubjectID = 8
)

// messageCANID builds the extended CAN identifier for a broadcast message.
func messageCANID(p Priority, subject uint16, source uint8) uint32 {
	return uint32(p)<<offsetPriority | uint32(subject)<<offsetSubjectID | uint32(source)
}

// singleFrame encodes a transfer into one CAN frame: payload bytes followed
// by the tail byte (start-of-transfer, end-of-transfer and toggle all set).
func singleFrame(t Transfer, source uint8) Frame {
	f := Frame{
		ID:       messageCANID(t.Priority, t.SubjectID, source),
		Length:   uint8(len(t.Payload)) + 1,
		priority: t.Priority,
	}
	copy(f.Data[:], t.Payload)
	f.Data[len(t.Payload)] = tailStartOfTransfer | tailEndOfTransfer | tailToggle |
		(t.TransferID & transferIDMask)
	return f
}
