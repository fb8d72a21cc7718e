// Package node holds the publishing core of the range node: the wire
// payload layouts, the transfer scheduler with its per-subject transfer-ID
// counters, and the transmit-queue drain loop.
package node

import (
	"encoding/binary"
	"errors"
	"math"
)

// Subject identifiers, both in the unregulated application-specific range.
const (
	HeartbeatSubjectID uint16 = 32085
	DistanceSubjectID  uint16 = 1610
)

// ErrNonFinite is returned when a distance is NaN or infinite (stuck
// sensor). The sample is suppressed rather than put on the wire.
var ErrNonFinite = errors.New("node: non-finite distance")

// EncodeHeartbeat builds the 7-byte heartbeat payload: uptime in seconds as
// a little-endian u32, then three reserved zero bytes (health, mode and
// vendor status, all fixed to healthy/operational/zero for this node).
func EncodeHeartbeat(uptimeSeconds uint32) []byte {
	payload := make([]byte, 7)
	binary.LittleEndian.PutUint32(payload[0:4], uptimeSeconds)
	return payload
}

// DecodeHeartbeatUptime extracts the uptime from a heartbeat payload.
func DecodeHeartbeatUptime(payload []byte) (uint32, error) {
	if len(payload) != 7 {
		return 0, errors.New("node: heartbeat payload must be 7 bytes")
	}
	return binary.LittleEndian.Uint32(payload[0:4]), nil
}

// EncodeDistance builds the 4-byte distance payload: the distance in
// centimetres as a little-endian IEEE-754 single-precision float.
func EncodeDistance(distanceCm float64) ([]byte, error) {
	if math.IsNaN(distanceCm) || math.IsInf(distanceCm, 0) {
		return nil, ErrNonFinite
	}
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, math.Float32bits(float32(distanceCm)))
	return payload, nil
}

// DecodeDistance extracts the distance from a distance payload.
func DecodeDistance(payload []byte) (float64, error) {
	if len(payload) != 4 {
		return 0, errors.New("node: distance payload must be 4 bytes")
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(payload))), nil
}
