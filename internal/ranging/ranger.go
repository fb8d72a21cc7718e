package ranging

// StateMachine turns pairs of echo edges into distance measurements.
//
// A rising edge arms the machine and records the start tick. A falling edge
// on an armed machine completes a sample; a falling edge on an unarmed
// machine (missed trigger, sensor noise, startup) is discarded rather than
// producing a garbage distance from a stale start tick. A rising edge while
// already armed (stalled echo that never fell) simply re-arms with the new
// start tick.
//
// Not safe for concurrent use: edges must be delivered from a single
// goroutine.
type StateMachine struct {
	startTick uint32
	armed     bool
	discarded uint64
}

// OnEdge consumes one edge. When a falling edge completes a valid echo
// window it returns the measurement and true; otherwise ok is false.
func (s *StateMachine) OnEdge(e Edge) (m Measurement, ok bool) {
	switch e.Level {
	case LevelHigh:
		s.startTick = e.Tick
		s.armed = true
		return Measurement{}, false
	case LevelLow:
		if !s.armed {
			s.discarded++
			return Measurement{}, false
		}
		s.armed = false
		elapsed := e.Tick - s.startTick // wraps mod 2^32
		return Measurement{
			DistanceCm: DistanceFromElapsed(elapsed),
			Tick:       e.Tick,
		}, true
	}
	return Measurement{}, false
}

// Armed reports whether a rising edge has been seen without a falling edge.
func (s *StateMachine) Armed() bool {
	return s.armed
}

// Discarded returns the number of falling edges dropped because no rising
// edge preceded them.
func (s *StateMachine) Discarded() uint64 {
	return s.discarded
}

// DistanceFromElapsed converts a round-trip echo duration in microseconds
// into a one-way distance in centimetres.
func DistanceFromElapsed(elapsedUs uint32) float64 {
	return float64(elapsedUs) / 2 * SpeedOfSoundCmPerUs
}
