// Package ranging contains pure logic for converting ultrasonic echo edges
// into distance measurements. This package has NO external dependencies
// (no GPIO, CAN, OS, or time.Sleep). Ticks are always passed in as values.
package ranging

// SpeedOfSoundCmPerUs is the speed of sound in centimetres per microsecond
// (sea level, ~20 °C). The round-trip time is halved before applying it.
const SpeedOfSoundCmPerUs = 0.0343

// Level is the logical level of an echo edge.
type Level int

const (
	LevelLow  Level = 0
	LevelHigh Level = 1
)

// Edge is a single echo-pin transition with its monotonic microsecond tick.
// The tick is a wrapping 32-bit counter; consumers must use unsigned
// subtraction when computing intervals.
type Edge struct {
	Pin   int
	Level Level
	Tick  uint32
}

// Measurement is one completed distance sample.
type Measurement struct {
	DistanceCm float64
	// Tick is the tick of the falling edge that completed the sample.
	Tick uint32
}
