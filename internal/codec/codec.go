// Package codec converts operator-facing joint angles in degrees into
// actuator-native units: bus servo pulse counts and PWM pulse widths.
// Conversions are pure and total; out-of-range input is clamped, never
// rejected, so a command that reaches the codec always yields a safe value.
package codec

import "math"

// Neutral positions for the two actuator families (90 degrees).
const (
	BusCenter = 500
	PWMCenter = 1500
)

// Absolute actuator ranges. The hardware backend re-clamps to these
// defensively as well.
const (
	BusPulseMin  = 0
	BusPulseMax  = 1000
	PWMMicrosMin = 500
	PWMMicrosMax = 2500
)

// BusPulse converts degrees to a bus servo pulse in [0,1000].
// 0° maps to 0, 90° to 500, 180° to 1000.
func BusPulse(deg float64) int {
	return int(math.Round(clampDegrees(deg) / 180.0 * 1000.0))
}

// PWMMicros converts degrees to a PWM pulse width in [500,2500] microseconds.
// 0° maps to 500, 90° to 1500, 180° to 2500.
func PWMMicros(deg float64) int {
	return int(math.Round(500 + clampDegrees(deg)/180.0*2000.0))
}

// clampDegrees confines input to the mechanical [0,180] range. The validator
// never lets a non-finite value through, but a NaN here would otherwise poison
// the rounding, so it collapses to center.
func clampDegrees(deg float64) float64 {
	if math.IsNaN(deg) {
		return 90
	}
	return clamp(deg, 0, 180)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Floor narrows the accepted degree range before conversion as an extra
// mechanical safety margin; 10..170 keeps joints off their hard stops on
// bodies that bind near the extremes. The zero value disables the floor.
type Floor struct {
	Lo float64
	Hi float64
}

// Enabled reports whether the floor narrows anything.
func (f Floor) Enabled() bool {
	return f.Hi > f.Lo
}

// Apply clamps deg into the floor range. A disabled Floor returns deg
// unchanged.
func (f Floor) Apply(deg float64) float64 {
	if !f.Enabled() {
		return deg
	}
	return clamp(deg, f.Lo, f.Hi)
}
