// Package board abstracts the servo controller hardware behind a uniform
// two-operation interface. Exactly one backend variant is selected at
// process start by probing candidate boards in a fixed preference order;
// the selection is immutable for the process lifetime. When no board
// answers, the package degrades to a simulated no-op backend so the bridge
// keeps running without hardware attached.
package board

import (
	"errors"
	"time"
)

// ErrUnavailable reports that no physical board could be initialized. It is
// informational: callers log it and continue with the simulated backend.
var ErrUnavailable = errors.New("no servo board available")

// ErrWriteFailed reports a short write to the servo bus.
var ErrWriteFailed = errors.New("short write to servo board")

// Backend is the uniform capability surface over the board variants.
// Implementations re-clamp pulse and microsecond values defensively even
// though the codec already produces in-range integers, and serialize their
// port writes internally.
type Backend interface {
	// SetBusServo moves one serial bus servo (positive ID) to the given
	// pulse in [0,1000] over the given motion time.
	SetBusServo(id, pulse int, motion time.Duration) error
	// SetPWMServo moves one PWM channel to the given pulse width in
	// [500,2500] microseconds over the given motion time.
	SetPWMServo(channel, us int, motion time.Duration) error
	// Mode identifies the selected variant for diagnostics.
	Mode() string
	Close() error
}

// Absolute actuator ranges enforced on every call.
const (
	busPulseMin  = 0
	busPulseMax  = 1000
	pwmMicrosMin = 500
	pwmMicrosMax = 2500
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// motionMS converts a motion time to the millisecond count the wire
// protocols carry. Negative durations collapse to an immediate move.
func motionMS(motion time.Duration) int {
	ms := int(motion / time.Millisecond)
	if ms < 0 {
		return 0
	}
	if ms > 0xFFFF {
		return 0xFFFF
	}
	return ms
}
