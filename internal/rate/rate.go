// Package rate throttles command application to protect the servo bus from
// command flooding.
package rate

import "time"

// Limiter is a leaky-bucket-of-one: it admits a command only when at least
// the minimum interval has passed since the last admitted command. Drops are
// silent by design; this is a live teleoperation stream where stale commands
// are worthless, so nothing is queued or coalesced and the client resends at
// its own cadence.
//
// A Limiter is not goroutine safe on its own. Exactly one instance exists
// per hardware backend and the bridge guards it with the same lock that
// serializes hardware dispatch.
type Limiter struct {
	min  time.Duration
	last time.Time
	now  func() time.Time
}

// New returns a Limiter that admits at most maxHz commands per second.
// A maxHz of zero or less disables throttling.
func New(maxHz float64) *Limiter {
	return NewWithClock(maxHz, time.Now)
}

// NewWithClock is New with an injected clock, for deterministic tests.
func NewWithClock(maxHz float64, now func() time.Time) *Limiter {
	var min time.Duration
	if maxHz > 0 {
		min = time.Duration(float64(time.Second) / maxHz)
	}
	return &Limiter{min: min, now: now}
}

// Admit reports whether a command may be applied now. On acceptance the
// last-accepted stamp advances immediately, before the caller dispatches to
// hardware, so backend latency does not widen the effective throttle window.
func (l *Limiter) Admit() bool {
	if l.min <= 0 {
		return true
	}
	now := l.now()
	if !l.last.IsZero() && now.Sub(l.last) < l.min {
		return false
	}
	l.last = now
	return true
}

// Interval returns the configured minimum spacing between admitted commands.
func (l *Limiter) Interval() time.Duration {
	return l.min
}
