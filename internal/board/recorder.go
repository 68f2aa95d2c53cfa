package board

import (
	"sync"
	"time"
)

// Call records one backend operation observed by a Recorder.
type Call struct {
	Bus    bool // bus servo write, otherwise PWM
	ID     int  // servo ID or PWM channel
	Value  int  // pulse or microseconds
	Motion time.Duration
}

// Recorder implements Backend by remembering every call. It backs the unit
// tests of everything layered above the board.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// Fail makes every call return this error while still recording it.
	Fail error

	// FailID makes calls for this bus servo ID fail while the rest of the
	// batch succeeds.
	FailID int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SetBusServo(id, pulse int, motion time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Bus: true, ID: id, Value: clampInt(pulse, busPulseMin, busPulseMax), Motion: motion})
	if r.Fail != nil {
		return r.Fail
	}
	if r.FailID != 0 && id == r.FailID {
		return ErrWriteFailed
	}
	return nil
}

func (r *Recorder) SetPWMServo(channel, us int, motion time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{ID: channel, Value: clampInt(us, pwmMicrosMin, pwmMicrosMax), Motion: motion})
	if r.Fail != nil {
		return r.Fail
	}
	return nil
}

func (r *Recorder) Mode() string {
	return "recorder"
}

func (r *Recorder) Close() error {
	return nil
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// BusCalls returns only the bus servo writes.
func (r *Recorder) BusCalls() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Bus {
			out = append(out, c)
		}
	}
	return out
}

// PWMCalls returns only the PWM channel writes.
func (r *Recorder) PWMCalls() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if !c.Bus {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
