package board

import (
	"time"

	"github.com/banshee-data/servobridge/internal/monitoring"
)

// simBackend satisfies Backend without hardware. It is selected when
// probing finds no board, so development against a laptop keeps the whole
// command path exercised with every motion visible in the log.
type simBackend struct{}

// Simulated returns the no-op backend directly, for callers that want the
// degraded mode without probing (tests, dry runs).
func Simulated() Backend {
	return simBackend{}
}

func (simBackend) SetBusServo(id, pulse int, motion time.Duration) error {
	monitoring.Logf("sim: bus servo %d -> %d over %s", id, clampInt(pulse, busPulseMin, busPulseMax), motion)
	return nil
}

func (simBackend) SetPWMServo(channel, us int, motion time.Duration) error {
	monitoring.Logf("sim: pwm channel %d -> %dus over %s", channel, clampInt(us, pwmMicrosMin, pwmMicrosMax), motion)
	return nil
}

func (simBackend) Mode() string {
	return "simulated"
}

func (simBackend) Close() error {
	return nil
}
