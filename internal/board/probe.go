package board

import (
	"github.com/banshee-data/servobridge/internal/monitoring"
)

// Probe selects the first board variant whose serial device opens, in fixed
// preference order: the legacy expansion board, then the ros-robot-controller.
// With no hardware attached it returns the simulated backend together with
// ErrUnavailable; hardware absence is a degraded-but-running state, never a
// reason to refuse startup.
func Probe(open PortOpener, legacyDevice, rrcDevice string) (Backend, error) {
	if b, err := newLegacyBoard(open, legacyDevice); err == nil {
		return b, nil
	} else {
		monitoring.Logf("board: legacy probe: %v", err)
	}
	if b, err := newRRCBoard(open, rrcDevice); err == nil {
		return b, nil
	} else {
		monitoring.Logf("board: ros-robot-controller probe: %v", err)
	}
	return simBackend{}, ErrUnavailable
}
