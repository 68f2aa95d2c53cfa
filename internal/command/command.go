// Package command parses inbound wire messages into canonical servo
// commands. Both transports feed raw frames through Parse; everything past
// this package operates on validated, typed messages only.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// NumJoints is the number of bus servos on the humanoid body. Joint index i
// in a dense command addresses servo ID i+1.
const NumJoints = 16

// ErrInvalid is the single rejection category for malformed or incomplete
// commands. A rejected command is never partially applied.
var ErrInvalid = errors.New("invalid command")

// Message is an inbound frame after validation: a Pose, a SparseUpdate or a
// Ping.
type Message interface {
	isMessage()
}

// Pose is the dense form: one angle in degrees per joint, plus an optional
// head position.
type Pose struct {
	Degrees [NumJoints]float64
	Head    *Head
}

// Head carries the two PWM head channels in degrees. The dense form must
// supply both fields or neither.
type Head struct {
	Pan  float64 // PWM channel 1
	Tilt float64 // PWM channel 2
}

// SparseUpdate addresses individual servos with pre-scaled pulse values,
// bypassing degree conversion. Head channels may appear independently.
type SparseUpdate struct {
	Servos map[int]int // bus servo ID -> pulse
	Head   map[int]int // PWM channel -> microseconds
}

// Ping is a liveness probe. It must never reach the hardware path.
type Ping struct{}

func (Pose) isMessage()         {}
func (SparseUpdate) isMessage() {}
func (Ping) isMessage()         {}

// envelope covers all wire shapes; the discriminator fields decide which
// one a frame actually is. The shapes are never inferred from payload.
type envelope struct {
	Kind    string             `json:"kind"`
	Type    string             `json:"type"`
	Degrees []float64          `json:"degrees"`
	Servos  map[string]float64 `json:"servos"`
	Head    map[string]float64 `json:"head"`
}

// Parse validates a raw frame and returns its canonical message.
// All failures wrap ErrInvalid.
func Parse(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch {
	case env.Type == "ping":
		return Ping{}, nil
	case env.Type == "servos":
		return parseSparse(env)
	case env.Kind == "humanoid16":
		return parsePose(env)
	}
	return nil, fmt.Errorf("%w: unrecognized message shape", ErrInvalid)
}

func parsePose(env envelope) (Message, error) {
	if len(env.Degrees) != NumJoints {
		return nil, fmt.Errorf("%w: degrees must have %d entries, got %d", ErrInvalid, NumJoints, len(env.Degrees))
	}
	var pose Pose
	for i, d := range env.Degrees {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: degrees[%d] is not finite", ErrInvalid, i)
		}
		pose.Degrees[i] = d
	}
	if len(env.Head) > 0 {
		pan, hasPan := env.Head["p1"]
		tilt, hasTilt := env.Head["p2"]
		if hasPan != hasTilt {
			return nil, fmt.Errorf("%w: head requires both p1 and p2", ErrInvalid)
		}
		if hasPan {
			if math.IsNaN(pan) || math.IsInf(pan, 0) || math.IsNaN(tilt) || math.IsInf(tilt, 0) {
				return nil, fmt.Errorf("%w: head angles must be finite", ErrInvalid)
			}
			pose.Head = &Head{Pan: pan, Tilt: tilt}
		}
	}
	return pose, nil
}

func parseSparse(env envelope) (Message, error) {
	upd := SparseUpdate{}
	if len(env.Servos) > 0 {
		upd.Servos = make(map[int]int, len(env.Servos))
		for key, pulse := range env.Servos {
			id, err := strconv.Atoi(key)
			if err != nil || id < 1 {
				return nil, fmt.Errorf("%w: bad servo id %q", ErrInvalid, key)
			}
			if math.IsNaN(pulse) || math.IsInf(pulse, 0) {
				return nil, fmt.Errorf("%w: pulse for servo %d is not finite", ErrInvalid, id)
			}
			upd.Servos[id] = int(math.Round(pulse))
		}
	}
	if len(env.Head) > 0 {
		upd.Head = make(map[int]int, len(env.Head))
		for key, us := range env.Head {
			var channel int
			switch key {
			case "p1":
				channel = 1
			case "p2":
				channel = 2
			default:
				return nil, fmt.Errorf("%w: unknown head channel %q", ErrInvalid, key)
			}
			if math.IsNaN(us) || math.IsInf(us, 0) {
				return nil, fmt.Errorf("%w: head channel %s is not finite", ErrInvalid, key)
			}
			upd.Head[channel] = int(math.Round(us))
		}
	}
	return upd, nil
}
