// Package bridge wires the command pipeline: a validated message is
// admitted by the rate limiter, converted to actuator units and dispatched
// to the shared board, all under one lock. Exactly one physical servo bus
// exists no matter how many client connections do, so every transport
// session funnels through the same Bridge.
package bridge

import (
	"slices"
	"sync"
	"time"

	"github.com/banshee-data/servobridge/internal/board"
	"github.com/banshee-data/servobridge/internal/codec"
	"github.com/banshee-data/servobridge/internal/command"
	"github.com/banshee-data/servobridge/internal/monitoring"
	"github.com/banshee-data/servobridge/internal/poselog"
	"github.com/banshee-data/servobridge/internal/rate"
)

// Result reports what applying a message did.
type Result int

const (
	// Applied means the command reached the backend (possibly with some
	// joints skipped on per-joint hardware errors).
	Applied Result = iota
	// Dropped means the rate limiter rejected the command. Harmless: the
	// client resends at its own cadence.
	Dropped
	// Pong means the message was a liveness probe; the transport owes the
	// client a pong reply and no hardware was touched.
	Pong
)

// Config assembles a Bridge.
type Config struct {
	Backend board.Backend
	Limiter *rate.Limiter
	// Motion is the per-command motion time handed to the board.
	Motion time.Duration
	// Floor optionally narrows the degree range of dense commands.
	Floor codec.Floor
	// Log, when set, journals applied commands.
	Log *poselog.Log
}

// Bridge is the shared command pipeline.
type Bridge struct {
	mu      sync.Mutex
	backend board.Backend
	limiter *rate.Limiter
	motion  time.Duration
	floor   codec.Floor
	log     *poselog.Log
}

// New creates a Bridge from cfg.
func New(cfg Config) *Bridge {
	return &Bridge{
		backend: cfg.Backend,
		limiter: cfg.Limiter,
		motion:  cfg.Motion,
		floor:   cfg.Floor,
		log:     cfg.Log,
	}
}

// Apply runs one message through admit -> convert -> dispatch. src names the
// transport session for diagnostics. Commands within one connection arrive
// here in receipt order; the single lock serializes access to the limiter
// and the bus across connections.
func (b *Bridge) Apply(src string, msg command.Message) Result {
	switch m := msg.(type) {
	case command.Ping:
		// liveness only, never the hardware path
		return Pong
	case command.Pose:
		return b.applyPose(src, m)
	case command.SparseUpdate:
		return b.applySparse(src, m)
	default:
		monitoring.Logf("bridge: %s: unhandled message %T", src, msg)
		return Dropped
	}
}

func (b *Bridge) applyPose(src string, pose command.Pose) Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.limiter.Admit() {
		return Dropped
	}

	writes := 0
	for i, deg := range pose.Degrees {
		id := i + 1
		pulse := codec.BusPulse(b.floor.Apply(deg))
		if err := b.backend.SetBusServo(id, pulse, b.motion); err != nil {
			// skip the joint, keep the batch going
			monitoring.Logf("bridge: %s: move %s (servo %d): %v", src, command.ServoName(id), id, err)
			continue
		}
		writes++
	}
	if pose.Head != nil {
		writes += b.setPWM(src, 1, codec.PWMMicros(b.floor.Apply(pose.Head.Pan)))
		writes += b.setPWM(src, 2, codec.PWMMicros(b.floor.Apply(pose.Head.Tilt)))
	}
	b.journal(src, "humanoid16", writes)
	return Applied
}

func (b *Bridge) applySparse(src string, upd command.SparseUpdate) Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.limiter.Admit() {
		return Dropped
	}

	// Sparse updates carry pre-scaled pulses straight from the operator UI
	// and do not pass the degree floor; the board still clamps to the
	// absolute pulse range.
	writes := 0
	for _, id := range sortedKeys(upd.Servos) {
		if err := b.backend.SetBusServo(id, upd.Servos[id], b.motion); err != nil {
			monitoring.Logf("bridge: %s: move %s (servo %d): %v", src, command.ServoName(id), id, err)
			continue
		}
		writes++
	}
	for _, channel := range sortedKeys(upd.Head) {
		writes += b.setPWM(src, channel, upd.Head[channel])
	}
	b.journal(src, "servos", writes)
	return Applied
}

func (b *Bridge) setPWM(src string, channel, us int) int {
	if err := b.backend.SetPWMServo(channel, us, b.motion); err != nil {
		monitoring.Logf("bridge: %s: move head channel %d: %v", src, channel, err)
		return 0
	}
	return 1
}

func (b *Bridge) journal(src, kind string, writes int) {
	if b.log == nil {
		return
	}
	if err := b.log.Record(src, kind, writes); err != nil {
		monitoring.Logf("bridge: journal: %v", err)
	}
}

// sortedKeys keeps sparse dispatch order deterministic; map iteration order
// would otherwise reorder bus writes between identical commands.
func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
