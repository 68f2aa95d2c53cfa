// Package safety owns the neutral-posture bracket around the bridge's
// lifetime. Servo hardware can be damaged, or leave the robot in an unsafe
// stance, if the controlling process disappears at an arbitrary commanded
// position, so every joint is driven to center before traffic is accepted
// and again before the process exits.
package safety

import (
	"context"
	"sync"
	"time"

	"github.com/banshee-data/servobridge/internal/board"
	"github.com/banshee-data/servobridge/internal/codec"
	"github.com/banshee-data/servobridge/internal/command"
	"github.com/banshee-data/servobridge/internal/monitoring"
)

// State tracks the controller through its lifecycle.
type State int

const (
	Uninitialized State = iota
	Neutral             // startup sweep done, traffic not yet flowing
	Active              // bridge accepting commands
	Halted              // terminal neutral after shutdown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Neutral:
		return "neutral"
	case Active:
		return "active"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// Startup moves use a slow transition so a cold robot settles gently;
// shutdown is quicker because the process is on its way out.
const (
	startupMotion  = time.Second
	shutdownMotion = 500 * time.Millisecond
)

// Controller sequences the neutral transitions on the shared backend.
type Controller struct {
	mu      sync.Mutex
	state   State
	backend board.Backend

	// settle waits for physical motion to finish, bounded by ctx.
	// Injected so tests do not sleep.
	settle func(ctx context.Context, d time.Duration)
}

// New creates a Controller for the given backend.
func New(backend board.Backend) *Controller {
	return &Controller{
		backend: backend,
		settle:  waitSettle,
	}
}

func waitSettle(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Startup drives all joints to neutral with a slow transition and waits for
// the physical settle before the bridge may accept traffic. The wait is
// bounded by ctx.
func (c *Controller) Startup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Uninitialized {
		return nil
	}
	monitoring.Logf("safety: driving %d joints to neutral", command.NumJoints)
	c.reset(startupMotion)
	c.settle(ctx, startupMotion)
	c.state = Neutral
	return ctx.Err()
}

// Activate marks the bridge as accepting live traffic. It is valid straight
// from Uninitialized when the operator skips the startup sweep.
func (c *Controller) Activate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Halted {
		return
	}
	c.state = Active
}

// Shutdown re-centers the robot best-effort before exit with a quicker
// transition. The settle wait is bounded by ctx so unresponsive hardware
// cannot hang process teardown. Repeated calls are no-ops.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Halted {
		return nil
	}
	monitoring.Logf("safety: returning to neutral before exit")
	c.reset(shutdownMotion)
	c.settle(ctx, shutdownMotion)
	c.state = Halted
	return ctx.Err()
}

// reset centers every bus servo and both head channels. Per-joint failures
// are logged and skipped; a stuck joint must not stop the rest of the sweep.
func (c *Controller) reset(motion time.Duration) {
	for id := 1; id <= command.NumJoints; id++ {
		if err := c.backend.SetBusServo(id, codec.BusCenter, motion); err != nil {
			monitoring.Logf("safety: center %s (servo %d): %v", command.ServoName(id), id, err)
		}
	}
	for channel := 1; channel <= 2; channel++ {
		if err := c.backend.SetPWMServo(channel, codec.PWMCenter, motion); err != nil {
			monitoring.Logf("safety: center head channel %d: %v", channel, err)
		}
	}
}
