// Package config carries the bridge's process-start options and their
// defaults. Options arrive from flags; Normalize applies defaults and
// validates ranges so the rest of the program never sees a nonsense value.
package config

import (
	"fmt"
	"time"

	"github.com/banshee-data/servobridge/internal/board"
	"github.com/banshee-data/servobridge/internal/codec"
)

// Options is the full configuration surface. Everything here is fixed at
// process start; the bridge holds no runtime-mutable configuration.
type Options struct {
	// Listen is the shared HTTP and WebSocket listen address.
	Listen string

	// MotionMS is the motion time per live command in milliseconds.
	MotionMS int

	// MaxRate is the maximum admitted command rate in Hz.
	MaxRate float64

	// SkipReset skips the startup neutral sweep (bench use only).
	SkipReset bool

	// FloorLo and FloorHi optionally narrow the accepted degree range of
	// dense commands; both zero disables the floor.
	FloorLo float64
	FloorHi float64

	// LegacyDevice and RRCDevice are the serial device paths probed for
	// the two board generations.
	LegacyDevice string
	RRCDevice    string

	// LogDB, when set, journals dispatched commands to this sqlite file.
	LogDB string
}

// Normalize validates the options and applies defaults for unset values.
func (o Options) Normalize() (Options, error) {
	opts := o

	if opts.Listen == "" {
		opts.Listen = ":8080"
	}

	if opts.MotionMS == 0 {
		opts.MotionMS = 80
	}
	if opts.MotionMS < 0 {
		return opts, fmt.Errorf("invalid motion time %dms: must not be negative", opts.MotionMS)
	}

	if opts.MaxRate == 0 {
		opts.MaxRate = 10
	}
	if opts.MaxRate < 0 {
		return opts, fmt.Errorf("invalid max rate %.2fHz: must not be negative", opts.MaxRate)
	}

	if opts.FloorLo != 0 || opts.FloorHi != 0 {
		if opts.FloorHi <= opts.FloorLo {
			return opts, fmt.Errorf("invalid degree floor [%g,%g]: upper bound must exceed lower", opts.FloorLo, opts.FloorHi)
		}
		if opts.FloorLo < 0 || opts.FloorHi > 180 {
			return opts, fmt.Errorf("invalid degree floor [%g,%g]: must stay within [0,180]", opts.FloorLo, opts.FloorHi)
		}
	}

	if opts.LegacyDevice == "" {
		opts.LegacyDevice = board.DefaultLegacyDevice
	}
	if opts.RRCDevice == "" {
		opts.RRCDevice = board.DefaultRRCDevice
	}

	return opts, nil
}

// Motion returns the per-command motion time.
func (o Options) Motion() time.Duration {
	return time.Duration(o.MotionMS) * time.Millisecond
}

// Floor returns the configured degree floor; the zero Floor when disabled.
func (o Options) Floor() codec.Floor {
	return codec.Floor{Lo: o.FloorLo, Hi: o.FloorHi}
}
