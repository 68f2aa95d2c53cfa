// Command servobridge accepts joint-angle commands from an operator UI over
// HTTP or WebSocket and drives the humanoid's servo bus with them. It is a
// dumb, safe, low-latency transport for already-computed joint angles: no
// kinematics, no trajectory planning, just validation, clamping, rate
// limiting and dispatch, bracketed by neutral-posture resets.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/servobridge/internal/board"
	"github.com/banshee-data/servobridge/internal/bridge"
	"github.com/banshee-data/servobridge/internal/config"
	"github.com/banshee-data/servobridge/internal/httpapi"
	"github.com/banshee-data/servobridge/internal/poselog"
	"github.com/banshee-data/servobridge/internal/rate"
	"github.com/banshee-data/servobridge/internal/safety"
	"github.com/banshee-data/servobridge/internal/wsapi"
)

var (
	listen    = flag.String("listen", ":8080", "HTTP and WebSocket listen address")
	motionMS  = flag.Int("motion-ms", 80, "motion time per command in milliseconds")
	maxRate   = flag.Float64("max-rate", 10, "maximum command rate in Hz")
	skipReset = flag.Bool("skip-reset", false, "skip the startup neutral sweep")
	floorLo   = flag.Float64("floor-lo", 0, "lower degree safety floor (with -floor-hi; 0/0 disables)")
	floorHi   = flag.Float64("floor-hi", 0, "upper degree safety floor (with -floor-lo; 0/0 disables)")
	legacyDev = flag.String("legacy-device", board.DefaultLegacyDevice, "serial device of the legacy expansion board")
	rrcDev    = flag.String("rrc-device", board.DefaultRRCDevice, "serial device of the ros-robot-controller")
	logDB     = flag.String("log-db", "", "journal dispatched commands to this sqlite file")
)

func main() {
	flag.Parse()

	opts, err := config.Options{
		Listen:       *listen,
		MotionMS:     *motionMS,
		MaxRate:      *maxRate,
		SkipReset:    *skipReset,
		FloorLo:      *floorLo,
		FloorHi:      *floorHi,
		LegacyDevice: *legacyDev,
		RRCDevice:    *rrcDev,
		LogDB:        *logDB,
	}.Normalize()
	if err != nil {
		log.Fatalf("bad configuration: %v", err)
	}

	backend, err := board.Probe(board.OpenSerial, opts.LegacyDevice, opts.RRCDevice)
	if err != nil {
		log.Printf("no servo board found, running simulated: %v", err)
	}
	defer backend.Close()
	log.Printf("servo backend: %s", backend.Mode())

	var journal *poselog.Log
	if opts.LogDB != "" {
		journal, err = poselog.Open(opts.LogDB)
		if err != nil {
			log.Fatalf("failed to open dispatch journal: %v", err)
		}
		defer journal.Close()
	}

	br := bridge.New(bridge.Config{
		Backend: backend,
		Limiter: rate.New(opts.MaxRate),
		Motion:  opts.Motion(),
		Floor:   opts.Floor(),
		Log:     journal,
	})
	safe := safety.New(backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Neutral-before-traffic: no transport is listening until the robot has
	// settled at center.
	if opts.SkipReset {
		log.Printf("startup neutral sweep skipped")
	} else if err := safe.Startup(ctx); err != nil {
		log.Printf("interrupted during startup sweep: %v", err)
		return
	}
	safe.Activate()

	mux := http.NewServeMux()
	mux.Handle("/ws", wsapi.NewServer(br).Handler())
	mux.Handle("/", httpapi.NewServer(br).ServeMux())

	server := &http.Server{
		Addr:    opts.Listen,
		Handler: mux,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()
	log.Printf("listening on %s (POST /servo, WS /ws)", opts.Listen)

	<-ctx.Done()
	log.Printf("shutting down...")

	// Bound both the HTTP drain and the neutral reset: unresponsive
	// hardware must not hang process exit.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := safe.Shutdown(shutdownCtx); err != nil {
		log.Printf("neutral reset incomplete: %v", err)
	}

	wg.Wait()
	log.Printf("graceful shutdown complete")
}
