// Command posefeed sends test poses to a running servobridge over HTTP. It
// can center the robot or run a slow sine sweep across every joint, which
// exercises the whole bridge end to end without the operator UI.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"
)

var (
	target    = flag.String("target", "http://localhost:8080/servo", "bridge /servo endpoint")
	mode      = flag.String("mode", "neutral", "neutral or sweep")
	rateHz    = flag.Float64("rate", 5, "poses per second in sweep mode")
	amplitude = flag.Float64("amplitude", 20, "sweep amplitude in degrees around center")
	period    = flag.Duration("period", 4*time.Second, "sweep period")
	duration  = flag.Duration("duration", 10*time.Second, "sweep duration")
)

type pose struct {
	Kind    string             `json:"kind"`
	Degrees [16]float64        `json:"degrees"`
	Head    map[string]float64 `json:"head,omitempty"`
}

func neutralPose() pose {
	p := pose{Kind: "humanoid16", Head: map[string]float64{"p1": 90, "p2": 90}}
	for i := range p.Degrees {
		p.Degrees[i] = 90
	}
	return p
}

func post(p pose) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	resp, err := http.Post(*target, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("bridge answered %s", resp.Status)
	}
	return nil
}

func main() {
	flag.Parse()

	switch *mode {
	case "neutral":
		if err := post(neutralPose()); err != nil {
			log.Fatalf("send neutral pose: %v", err)
		}
		log.Printf("neutral pose sent to %s", *target)

	case "sweep":
		start := time.Now()
		ticker := time.NewTicker(time.Duration(float64(time.Second) / *rateHz))
		defer ticker.Stop()

		sent, dropped := 0, 0
		for now := range ticker.C {
			elapsed := now.Sub(start)
			if elapsed > *duration {
				break
			}
			p := neutralPose()
			offset := *amplitude * math.Sin(2*math.Pi*elapsed.Seconds()/period.Seconds())
			for i := range p.Degrees {
				p.Degrees[i] = 90 + offset
			}
			if err := post(p); err != nil {
				dropped++
				log.Printf("pose not applied: %v", err)
				continue
			}
			sent++
		}
		log.Printf("sweep done: %d sent, %d failed", sent, dropped)

		// leave the robot centered
		if err := post(neutralPose()); err != nil {
			log.Fatalf("send final neutral pose: %v", err)
		}

	default:
		log.Fatalf("unknown mode %q: want neutral or sweep", *mode)
	}
}
