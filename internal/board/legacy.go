package board

import (
	"fmt"
	"sync"
	"time"
)

// The first-generation expansion board speaks the LX-bus frame protocol:
//
//	0x55 0x55 | id | length | command | params... | checksum
//
// where length counts command, params and checksum, and the checksum is the
// bitwise complement of the byte sum of id through the last param. Bus
// servos are addressed by their own bus ID; the board MCU itself answers on
// a reserved controller ID for PWM channel commands.
const (
	DefaultLegacyDevice = "/dev/ttyAMA0"
	legacyBaud          = 115200

	lxCmdServoMove = 0x01 // bus servo: pos lo/hi, time lo/hi
	lxCmdPWMMove   = 0x03 // controller: channel, us lo/hi, time lo/hi

	lxControllerID = 0xFE
)

type legacyBoard struct {
	mu   sync.Mutex
	port Porter
}

func newLegacyBoard(open PortOpener, device string) (*legacyBoard, error) {
	port, err := open(device, legacyBaud)
	if err != nil {
		return nil, fmt.Errorf("open legacy board at %s: %w", device, err)
	}
	return &legacyBoard{port: port}, nil
}

func (b *legacyBoard) Mode() string {
	return "legacy-board"
}

func (b *legacyBoard) SetBusServo(id, pulse int, motion time.Duration) error {
	if id < 1 {
		return fmt.Errorf("bus servo id %d out of range", id)
	}
	pulse = clampInt(pulse, busPulseMin, busPulseMax)
	ms := motionMS(motion)
	return b.write(lxFrame(byte(id), lxCmdServoMove, []byte{
		byte(pulse), byte(pulse >> 8),
		byte(ms), byte(ms >> 8),
	}))
}

func (b *legacyBoard) SetPWMServo(channel, us int, motion time.Duration) error {
	if channel < 1 {
		return fmt.Errorf("pwm channel %d out of range", channel)
	}
	us = clampInt(us, pwmMicrosMin, pwmMicrosMax)
	ms := motionMS(motion)
	return b.write(lxFrame(lxControllerID, lxCmdPWMMove, []byte{
		byte(channel),
		byte(us), byte(us >> 8),
		byte(ms), byte(ms >> 8),
	}))
}

func (b *legacyBoard) Close() error {
	return b.port.Close()
}

func (b *legacyBoard) write(frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, err := b.port.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return ErrWriteFailed
	}
	return nil
}

// lxFrame assembles one LX-bus frame for the given target and command.
func lxFrame(id, cmd byte, params []byte) []byte {
	frame := make([]byte, 0, 6+len(params))
	frame = append(frame, 0x55, 0x55, id, byte(len(params)+3), cmd)
	frame = append(frame, params...)
	var sum byte
	for _, v := range frame[2:] {
		sum += v
	}
	return append(frame, ^sum)
}
