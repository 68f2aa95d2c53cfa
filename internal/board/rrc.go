package board

import (
	"fmt"
	"sync"
	"time"
)

// The newer ros-robot-controller generation frames every request as
//
//	0xAA 0x55 | function | length | payload... | crc8
//
// with CRC-8 (poly 0x07) computed over function, length and payload. Servo
// positions are carried in a single function-coded packet rather than being
// addressed per bus ID, so one packet moves one servo here as well but the
// board firmware owns the bus transaction.
const (
	DefaultRRCDevice = "/dev/ttyACM0"
	rrcBaud          = 1_000_000

	rrcFuncPWMServo = 0x03
	rrcFuncBusServo = 0x04
)

type rrcBoard struct {
	mu   sync.Mutex
	port Porter
}

func newRRCBoard(open PortOpener, device string) (*rrcBoard, error) {
	port, err := open(device, rrcBaud)
	if err != nil {
		return nil, fmt.Errorf("open ros-robot-controller at %s: %w", device, err)
	}
	return &rrcBoard{port: port}, nil
}

func (b *rrcBoard) Mode() string {
	return "ros-robot-controller"
}

func (b *rrcBoard) SetBusServo(id, pulse int, motion time.Duration) error {
	if id < 1 {
		return fmt.Errorf("bus servo id %d out of range", id)
	}
	pulse = clampInt(pulse, busPulseMin, busPulseMax)
	ms := motionMS(motion)
	// duration lo/hi, servo count, id, position lo/hi
	return b.write(rrcPacket(rrcFuncBusServo, []byte{
		byte(ms), byte(ms >> 8),
		1,
		byte(id),
		byte(pulse), byte(pulse >> 8),
	}))
}

func (b *rrcBoard) SetPWMServo(channel, us int, motion time.Duration) error {
	if channel < 1 {
		return fmt.Errorf("pwm channel %d out of range", channel)
	}
	us = clampInt(us, pwmMicrosMin, pwmMicrosMax)
	ms := motionMS(motion)
	// duration lo/hi, servo count, channel, pulse width lo/hi
	return b.write(rrcPacket(rrcFuncPWMServo, []byte{
		byte(ms), byte(ms >> 8),
		1,
		byte(channel),
		byte(us), byte(us >> 8),
	}))
}

func (b *rrcBoard) Close() error {
	return b.port.Close()
}

func (b *rrcBoard) write(packet []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, err := b.port.Write(packet)
	if err != nil {
		return err
	}
	if n != len(packet) {
		return ErrWriteFailed
	}
	return nil
}

// rrcPacket assembles one controller packet for the given function code.
func rrcPacket(function byte, payload []byte) []byte {
	packet := make([]byte, 0, 5+len(payload))
	packet = append(packet, 0xAA, 0x55, function, byte(len(payload)))
	packet = append(packet, payload...)
	return append(packet, crc8(packet[2:]))
}

// crc8 computes CRC-8 with polynomial 0x07 and zero init, matching the
// controller firmware.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
