package board

import (
	"io"

	"go.bug.st/serial"
)

// Porter is the minimal serial port surface the board drivers need. The
// abstraction keeps the wire protocols testable without hardware.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// PortOpener opens the serial device for a board variant. Production code
// passes OpenSerial; tests substitute a fake.
type PortOpener func(path string, baud int) (Porter, error)

// OpenSerial opens a real serial port in the 8N1 framing both board
// generations use.
func OpenSerial(path string, baud int) (Porter, error) {
	return serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}
