package board

import (
	"bytes"
	"sync"
)

// TestablePort implements Porter with configurable behaviour for exercising
// the board wire protocols without hardware.
type TestablePort struct {
	mu sync.Mutex

	// WriteBuffer captures everything written to the port.
	WriteBuffer bytes.Buffer

	// WriteError is returned by the next Write call if set, then cleared.
	WriteError error

	// ShortWrite makes Write report one byte fewer than requested.
	ShortWrite bool

	// Closed indicates whether Close was called.
	Closed bool

	// WriteCalls records the number of Write calls.
	WriteCalls int
}

// NewTestablePort creates a TestablePort ready for use.
func NewTestablePort() *TestablePort {
	return &TestablePort{}
}

func (p *TestablePort) Read(buf []byte) (int, error) {
	// The command path is write-only; reads block on real hardware and
	// return nothing here.
	return 0, nil
}

func (p *TestablePort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.WriteCalls++
	if p.WriteError != nil {
		err := p.WriteError
		p.WriteError = nil
		return 0, err
	}
	n, err := p.WriteBuffer.Write(data)
	if err != nil {
		return n, err
	}
	if p.ShortWrite && n > 0 {
		return n - 1, nil
	}
	return n, nil
}

func (p *TestablePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// WrittenData returns everything written so far.
func (p *TestablePort) WrittenData() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.WriteBuffer.Bytes()
}

// Reset clears captured writes and recorded state.
func (p *TestablePort) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.WriteBuffer.Reset()
	p.WriteCalls = 0
	p.WriteError = nil
	p.ShortWrite = false
	p.Closed = false
}
