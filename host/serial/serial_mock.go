package serial

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by MockPort operations after Close.
var ErrClosed = errors.New("serial: port closed")

// MockPort is an in-memory Port for tests. Reads drain bytes queued with
// FeedRead; writes are captured for inspection with Written. A drained
// receive buffer reads as io.EOF, matching a device that went away.
type MockPort struct {
	mu     sync.Mutex
	rx     bytes.Buffer
	tx     bytes.Buffer
	closed bool
}

// NewMockPort creates an empty mock port.
func NewMockPort() *MockPort {
	return &MockPort{}
}

// FeedRead queues data for subsequent Reads.
func (p *MockPort) FeedRead(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rx.Write(data)
}

// Read drains queued receive data
func (p *MockPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	if p.rx.Len() == 0 {
		return 0, io.EOF
	}
	return p.rx.Read(b)
}

// Write captures data sent to the device
func (p *MockPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}
	return p.tx.Write(b)
}

// Written returns a copy of everything written so far.
func (p *MockPort) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, p.tx.Len())
	copy(out, p.tx.Bytes())
	return out
}

// Close marks the port closed; subsequent operations fail.
func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	return nil
}
