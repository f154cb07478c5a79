package testutils

import (
	"bytes"
	"context"
	"net"
	"sync"
	"time"
)

// ConnectionMock is a net.Conn that records every write as one datagram.
type ConnectionMock struct {
	mu            sync.Mutex
	writes        [][]byte
	writeErr      error
	writeDeadline time.Time
	closed        bool
}

// NewConnectionMock creates a mock whose writes fail with writeErr when it
// is not nil.
func NewConnectionMock(writeErr error) *ConnectionMock {
	return &ConnectionMock{writeErr: writeErr}
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	return 0, net.ErrClosed
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, net.ErrClosed
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writes = append(m.writes, bytes.Clone(b))
	return len(b), nil
}

func (m *ConnectionMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2342}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error { return m.SetWriteDeadline(t) }

func (m *ConnectionMock) SetReadDeadline(t time.Time) error { return nil }

func (m *ConnectionMock) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeDeadline = t
	return nil
}

// Writes returns the datagrams written so far.
func (m *ConnectionMock) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.writes...)
}

// WriteDeadline returns the last write deadline set.
func (m *ConnectionMock) WriteDeadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeDeadline
}

func (m *ConnectionMock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// RecordingTransport records frames instead of sending them. Err, when set,
// is returned by every Send.
type RecordingTransport struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	Err    error
}

func (t *RecordingTransport) Send(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	t.frames = append(t.frames, bytes.Clone(frame))
	return nil
}

func (t *RecordingTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// Frames returns the frames sent so far.
func (t *RecordingTransport) Frames() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]byte(nil), t.frames...)
}

func (t *RecordingTransport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
