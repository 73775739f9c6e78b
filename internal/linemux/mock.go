package linemux

import (
	"bytes"
	"errors"
	"io"
	"log"
	"sync"
	"time"
)

// MockPort implements LinePorter for dev mode. Reads replay a recorded
// telemetry fixture through a pipe; writes (outbound commands) are logged
// and discarded since there is no robot to receive them.
type MockPort struct {
	io.Reader
	closer io.Closer
}

func (m *MockPort) Write(p []byte) (n int, err error) {
	log.Printf("mock transport: dropping command %q", string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

func (m *MockPort) Close() error {
	return m.closer.Close()
}

// NewMockLineMux creates a LineMux backed by a mock transport that replays
// the provided fixture bytes on a timer, simulating the robot's bursty
// telemetry output.
func NewMockLineMux(fixture []byte, interval time.Duration) *LineMux[*MockPort] {
	r, w := io.Pipe()

	go func() {
		defer w.Close()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := w.Write(fixture); err != nil {
				return
			}
		}
	}()

	return NewLineMux(&MockPort{Reader: r, closer: r})
}

// TestablePort implements TimeoutLinePorter with configurable behaviour for
// testing: scripted reads, captured writes, injectable errors.
type TestablePort struct {
	mu sync.Mutex

	readBuf  bytes.Buffer
	writeBuf bytes.Buffer

	// ReadError is returned by the next Read call if set.
	ReadError error

	// WriteError is returned by the next Write call if set.
	WriteError error

	// ShortWrites makes Write report one byte fewer than requested.
	ShortWrites bool

	closed      bool
	readTimeout time.Duration
}

// NewTestablePort creates a TestablePort with no pending data.
func NewTestablePort() *TestablePort {
	return &TestablePort{}
}

// AddReadData appends data to be returned by subsequent Read calls.
func (t *TestablePort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readBuf.Write(data)
}

// WrittenData returns everything written to the port so far.
func (t *TestablePort) WrittenData() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writeBuf.String()
}

func (t *TestablePort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, io.EOF
	}
	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}
	if t.readBuf.Len() == 0 {
		// emulate a timed-out poll: no data, no error
		t.mu.Unlock()
		time.Sleep(time.Millisecond)
		t.mu.Lock()
		return 0, nil
	}
	return t.readBuf.Read(p)
}

func (t *TestablePort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, errors.New("port closed")
	}
	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}
	n, err := t.writeBuf.Write(p)
	if t.ShortWrites && n > 0 {
		n--
	}
	return n, err
}

func (t *TestablePort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *TestablePort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readTimeout = timeout
	return nil
}

// ReadTimeout reports the most recent timeout applied via SetReadTimeout.
func (t *TestablePort) ReadTimeout() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readTimeout
}
