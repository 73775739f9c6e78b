package linemux

import (
	"net"
	"time"

	"go.bug.st/serial"
)

const dialTimeout = 5 * time.Second

// NewSerialLineMux creates a LineMux backed by a real serial port at the
// given path using the provided serial options.
func NewSerialLineMux(path string, opts PortOptions) (*LineMux[serial.Port], error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	return NewLineMux[serial.Port](port), nil
}

// tcpPort adapts a net.Conn to the TimeoutLinePorter interface by mapping
// SetReadTimeout onto a rolling read deadline.
type tcpPort struct {
	net.Conn
	readTimeout time.Duration
}

func (p *tcpPort) SetReadTimeout(timeout time.Duration) error {
	p.readTimeout = timeout
	return nil
}

func (p *tcpPort) Read(buf []byte) (int, error) {
	if p.readTimeout > 0 {
		if err := p.Conn.SetReadDeadline(time.Now().Add(p.readTimeout)); err != nil {
			return 0, err
		}
	}
	return p.Conn.Read(buf)
}

// NewTCPLineMux creates a LineMux backed by a TCP connection to the robot's
// telemetry socket (the robot exposes a raw ASCII stream, one logical
// message per line).
func NewTCPLineMux(addr string) (*LineMux[*tcpPort], error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, err
	}
	return NewLineMux(&tcpPort{Conn: conn}), nil
}
