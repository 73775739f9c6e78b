package linemux

import (
	"io"
	"time"
)

// LinePorter defines the minimal interface needed for a byte transport
// carrying newline-delimited telemetry. This abstraction enables unit
// testing without a robot on the other end.
type LinePorter interface {
	io.ReadWriter
	io.Closer
}

// TimeoutLinePorter extends LinePorter with a bounded read wait. Transports
// that implement it let Monitor poll at a sub-second interval so a
// cancelled context is observed promptly instead of blocking in Read
// indefinitely.
type TimeoutLinePorter interface {
	LinePorter
	// SetReadTimeout sets the read timeout for the transport.
	SetReadTimeout(timeout time.Duration) error
}
