package linemux

import "bytes"

// Framer reassembles a raw byte stream into complete newline-delimited
// lines. The robot writes telemetry in bursts that land on the socket in
// arbitrary fragments, so a message may be split across any number of
// reads. Content after the final line feed of a chunk is retained and
// prepended to the next chunk; it is never emitted early and never
// dropped.
//
// The held partial line has no upper bound: a stream that never produces
// a terminator grows the buffer without limit. That risk is accepted
// rather than silently truncating telemetry.
type Framer struct {
	partial []byte
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends chunk to the internal buffer and returns all complete lines
// now available, in order. Line feeds are the only terminator; a trailing
// carriage return is stripped so CRLF streams frame identically. A nil or
// empty chunk is a no-op and returns no lines.
func (f *Framer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	f.partial = append(f.partial, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(f.partial, '\n')
		if i < 0 {
			break
		}
		line := f.partial[:i]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, string(line))
		f.partial = f.partial[i+1:]
	}
	return lines
}

// Pending returns the number of buffered bytes awaiting a terminator.
func (f *Framer) Pending() int {
	return len(f.partial)
}
