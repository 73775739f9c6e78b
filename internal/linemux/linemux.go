// Package linemux provides an abstraction over the robot's byte transport
// (TCP socket or serial line) with the ability for multiple clients to
// subscribe to framed telemetry lines and send commands to a single device.
package linemux

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"tailscale.com/tsweb"
)

var ErrWriteFailed = fmt.Errorf("failed to write to transport")

// defaultPollInterval bounds each blocking read so the monitor loop can
// observe a cancelled context within one interval. Cancellation is
// cooperative: an in-flight read is never interrupted, so shutdown latency
// is at most one poll.
const defaultPollInterval = 250 * time.Millisecond

const defaultReadBufferSize = 4096

//go:embed templates/*
var adminTemplateFS embed.FS

var sendCommandTemplate = template.Must(template.ParseFS(adminTemplateFS, "templates/send-command.html.tmpl"))

// LineMux is a generic transport multiplexer that frames the byte stream
// into lines and fans them out to any number of subscribers.
type LineMux[T LinePorter] struct {
	port           T
	framer         *Framer
	pollInterval   time.Duration
	readBufferSize int
	subscribers    map[string]chan string
	subscriberMu   sync.Mutex
	commandMu      sync.Mutex
	closing        bool
	closingMu      sync.Mutex
}

// Interface defines the surface of the LineMux type consumed by the rest
// of the system.
type Interface interface {
	// Subscribe creates a new channel for receiving telemetry lines. The
	// channel ID identifies the unique channel when unsubscribing.
	Subscribe() (string, chan string)
	// Unsubscribe removes a channel from the list of subscribers.
	Unsubscribe(string)
	// SendCommand writes the provided command to the transport,
	// newline-terminated.
	SendCommand(string) error
	// Monitor reads bytes from the transport, frames them into lines, and
	// sends each line to the subscribers. It returns on context
	// cancellation or a transport-level fault (read error or EOF); faults
	// terminate the session and are never retried here.
	Monitor(context.Context) error
	// Close closes all subscribed channels and closes the transport.
	Close() error

	// AttachAdminRoutes attaches admin debugging endpoints to the given
	// HTTP mux served at /debug/. These routes are accessible only over
	// localhost/via Tailscale and are not publicly accessible.
	AttachAdminRoutes(*http.ServeMux)
}

// NewLineMux creates a LineMux instance backed by the given transport.
func NewLineMux[T LinePorter](port T) *LineMux[T] {
	return &LineMux[T]{
		port:           port,
		framer:         NewFramer(),
		pollInterval:   defaultPollInterval,
		readBufferSize: defaultReadBufferSize,
		subscribers:    make(map[string]chan string),
	}
}

// Tune overrides the monitor's read poll interval and read buffer size.
// Zero or negative values keep the defaults. Must be called before Monitor.
func (m *LineMux[T]) Tune(pollInterval time.Duration, readBufferSize int) {
	if pollInterval > 0 {
		m.pollInterval = pollInterval
	}
	if readBufferSize > 0 {
		m.readBufferSize = readBufferSize
	}
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

func (m *LineMux[T]) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string)
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	m.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber from the line mux.
func (m *LineMux[T]) Unsubscribe(id string) {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	if ch, ok := m.subscribers[id]; ok {
		close(ch)
		delete(m.subscribers, id)
	}
}

// SendCommand sends a command to the transport. Commands are
// newline-terminated ASCII; the terminator is appended if missing.
func (m *LineMux[T]) SendCommand(command string) error {
	m.commandMu.Lock()
	defer m.commandMu.Unlock()
	if !strings.HasSuffix(command, "\n") {
		command += "\n"
	}
	n, err := m.port.Write([]byte(command))
	if err != nil {
		return err
	}
	if n != len(command) {
		return ErrWriteFailed
	}
	return nil
}

// Monitor reads from the transport and fans framed lines out to
// subscribers. It is the sole reader of the transport.
func (m *LineMux[T]) Monitor(ctx context.Context) error {
	// bound each read so the loop can notice cancellation between reads
	if tp, ok := any(m.port).(TimeoutLinePorter); ok {
		if err := tp.SetReadTimeout(m.pollInterval); err != nil {
			return fmt.Errorf("failed to set read timeout: %w", err)
		}
	}

	buf := make([]byte, m.readBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := m.port.Read(buf)
		if n > 0 {
			for _, line := range m.framer.Feed(buf[:n]) {
				if !m.fanout(ctx, line) {
					return ctx.Err()
				}
			}
		}
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			// EOF and read errors are terminal for the session
			return err
		}
	}
}

// fanout delivers one line to every subscriber. It reports false only when
// the context was cancelled. Slow subscribers are skipped rather than
// blocking the reader.
func (m *LineMux[T]) fanout(ctx context.Context, line string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	m.closingMu.Lock()
	if m.closing {
		m.closingMu.Unlock()
		return false
	}
	m.closingMu.Unlock()

	m.subscriberMu.Lock()
	for _, ch := range m.subscribers {
		select {
		case ch <- line:
		default:
			// if the channel is full/blocking skip so as not to block the reader
		}
	}
	m.subscriberMu.Unlock()
	return true
}

func (m *LineMux[T]) Close() error {
	m.closingMu.Lock()
	m.closing = true
	m.closingMu.Unlock()

	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	for id, ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, id)
	}
	return m.port.Close()
}

func (m *LineMux[T]) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	// Basic command / live tail monitor interface using the below two API endpoints.
	debug.HandleFunc("send-command", "send a command to the robot", func(w http.ResponseWriter, r *http.Request) {
		buf := bytes.NewBuffer(nil)
		if err := sendCommandTemplate.Execute(buf, nil); err != nil {
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
			return
		}
		io.Copy(w, buf)
	})

	// API endpoint to write a command to the transport
	debug.HandleSilentFunc("send-command-api", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		command := strings.TrimSpace(r.FormValue("command"))
		if command == "" {
			http.Error(w, "Missing command", http.StatusBadRequest)
			return
		}
		if err := m.SendCommand(command); err != nil {
			http.Error(w, "Failed to write command", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, fmt.Sprintf("Wrote command %q to robot", command))
	})

	// API endpoint to issue Server-Side Events (SSE) in response to lines coming from the robot.
	debug.HandleSilentFunc("tail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

		id, c := m.Subscribe()
		defer m.Unsubscribe(id)

		// Send initial ping to establish connection
		w.Write([]byte(": ping\n\n"))
		w.(http.Flusher).Flush()

		for {
			select {
			case payload, ok := <-c:
				if !ok {
					// Channel closed, exit gracefully
					return
				}
				_, err := w.Write([]byte(fmt.Sprintf("data: %s\n\n", payload)))
				if err != nil {
					return
				}
				w.(http.Flusher).Flush()
			case <-r.Context().Done():
				return
			}
		}
	})

	debug.HandleSilentFunc("tail.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		// serve tail.js from adminTemplateFS
		f, err := adminTemplateFS.Open("templates/tail.js")
		if err != nil {
			http.Error(w, "Failed to open tail.js", http.StatusInternalServerError)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})
}
