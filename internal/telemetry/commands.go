package telemetry

import (
	"fmt"
	"strconv"
	"time"
)

// Single-character command set understood by the robot. Commands are
// newline-terminated ASCII, echoed back by the robot's prompt loop.
var allowedCommands = []string{
	"i", // Run an IR environment scan
	"p", // Run a PING (sonar) environment scan
	"f", // Quick move forward 10 cm
	"b", // Quick move backward 10 cm
	"r", // Quick turn right 10 degrees
	"l", // Quick turn left 10 degrees
	"m", // Parameterised move (see SendMove)
	"h", // Halt motors
	"?", // Print command help
}

// IsAllowedCommand reports whether command is in the robot's vocabulary.
func IsAllowedCommand(command string) bool {
	for _, allowed := range allowedCommands {
		if command == allowed {
			return true
		}
	}
	return false
}

// CommandSender is the outbound half of the transport mux.
type CommandSender interface {
	SendCommand(string) error
}

// defaultMoveTokenDelay spaces out the writes of the compound move command.
// The robot reads each parameter through a blocking prompt; tokens written
// back-to-back land in one buffer and the second prompt reads garbage.
// This is a timing assumption about the robot's firmware, not something
// this side can detect or fix.
const defaultMoveTokenDelay = 150 * time.Millisecond

// SendMove issues the parameterised move command: the command byte, then
// the translation distance in millimeters, then the turn angle in degrees,
// each as a separate newline-terminated write spaced by tokenDelay
// (non-positive values fall back to the default). The robot confirms with
// "Moving forward <N> mm" / "Turning ..." lines followed by a "Movement
// complete" marker.
func SendMove(s CommandSender, distanceMM, turnDegrees int, tokenDelay time.Duration) error {
	if tokenDelay <= 0 {
		tokenDelay = defaultMoveTokenDelay
	}
	if err := s.SendCommand("m"); err != nil {
		return fmt.Errorf("failed to send move command: %w", err)
	}
	time.Sleep(tokenDelay)
	if err := s.SendCommand(strconv.Itoa(distanceMM)); err != nil {
		return fmt.Errorf("failed to send move distance: %w", err)
	}
	time.Sleep(tokenDelay)
	if err := s.SendCommand(strconv.Itoa(turnDegrees)); err != nil {
		return fmt.Errorf("failed to send move angle: %w", err)
	}
	return nil
}
