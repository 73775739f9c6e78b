// Package mapper owns the live map state built from classified telemetry:
// the dead-reckoned pose, the movement history, the scan in progress, the
// detected-object working set, and the boundary feature samples. All world
// coordinates are centimeters; headings are degrees in [0, 360) with 0
// along +x and 90 along +y, increasing counter-clockwise.
package mapper

import (
	"math"

	"github.com/cybotics/groundstation/internal/telemetry"
	"github.com/cybotics/groundstation/internal/units"
)

// Pose is the robot's estimated position and heading in the world frame.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// PoseTracker integrates confirmed movement events into a running pose
// estimate (dead reckoning — no external correction) and keeps an
// append-only history of every pose the robot has occupied, for path
// reconstruction. It is not safe for concurrent use; the Mapper serialises
// access.
type PoseTracker struct {
	pose    Pose
	history []Pose
}

// NewPoseTracker starts tracking from the given pose. The history is
// seeded with the starting pose so the reconstructed path has an origin.
func NewPoseTracker(initial Pose) *PoseTracker {
	initial.Heading = units.NormalizeDegrees(initial.Heading)
	return &PoseTracker{
		pose:    initial,
		history: []Pose{initial},
	}
}

// ApplyMovement integrates one confirmed movement. Translation moves along
// the current heading; backward movement is forward with the distance
// negated. Right turns decrease the heading, left turns increase it, and
// the result is renormalized into [0, 360). The resulting pose is appended
// to the history.
func (t *PoseTracker) ApplyMovement(ev telemetry.Movement) {
	switch ev.Kind {
	case telemetry.MoveForward:
		t.translate(ev.Magnitude)
	case telemetry.MoveBackward:
		t.translate(-ev.Magnitude)
	case telemetry.TurnRight:
		t.pose.Heading = units.NormalizeDegrees(t.pose.Heading - ev.Magnitude)
	case telemetry.TurnLeft:
		t.pose.Heading = units.NormalizeDegrees(t.pose.Heading + ev.Magnitude)
	}
	t.history = append(t.history, t.pose)
}

func (t *PoseTracker) translate(distance float64) {
	rad := units.DegreesToRadians(t.pose.Heading)
	t.pose.X += distance * math.Cos(rad)
	t.pose.Y += distance * math.Sin(rad)
}

// Current returns an immutable snapshot of the pose.
func (t *PoseTracker) Current() Pose {
	return t.pose
}

// History returns a copy of the movement history in arrival order.
func (t *PoseTracker) History() []Pose {
	out := make([]Pose, len(t.history))
	copy(out, t.history)
	return out
}
