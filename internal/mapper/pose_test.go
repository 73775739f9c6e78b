package mapper

import (
	"math"
	"testing"

	"github.com/cybotics/groundstation/internal/telemetry"
)

const tolerance = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestPoseTrackerForwardAlongHeading(t *testing.T) {
	tr := NewPoseTracker(Pose{X: 0, Y: 0, Heading: 90})
	// confirmed "forward 100 mm" arrives as 10 cm
	tr.ApplyMovement(telemetry.Movement{Kind: telemetry.MoveForward, Magnitude: 10})

	p := tr.Current()
	if !approxEqual(p.X, 0) || !approxEqual(p.Y, 10) {
		t.Errorf("pose = (%v, %v), want (0, 10)", p.X, p.Y)
	}
	if p.Heading != 90 {
		t.Errorf("heading = %v, want 90", p.Heading)
	}
}

func TestPoseTrackerBackwardIsNegatedForward(t *testing.T) {
	tr := NewPoseTracker(Pose{Heading: 0})
	tr.ApplyMovement(telemetry.Movement{Kind: telemetry.MoveBackward, Magnitude: 5})

	p := tr.Current()
	if !approxEqual(p.X, -5) || !approxEqual(p.Y, 0) {
		t.Errorf("pose = (%v, %v), want (-5, 0)", p.X, p.Y)
	}
}

func TestPoseTrackerTurnNormalization(t *testing.T) {
	tr := NewPoseTracker(Pose{Heading: 350})
	tr.ApplyMovement(telemetry.Movement{Kind: telemetry.TurnRight, Magnitude: 20})
	if h := tr.Current().Heading; !approxEqual(h, 330) {
		t.Errorf("heading after right 20 from 350 = %v, want 330", h)
	}

	tr = NewPoseTracker(Pose{Heading: 10})
	tr.ApplyMovement(telemetry.Movement{Kind: telemetry.TurnLeft, Magnitude: 355})
	if h := tr.Current().Heading; !approxEqual(h, 5) {
		t.Errorf("heading after left 355 from 10 = %v, want 5", h)
	}
}

func TestPoseTrackerWrapAtZero(t *testing.T) {
	tr := NewPoseTracker(Pose{Heading: 10})
	tr.ApplyMovement(telemetry.Movement{Kind: telemetry.TurnRight, Magnitude: 20})
	if h := tr.Current().Heading; !approxEqual(h, 350) {
		t.Errorf("heading after right 20 from 10 = %v, want 350", h)
	}
}

func TestPoseTrackerHistoryAppendOnly(t *testing.T) {
	tr := NewPoseTracker(Pose{Heading: 90})
	tr.ApplyMovement(telemetry.Movement{Kind: telemetry.MoveForward, Magnitude: 10})
	tr.ApplyMovement(telemetry.Movement{Kind: telemetry.TurnRight, Magnitude: 90})
	tr.ApplyMovement(telemetry.Movement{Kind: telemetry.MoveForward, Magnitude: 10})

	h := tr.History()
	if len(h) != 4 {
		t.Fatalf("history length = %d, want 4 (initial + 3 movements)", len(h))
	}
	if h[0].Heading != 90 || h[0].X != 0 {
		t.Errorf("history[0] = %+v, want initial pose", h[0])
	}
	// turns record a history entry too, at the unchanged position
	if !approxEqual(h[2].X, h[1].X) || !approxEqual(h[2].Y, h[1].Y) {
		t.Errorf("turn moved the recorded position: %+v vs %+v", h[2], h[1])
	}
	last := h[3]
	if !approxEqual(last.X, 10) || !approxEqual(last.Y, 10) {
		t.Errorf("final pose = (%v, %v), want (10, 10)", last.X, last.Y)
	}
}

func TestPoseTrackerHistoryIsACopy(t *testing.T) {
	tr := NewPoseTracker(Pose{})
	h := tr.History()
	h[0].X = 9999
	if tr.History()[0].X == 9999 {
		t.Error("History() exposed internal storage")
	}
}

func TestPoseTrackerInitialHeadingNormalized(t *testing.T) {
	tr := NewPoseTracker(Pose{Heading: -90})
	if h := tr.Current().Heading; !approxEqual(h, 270) {
		t.Errorf("initial heading -90 normalized to %v, want 270", h)
	}
}
