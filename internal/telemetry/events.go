// Package telemetry interprets the robot's loosely structured ASCII
// telemetry stream. The Classifier matches each framed line against a
// fixed vocabulary of event templates and emits typed events; everything
// the vocabulary does not recognize is treated as protocol noise.
package telemetry

// ScanKind identifies which distance sensor produced a scan or detection.
type ScanKind string

const (
	ScanKindIR   ScanKind = "IR"
	ScanKindPing ScanKind = "PING"
)

// MovementKind identifies the direction of a confirmed movement.
type MovementKind int

const (
	MoveForward MovementKind = iota
	MoveBackward
	TurnLeft
	TurnRight
)

func (k MovementKind) String() string {
	switch k {
	case MoveForward:
		return "forward"
	case MoveBackward:
		return "backward"
	case TurnLeft:
		return "turn_left"
	case TurnRight:
		return "turn_right"
	default:
		return "unknown"
	}
}

// Event is the tagged union of everything the classifier can emit. The
// concrete types below are the only implementations.
type Event interface {
	event()
}

// Movement is a confirmed movement. Magnitude is always non-negative —
// centimeters for translation, degrees for rotation; direction is encoded
// in Kind, never in the sign.
type Movement struct {
	Kind      MovementKind
	Magnitude float64
}

// ScanBegin marks the start of an environment scan of the given kind.
type ScanBegin struct {
	Kind ScanKind
}

// ScanComplete marks the end of an environment scan of the given kind.
type ScanComplete struct {
	Kind ScanKind
}

// ScanRow is one sample of an in-progress scan: a sensor-local angle in
// degrees and a distance in centimeters. Trailing tokens on the wire (raw
// IR intensity) are ignored.
type ScanRow struct {
	LocalAngle float64
	Distance   float64
}

// DetectionHeader frames the start of an object-detection result table.
type DetectionHeader struct {
	Kind ScanKind
}

// DetectionRow is one detected object: id, sensor-local center angle
// (degrees), distance (cm), and width (cm), tagged with the sensor kind of
// the detection pass it belongs to.
type DetectionRow struct {
	ID         int
	LocalAngle float64
	Distance   float64
	Width      float64
	SourceKind ScanKind
}

// FeatureMark is the boundary-marker event. It carries no payload; the
// consumer samples the pose current at event time.
type FeatureMark struct{}

func (Movement) event()        {}
func (ScanBegin) event()       {}
func (ScanComplete) event()    {}
func (ScanRow) event()         {}
func (DetectionHeader) event() {}
func (DetectionRow) event()    {}
func (FeatureMark) event()     {}
