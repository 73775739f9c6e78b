package mapper

import (
	"sync"

	"github.com/cybotics/groundstation/internal/telemetry"
)

// DefaultMaxRange is the sensor range gate in centimeters: scan samples at
// or beyond it are reflections or open space and never enter the map.
const DefaultMaxRange = 250.0

// FeatureSample is a boundary-feature position sampled at the pose current
// when the marker event arrived. Samples are never removed or deduplicated.
type FeatureSample struct {
	WorldX float64 `json:"world_x"`
	WorldY float64 `json:"world_y"`
}

// Options configures a Mapper.
type Options struct {
	// InitialPose is the dead-reckoning origin. The robot boots facing
	// "up" on the map: (0, 0) at heading 90.
	InitialPose Pose
	// MaxRange gates scan samples, in centimeters. Zero means
	// DefaultMaxRange.
	MaxRange float64
	// OnScanSealed, if set, receives each sealed scan record. Called
	// synchronously with the mapper lock held, so it must not call back
	// into the Mapper.
	OnScanSealed func(ScanRecord)
}

// DefaultOptions returns the options the original robot boots with.
func DefaultOptions() Options {
	return Options{
		InitialPose: Pose{X: 0, Y: 0, Heading: 90},
		MaxRange:    DefaultMaxRange,
	}
}

// Mapper is the telemetry interpretation engine: it classifies each framed
// line and applies the resulting event to the map state. One background
// reader drives HandleLine; renderers and API handlers read snapshots on
// their own schedule. A single mutex guards the whole classify-and-apply
// step per line, so a snapshot never observes half-applied state.
//
// All derived state (world coordinates, history) is deterministic given
// the event sequence: replaying the same lines reproduces the same map.
type Mapper struct {
	mu sync.Mutex

	classifier *telemetry.Classifier
	tracker    *PoseTracker
	session    ScanSession
	objects    ObjectRegistry
	features   []FeatureSample

	maxRange     float64
	onScanSealed func(ScanRecord)
}

// New creates a Mapper with the given options.
func New(opts Options) *Mapper {
	if opts.MaxRange == 0 {
		opts.MaxRange = DefaultMaxRange
	}
	return &Mapper{
		classifier:   telemetry.NewClassifier(),
		tracker:      NewPoseTracker(opts.InitialPose),
		maxRange:     opts.MaxRange,
		onScanSealed: opts.OnScanSealed,
	}
}

// HandleLine classifies one telemetry line and applies it to the map
// state atomically. It returns the classified event (nil for noise) so the
// caller can log or persist it. Row-level parse failures never surface as
// errors; only the transport can end the session.
func (m *Mapper) HandleLine(line string) telemetry.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev := m.classifier.Classify(line)
	if ev == nil {
		return nil
	}

	switch e := ev.(type) {
	case telemetry.Movement:
		m.tracker.ApplyMovement(e)

	case telemetry.ScanBegin:
		m.session.Begin(e.Kind)

	case telemetry.ScanRow:
		if e.Distance > 0 && e.Distance < m.maxRange {
			m.session.Append(e, m.tracker.Current())
		}

	case telemetry.ScanComplete:
		if rec, ok := m.session.Complete(e.Kind); ok && m.onScanSealed != nil {
			m.onScanSealed(*rec)
		}

	case telemetry.DetectionHeader:
		m.objects.OnHeader(e.Kind)

	case telemetry.DetectionRow:
		m.objects.OnRow(e, m.tracker.Current())

	case telemetry.FeatureMark:
		p := m.tracker.Current()
		m.features = append(m.features, FeatureSample{WorldX: p.X, WorldY: p.Y})
	}

	return ev
}

// CurrentPose returns a snapshot of the dead-reckoned pose.
func (m *Mapper) CurrentPose() Pose {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.Current()
}

// MovementHistory returns a copy of every pose the robot has occupied, in
// order, starting with the initial pose.
func (m *Mapper) MovementHistory() []Pose {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.History()
}

// ActiveOrLastScan returns a copy of the scan currently collecting, the
// most recently sealed scan if none is active, or nil before any scan.
func (m *Mapper) ActiveOrLastScan() *ScanRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Snapshot()
}

// Objects returns a copy of the current detected-object working set.
func (m *Mapper) Objects() []DetectedObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects.Objects()
}

// FeatureSamples returns a copy of the append-only feature sample list.
func (m *Mapper) FeatureSamples() []FeatureSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FeatureSample, len(m.features))
	copy(out, m.features)
	return out
}
