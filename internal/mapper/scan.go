package mapper

import (
	"time"

	"github.com/cybotics/groundstation/internal/telemetry"
	"github.com/google/uuid"
)

// ScanPoint is one range sample, kept in both the sensor-local polar form
// it arrived in and the world coordinates it was transformed to using the
// pose current at the instant the row was parsed.
type ScanPoint struct {
	LocalAngle float64 `json:"local_angle"`
	Distance   float64 `json:"distance"`
	WorldX     float64 `json:"world_x"`
	WorldY     float64 `json:"world_y"`
}

// ScanRecord is one completed (or in-progress) environment scan. Points
// are in arrival order. Once sealed the record is never mutated.
type ScanRecord struct {
	ID        uuid.UUID          `json:"id"`
	Kind      telemetry.ScanKind `json:"kind"`
	Points    []ScanPoint        `json:"points"`
	StartedAt time.Time          `json:"started_at"`
	SealedAt  time.Time          `json:"sealed_at,omitzero"`
	Sealed    bool               `json:"sealed"`
}

// clone returns a deep copy so callers can hold a record without aliasing
// the session's point slice.
func (r *ScanRecord) clone() *ScanRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Points = make([]ScanPoint, len(r.Points))
	copy(out.Points, r.Points)
	return &out
}

// ScanSession is the collection window between a scan-begin and its
// matching scan-complete event. At most one scan collects at a time: a new
// begin discards any unfinished session. Not safe for concurrent use; the
// Mapper serialises access.
type ScanSession struct {
	active *ScanRecord
	last   *ScanRecord // most recent sealed record
}

// Begin opens a collection window for the given kind, discarding any
// not-yet-sealed session.
func (s *ScanSession) Begin(kind telemetry.ScanKind) {
	s.active = &ScanRecord{
		ID:        uuid.New(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
}

// Collecting reports whether a scan is currently accumulating points.
func (s *ScanSession) Collecting() bool {
	return s.active != nil
}

// Append adds one sample to the active scan, transformed with the pose
// current at append time — not the pose at scan start, since the robot may
// move mid-scan. Rows arriving with no scan active are ignored.
func (s *ScanSession) Append(row telemetry.ScanRow, p Pose) bool {
	if s.active == nil {
		return false
	}
	wx, wy := LocalToWorld(row.LocalAngle, row.Distance, p)
	s.active.Points = append(s.active.Points, ScanPoint{
		LocalAngle: row.LocalAngle,
		Distance:   row.Distance,
		WorldX:     wx,
		WorldY:     wy,
	})
	return true
}

// Complete seals the active scan if kind matches and returns the sealed
// record. A completion for a different kind, or with no scan active, is a
// no-op and leaves any active session collecting. A scan sealed with zero
// points is a valid, empty record.
func (s *ScanSession) Complete(kind telemetry.ScanKind) (*ScanRecord, bool) {
	if s.active == nil || s.active.Kind != kind {
		return nil, false
	}
	rec := s.active
	rec.SealedAt = time.Now()
	rec.Sealed = true
	s.active = nil
	s.last = rec
	return rec.clone(), true
}

// Snapshot returns a copy of the scan currently collecting, or the most
// recently sealed record if none is active, or nil if no scan has run.
func (s *ScanSession) Snapshot() *ScanRecord {
	if s.active != nil {
		return s.active.clone()
	}
	return s.last.clone()
}
