package mapper

import (
	"github.com/cybotics/groundstation/internal/telemetry"
)

// DetectedObject is one object record converted into the world frame with
// the pose current when its row was parsed.
type DetectedObject struct {
	ID         int                `json:"id"`
	LocalAngle float64            `json:"local_angle"`
	Distance   float64            `json:"distance"`
	Width      float64            `json:"width"`
	WorldX     float64            `json:"world_x"`
	WorldY     float64            `json:"world_y"`
	SourceKind telemetry.ScanKind `json:"source_kind"`
}

// ObjectRegistry accumulates the working set of detected objects. The set
// is replaced per detection pass, with a deliberate asymmetry: only the IR
// results header clears the list. The PING header appends to whatever is
// already there, so IR and PING detections from one pass over the
// environment coexist on the map. Object ids are not deduplicated —
// re-detections append; no tracking or association is attempted here.
//
// Not safe for concurrent use; the Mapper serialises access.
type ObjectRegistry struct {
	objects []DetectedObject
}

// OnHeader handles a detection-results header of the given kind.
func (r *ObjectRegistry) OnHeader(kind telemetry.ScanKind) {
	if kind == telemetry.ScanKindIR {
		r.objects = nil
	}
}

// OnRow converts one detection row into world coordinates using the pose
// at call time and appends it to the working set.
func (r *ObjectRegistry) OnRow(row telemetry.DetectionRow, p Pose) DetectedObject {
	wx, wy := LocalToWorld(row.LocalAngle, row.Distance, p)
	obj := DetectedObject{
		ID:         row.ID,
		LocalAngle: row.LocalAngle,
		Distance:   row.Distance,
		Width:      row.Width,
		WorldX:     wx,
		WorldY:     wy,
		SourceKind: row.SourceKind,
	}
	r.objects = append(r.objects, obj)
	return obj
}

// Objects returns a copy of the current working set in arrival order.
func (r *ObjectRegistry) Objects() []DetectedObject {
	out := make([]DetectedObject, len(r.objects))
	copy(out, r.objects)
	return out
}
