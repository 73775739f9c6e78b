package mapper

import (
	"testing"

	"github.com/cybotics/groundstation/internal/telemetry"
)

func TestObjectRegistryIRHeaderClears(t *testing.T) {
	var r ObjectRegistry
	r.OnRow(telemetry.DetectionRow{ID: 1, LocalAngle: 90, Distance: 50}, Pose{Heading: 90})
	r.OnRow(telemetry.DetectionRow{ID: 2, LocalAngle: 45, Distance: 80}, Pose{Heading: 90})

	r.OnHeader(telemetry.ScanKindIR)
	if got := r.Objects(); len(got) != 0 {
		t.Errorf("IR header kept %d objects, want 0", len(got))
	}
}

func TestObjectRegistryPingHeaderAppends(t *testing.T) {
	var r ObjectRegistry
	r.OnHeader(telemetry.ScanKindIR)
	r.OnRow(telemetry.DetectionRow{ID: 1, LocalAngle: 90, Distance: 50, SourceKind: telemetry.ScanKindIR}, Pose{Heading: 90})

	// the PING pass over the same environment stacks onto the IR results
	r.OnHeader(telemetry.ScanKindPing)
	r.OnRow(telemetry.DetectionRow{ID: 1, LocalAngle: 92, Distance: 51, SourceKind: telemetry.ScanKindPing}, Pose{Heading: 90})

	got := r.Objects()
	if len(got) != 2 {
		t.Fatalf("objects after IR+PING pass = %d, want 2", len(got))
	}
	if got[0].SourceKind != telemetry.ScanKindIR || got[1].SourceKind != telemetry.ScanKindPing {
		t.Errorf("source kinds = %v, %v", got[0].SourceKind, got[1].SourceKind)
	}
}

func TestObjectRegistryNoIDDedup(t *testing.T) {
	var r ObjectRegistry
	r.OnRow(telemetry.DetectionRow{ID: 3, LocalAngle: 90, Distance: 50}, Pose{})
	r.OnRow(telemetry.DetectionRow{ID: 3, LocalAngle: 95, Distance: 55}, Pose{})
	if got := r.Objects(); len(got) != 2 {
		t.Errorf("repeated id collapsed: %d objects, want 2", len(got))
	}
}

func TestObjectRegistryWorldTransform(t *testing.T) {
	var r ObjectRegistry
	obj := r.OnRow(telemetry.DetectionRow{ID: 1, LocalAngle: 90, Distance: 100, Width: 12}, Pose{X: 10, Y: 20, Heading: 90})
	if !approxEqual(obj.WorldX, 10) || !approxEqual(obj.WorldY, 120) {
		t.Errorf("world = (%v, %v), want (10, 120)", obj.WorldX, obj.WorldY)
	}
	if obj.Width != 12 {
		t.Errorf("width = %v, want 12", obj.Width)
	}
}

func TestObjectRegistryObjectsIsACopy(t *testing.T) {
	var r ObjectRegistry
	r.OnRow(telemetry.DetectionRow{ID: 1, LocalAngle: 90, Distance: 50}, Pose{})
	got := r.Objects()
	got[0].ID = 99
	if r.Objects()[0].ID == 99 {
		t.Error("Objects() exposed internal storage")
	}
}
