package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMovementSingleLine(t *testing.T) {
	c := NewClassifier()
	ev := c.Classify("Movement complete: Moving forward 50 mm")
	require.NotNil(t, ev)
	move, ok := ev.(Movement)
	require.True(t, ok, "expected Movement, got %T", ev)
	assert.Equal(t, MoveForward, move.Kind)
	assert.Equal(t, 5.0, move.Magnitude, "50 mm should convert to 5 cm")
}

func TestClassifyMovementGatedOnMarker(t *testing.T) {
	c := NewClassifier()

	if ev := c.Classify("Moving forward 250 mm"); ev != nil {
		t.Fatalf("unconfirmed movement emitted event %v", ev)
	}
	ev := c.Classify("Movement complete")
	require.NotNil(t, ev, "marker line should release the pending movement")
	move := ev.(Movement)
	assert.Equal(t, MoveForward, move.Kind)
	assert.Equal(t, 25.0, move.Magnitude)

	// the marker is consumed with the block; a second marker is noise
	assert.Nil(t, c.Classify("Movement complete"))
}

func TestClassifyMovementDiscardedAtPrompt(t *testing.T) {
	c := NewClassifier()
	c.Classify("Moving forward 100 mm")
	c.Classify("> ")
	assert.Nil(t, c.Classify("Movement complete"),
		"prompt should discard the unconfirmed movement")
}

func TestClassifyTurns(t *testing.T) {
	cases := []struct {
		name string
		line string
		kind MovementKind
		mag  float64
	}{
		{"turn right long", "Turning right 30 degrees", TurnRight, 30},
		{"turn left long", "Turning left 45 degrees", TurnLeft, 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClassifier()
			assert.Nil(t, c.Classify(tc.line))
			ev := c.Classify("Movement complete")
			require.NotNil(t, ev)
			move := ev.(Movement)
			assert.Equal(t, tc.kind, move.Kind)
			assert.Equal(t, tc.mag, move.Magnitude)
		})
	}
}

func TestClassifyQuickMovements(t *testing.T) {
	cases := []struct {
		line string
		kind MovementKind
		mag  float64
	}{
		{"Quick move forward 10cm complete", MoveForward, 10},
		{"Quick move backward 10cm complete", MoveBackward, 10},
		{"Quick turn right 10 degrees complete", TurnRight, 10},
		{"Quick turn left 10 degrees complete", TurnLeft, 10},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			c := NewClassifier()
			ev := c.Classify(tc.line)
			require.NotNil(t, ev)
			move := ev.(Movement)
			assert.Equal(t, tc.kind, move.Kind)
			assert.Equal(t, tc.mag, move.Magnitude)
			assert.GreaterOrEqual(t, move.Magnitude, 0.0,
				"magnitude must be non-negative; direction lives in the kind")
		})
	}
}

func TestClassifyPendingMarkerDoesNotShadowScanComplete(t *testing.T) {
	c := NewClassifier()
	c.Classify("Beginning IR environment scan")
	assert.Nil(t, c.Classify("Quick turn right 10 degrees"))

	// the quick-form marker is the bare word "complete"; a scan
	// completion containing it must still classify as ScanComplete
	ev := c.Classify("IR scan complete")
	require.IsType(t, ScanComplete{}, ev)
	assert.Equal(t, ScanKindIR, ev.(ScanComplete).Kind)
	if _, active := c.ActiveScanKind(); active {
		t.Error("scan should seal even with a movement confirmation pending")
	}

	// the held movement still releases on its own marker line
	ev = c.Classify("turn complete")
	require.IsType(t, Movement{}, ev)
	move := ev.(Movement)
	assert.Equal(t, TurnRight, move.Kind)
	assert.Equal(t, 10.0, move.Magnitude)
}

func TestClassifyPromptEndsDetectionTable(t *testing.T) {
	c := NewClassifier()
	c.Classify("IR Object Detection Results")
	require.IsType(t, DetectionRow{}, c.Classify("1 |  45.0 |  60.5 |  12.0"))
	c.Classify("> ")

	assert.Nil(t, c.Classify("Battery 12.4 V cell 3 temp 77 load 21"),
		"numeric status line after the prompt must not extend the detection table")
}

func TestClassifyScanLifecycle(t *testing.T) {
	c := NewClassifier()

	ev := c.Classify("Beginning IR environment scan")
	require.IsType(t, ScanBegin{}, ev)
	assert.Equal(t, ScanKindIR, ev.(ScanBegin).Kind)

	kind, active := c.ActiveScanKind()
	require.True(t, active)
	assert.Equal(t, ScanKindIR, kind)

	ev = c.Classify("IR scan complete")
	require.IsType(t, ScanComplete{}, ev)
	assert.Equal(t, ScanKindIR, ev.(ScanComplete).Kind)

	if _, active := c.ActiveScanKind(); active {
		t.Error("scan should be inactive after matching completion")
	}
}

func TestClassifyMismatchedScanCompleteKeepsMode(t *testing.T) {
	c := NewClassifier()
	c.Classify("Beginning IR environment scan")

	ev := c.Classify("PING scan complete")
	require.IsType(t, ScanComplete{}, ev)
	assert.Equal(t, ScanKindPing, ev.(ScanComplete).Kind)

	// the IR collection window is still open: rows still classify
	kind, active := c.ActiveScanKind()
	require.True(t, active)
	assert.Equal(t, ScanKindIR, kind)

	row := c.Classify("90\t100.0\t881")
	require.IsType(t, ScanRow{}, row)
}

func TestClassifyScanRows(t *testing.T) {
	c := NewClassifier()
	c.Classify("Beginning PING environment scan")

	ev := c.Classify("45\t120.5")
	require.IsType(t, ScanRow{}, ev)
	row := ev.(ScanRow)
	assert.Equal(t, 45.0, row.LocalAngle)
	assert.Equal(t, 120.5, row.Distance)

	// trailing tokens (IR intensity) are ignored
	ev = c.Classify("90 80.0 1204")
	require.IsType(t, ScanRow{}, ev)
	assert.Equal(t, 80.0, ev.(ScanRow).Distance)
}

func TestClassifyScanRowOutsideScanIsNoise(t *testing.T) {
	c := NewClassifier()
	assert.Nil(t, c.Classify("45\t120.5"), "row with no framing scan should be ignored")
}

func TestClassifyScanRowAngleOutOfRange(t *testing.T) {
	c := NewClassifier()
	c.Classify("Beginning IR environment scan")
	assert.Nil(t, c.Classify("181 50.0"))
	assert.Nil(t, c.Classify("-5 50.0"))
}

func TestClassifyScanRowFallbackExtraction(t *testing.T) {
	c := NewClassifier()
	c.Classify("Beginning IR environment scan")

	// strict field parsing fails on the label; positional extraction recovers
	ev := c.Classify("angle=45 dist=120.5 raw=881")
	require.IsType(t, ScanRow{}, ev)
	row := ev.(ScanRow)
	assert.Equal(t, 45.0, row.LocalAngle)
	assert.Equal(t, 120.5, row.Distance)

	// fallback below minimum field count: dropped
	assert.Nil(t, c.Classify("angle=45 only"))
}

func TestClassifyDetectionTable(t *testing.T) {
	c := NewClassifier()

	ev := c.Classify("IR Object Detection Results")
	require.IsType(t, DetectionHeader{}, ev)
	assert.Equal(t, ScanKindIR, ev.(DetectionHeader).Kind)

	ev = c.Classify("1 |  45.0 |  60.5 |  12.0")
	require.IsType(t, DetectionRow{}, ev)
	row := ev.(DetectionRow)
	assert.Equal(t, 1, row.ID)
	assert.Equal(t, 45.0, row.LocalAngle)
	assert.Equal(t, 60.5, row.Distance)
	assert.Equal(t, 12.0, row.Width)
	assert.Equal(t, ScanKindIR, row.SourceKind)
}

func TestClassifyDetectionRowWhitespaceVariant(t *testing.T) {
	c := NewClassifier()
	c.Classify("PING Object Detection Results")

	ev := c.Classify("2 90.0 45.5 8.0")
	require.IsType(t, DetectionRow{}, ev)
	row := ev.(DetectionRow)
	assert.Equal(t, 2, row.ID)
	assert.Equal(t, ScanKindPing, row.SourceKind)
}

func TestClassifyDetectionRowMalformed(t *testing.T) {
	c := NewClassifier()
	c.Classify("IR Object Detection Results")

	assert.Nil(t, c.Classify("1 | 45.0 | garbage"), "three fields is below minimum")
	assert.Nil(t, c.Classify("1 | 200.0 | 60.5 | 12.0"), "angle out of range")

	// fallback recovers a row with decoration around the numbers
	ev := c.Classify("obj 3: 45.0deg 60.5cm 12.0cm")
	require.IsType(t, DetectionRow{}, ev)
	assert.Equal(t, 3, ev.(DetectionRow).ID)
}

func TestClassifyFeatureMarker(t *testing.T) {
	c := NewClassifier()
	ev := c.Classify("Boundary marker detected")
	require.IsType(t, FeatureMark{}, ev)
}

func TestClassifyNoiseToleration(t *testing.T) {
	c := NewClassifier()
	for _, line := range []string{
		"",
		"Connected to robot",
		"battery: OK",
		"CyBot ready",
	} {
		if ev := c.Classify(line); ev != nil {
			t.Errorf("Classify(%q) = %v, want nil", line, ev)
		}
	}
}

func TestClassifySequenceAcrossBlocks(t *testing.T) {
	c := NewClassifier()

	var events []Event
	for _, line := range []string{
		"Beginning IR environment scan",
		"0\t50.0\t800",
		"90\t100.0\t900",
		"IR scan complete",
		"> ",
		"Moving forward 100 mm",
		"Movement complete",
		"> ",
		"IR Object Detection Results",
		"1 |  90.0 |  50.0 |  10.0",
	} {
		if ev := c.Classify(line); ev != nil {
			events = append(events, ev)
		}
	}

	require.Len(t, events, 7)
	assert.IsType(t, ScanBegin{}, events[0])
	assert.IsType(t, ScanRow{}, events[1])
	assert.IsType(t, ScanRow{}, events[2])
	assert.IsType(t, ScanComplete{}, events[3])
	assert.IsType(t, Movement{}, events[4])
	assert.IsType(t, DetectionHeader{}, events[5])
	assert.IsType(t, DetectionRow{}, events[6])
}
