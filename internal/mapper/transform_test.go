package mapper

import (
	"math"
	"testing"
)

func TestLocalToWorldPure(t *testing.T) {
	p := Pose{X: 12.5, Y: -3, Heading: 47}
	x1, y1 := LocalToWorld(63, 118.2, p)
	x2, y2 := LocalToWorld(63, 118.2, p)
	if x1 != x2 || y1 != y2 {
		t.Errorf("identical inputs produced (%v,%v) then (%v,%v)", x1, y1, x2, y2)
	}
}

func TestLocalToWorldStraightAhead(t *testing.T) {
	// local 90 degrees is straight ahead; with heading 0 (facing +x) a
	// sample dead ahead lands on the +x axis
	x, y := LocalToWorld(90, 100, Pose{Heading: 0})
	if !approxEqual(x, 100) || !approxEqual(y, 0) {
		t.Errorf("toWorld(90, 100, heading 0) = (%v, %v), want (100, 0)", x, y)
	}

	// facing +y, the same sample lands on the +y axis
	x, y = LocalToWorld(90, 100, Pose{Heading: 90})
	if !approxEqual(x, 0) || !approxEqual(y, 100) {
		t.Errorf("toWorld(90, 100, heading 90) = (%v, %v), want (0, 100)", x, y)
	}
}

func TestLocalToWorldSidewaysSamples(t *testing.T) {
	// the sweep endpoints flank the 90-degree forward sample symmetrically:
	// facing +y, local 0 lands at -x and local 180 lands at +x
	x, y := LocalToWorld(0, 50, Pose{Heading: 90})
	if !approxEqual(x, -50) || !approxEqual(y, 0) {
		t.Errorf("toWorld(0, 50, heading 90) = (%v, %v), want (-50, 0)", x, y)
	}

	x, y = LocalToWorld(180, 50, Pose{Heading: 90})
	if !approxEqual(x, 50) || !approxEqual(y, 0) {
		t.Errorf("toWorld(180, 50, heading 90) = (%v, %v), want (50, 0)", x, y)
	}
}

func TestLocalToWorldTranslation(t *testing.T) {
	x, y := LocalToWorld(90, 10, Pose{X: 100, Y: 200, Heading: 90})
	if !approxEqual(x, 100) || !approxEqual(y, 210) {
		t.Errorf("toWorld = (%v, %v), want (100, 210)", x, y)
	}
}

func TestLocalToWorldDiagonal(t *testing.T) {
	// 45 degrees local at heading 0: offset (d·sin45, d·cos45) unrotated
	d := 100.0
	x, y := LocalToWorld(45, d, Pose{})
	want := d * math.Sqrt2 / 2
	if !approxEqual(x, want) || !approxEqual(y, want) {
		t.Errorf("toWorld(45, 100, zero pose) = (%v, %v), want (%v, %v)", x, y, want, want)
	}
}

func TestLocalToWorldZeroDistance(t *testing.T) {
	p := Pose{X: 7, Y: 8, Heading: 123}
	x, y := LocalToWorld(90, 0, p)
	if !approxEqual(x, 7) || !approxEqual(y, 8) {
		t.Errorf("zero-distance sample = (%v, %v), want pose position", x, y)
	}
}
