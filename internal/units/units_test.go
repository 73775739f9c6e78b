package units

import (
	"math"
	"testing"
)

func TestMillimetersToCentimeters(t *testing.T) {
	if got := MillimetersToCentimeters(100); got != 10 {
		t.Errorf("MillimetersToCentimeters(100) = %v, want 10", got)
	}
	if got := MillimetersToCentimeters(0); got != 0 {
		t.Errorf("MillimetersToCentimeters(0) = %v, want 0", got)
	}
}

func TestCentimetersToMillimeters(t *testing.T) {
	if got := CentimetersToMillimeters(10); got != 100 {
		t.Errorf("CentimetersToMillimeters(10) = %v, want 100", got)
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{360, 0},
		{365, 5},
		{-10, 350},
		{-370, 350},
		{720, 0},
		{90, 90},
	}
	for _, c := range cases {
		if got := NormalizeDegrees(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("NormalizeDegrees(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDegreesToRadians(t *testing.T) {
	if got := DegreesToRadians(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("DegreesToRadians(180) = %v, want pi", got)
	}
}
