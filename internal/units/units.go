// Package units provides shared conversions for the distances and angles
// used across the telemetry pipeline. Map state is kept in centimeters and
// degrees; the robot reports long-form movement distances in millimeters.
package units

import "math"

// MillimetersToCentimeters converts a millimeter value to centimeters.
func MillimetersToCentimeters(mm float64) float64 {
	return mm / 10.0
}

// CentimetersToMillimeters converts a centimeter value to millimeters.
func CentimetersToMillimeters(cm float64) float64 {
	return cm * 10.0
}

// DegreesToRadians converts degrees to radians. Angles stay in degrees
// everywhere except at trigonometric call sites.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// NormalizeDegrees wraps an angle into [0, 360). Go's math.Mod keeps the
// sign of the dividend, so a second pass is needed for negative inputs.
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}
