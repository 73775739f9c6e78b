package mapper

import (
	"math"

	"github.com/cybotics/groundstation/internal/units"
)

// LocalToWorld maps a sensor-local polar measurement onto world-frame
// Cartesian coordinates given the pose at measurement time. The scan sweep
// runs 0 to 180 degrees with 90 straight ahead; the robot-relative offset
// is (d·sin θ, d·cos θ), which is rotated by the heading and translated by
// the pose position.
//
// Pure function: identical inputs always produce identical output. The
// same convention is applied to scan points and detected objects.
func LocalToWorld(localAngleDeg, distance float64, p Pose) (x, y float64) {
	theta := units.DegreesToRadians(localAngleDeg)
	relX := distance * math.Sin(theta)
	relY := distance * math.Cos(theta)

	headingRad := units.DegreesToRadians(p.Heading)
	sinH, cosH := math.Sin(headingRad), math.Cos(headingRad)
	rotX := relX*cosH - relY*sinH
	rotY := relX*sinH + relY*cosH

	return p.X + rotX, p.Y + rotY
}
