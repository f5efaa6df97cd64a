package lighting

import (
	gomath "math"

	"github.com/Faultbox/midgard-editor/pkg/math"
)

// SunDirection converts longitude/latitude in degrees to the unit vector
// pointing toward the sun. Longitude rotates around the Z (up) axis starting
// at +Y, latitude is the elevation above the horizon.
func SunDirection(longitude, latitude float64) math.Vec3 {
	lon := longitude * gomath.Pi / 180
	lat := latitude * gomath.Pi / 180
	return math.Vec3{
		X: gomath.Cos(lat) * gomath.Sin(lon),
		Y: gomath.Cos(lat) * gomath.Cos(lon),
		Z: gomath.Sin(lat),
	}
}

// NewSun returns the directional light shining from the given sky position.
func NewSun(longitude, latitude float64, color [3]float32, intensity float32) DirectionalLight {
	return DirectionalLight{
		Direction: SunDirection(longitude, latitude).Neg(),
		Color:     clampColor(color),
		Intensity: intensity,
	}
}
