// Package lighting describes the light sources used by the lightmap baker.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/midgard-editor/pkg/math"
)

// InchesToMeters converts world units to meters for attenuation.
const InchesToMeters = 0.0254

// DefaultRange is used for point lights without a positive range.
const DefaultRange = 100.0

// Contribution is what a light delivers to one point before shadowing and
// the surface's diffuse term are applied.
type Contribution struct {
	ToLight  math.Vec3  // unit vector from the point toward the light
	Distance float64    // distance to the light, +Inf for directional lights
	Color    [3]float32 // color * intensity * attenuation
}

// Light is a source the baker can evaluate at a world position.
type Light interface {
	// Contribution reports false when the point is out of the light's reach.
	Contribution(point math.Vec3) (Contribution, bool)
}

// PointLight radiates in all directions from Position and fades out at
// Range.
type PointLight struct {
	Position  math.Vec3
	Color     [3]float32 // RGB, 0-1
	Range     float64
	Intensity float32
}

// NewPointLight clamps the color to [0,1] and defaults a non-positive range.
func NewPointLight(position math.Vec3, color [3]float32, rng float64, intensity float32) PointLight {
	if rng <= 0 {
		rng = DefaultRange
	}
	return PointLight{
		Position:  position,
		Color:     clampColor(color),
		Range:     rng,
		Intensity: intensity,
	}
}

// Contribution implements Light.
func (l PointLight) Contribution(point math.Vec3) (Contribution, bool) {
	delta := l.Position.Sub(point)
	d := delta.Length()
	if d >= l.Range || d == 0 {
		return Contribution{}, false
	}
	a := Attenuation(d, l.Range) * l.Intensity
	return Contribution{
		ToLight:  delta.Scale(1 / d),
		Distance: d,
		Color:    [3]float32{l.Color[0] * a, l.Color[1] * a, l.Color[2] * a},
	}, true
}

// DirectionalLight shines uniformly along Direction, like the sun.
type DirectionalLight struct {
	Direction math.Vec3 // direction the light travels
	Color     [3]float32
	Intensity float32
}

// Contribution implements Light. Directional lights do not attenuate.
func (l DirectionalLight) Contribution(math.Vec3) (Contribution, bool) {
	dir := l.Direction.Normalize()
	if dir.LengthSquared() == 0 {
		return Contribution{}, false
	}
	return Contribution{
		ToLight:  dir.Neg(),
		Distance: gomath.Inf(1),
		Color: [3]float32{
			l.Color[0] * l.Intensity,
			l.Color[1] * l.Intensity,
			l.Color[2] * l.Intensity,
		},
	}, true
}

// Attenuation combines inverse-square falloff in meters with a smooth cubic
// cutoff that reaches zero at rng.
func Attenuation(distance, rng float64) float32 {
	m := distance * InchesToMeters
	falloff := 1 / (1 + m*m)
	return float32(falloff * (1 - smoothstep(distance/rng)))
}

func smoothstep(x float64) float64 {
	x = min(max(x, 0), 1)
	return x * x * (3 - 2*x)
}

func clampColor(c [3]float32) [3]float32 {
	for i := range c {
		c[i] = min(max(c[i], 0), 1)
	}
	return c
}
