package math

import "math"

// Vec2 is a point or size in a 2D parameter space: texture coordinates,
// lightmap charts and packer placements.
type Vec2 struct {
	X, Y float64
}

// Splat returns a vector with both components set to s.
func Splat(s float64) Vec2 {
	return Vec2{s, s}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Mul multiplies component-wise.
func (v Vec2) Mul(other Vec2) Vec2 {
	return Vec2{v.X * other.X, v.Y * other.Y}
}

// Div divides component-wise. Zero components of other give infinities.
func (v Vec2) Div(other Vec2) Vec2 {
	return Vec2{v.X / other.X, v.Y / other.Y}
}

func (v Vec2) Min(other Vec2) Vec2 {
	return Vec2{min(v.X, other.X), min(v.Y, other.Y)}
}

func (v Vec2) Max(other Vec2) Vec2 {
	return Vec2{max(v.X, other.X), max(v.Y, other.Y)}
}

// Ceil rounds both components up to whole units.
func (v Vec2) Ceil() Vec2 {
	return Vec2{math.Ceil(v.X), math.Ceil(v.Y)}
}

// Area returns X*Y, the area of a size vector.
func (v Vec2) Area() float64 {
	return v.X * v.Y
}

func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}
