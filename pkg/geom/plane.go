// Package geom implements the plane and polygon primitives behind brush
// construction and splitting.
package geom

import (
	"errors"
	gomath "math"

	"github.com/Faultbox/midgard-editor/pkg/math"
)

const (
	// DefaultEpsilon is the classification tolerance for OnPlane, in world
	// units. It is coarse on purpose: editor geometry lives on an integer grid
	// and near-planar vertices must not spawn slivers.
	DefaultEpsilon = 0.5

	// PlaneEpsilon guards denominators of line/plane and three-plane
	// intersections.
	PlaneEpsilon = 1e-5

	// AreaEpsilon is the smallest cross product length accepted when building
	// a plane from points.
	AreaEpsilon = 1e-5
)

// Geometry errors.
var (
	ErrDegeneratePlane    = errors.New("degenerate plane: points are collinear")
	ErrDegeneratePolygon  = errors.New("degenerate polygon")
	ErrIntersectionFailed = errors.New("plane intersection failed on a spanning edge")
)

// Plane is the half-space boundary Normal·P = Distance. Values are immutable;
// every method returns a new plane.
type Plane struct {
	Normal   math.Vec3 // unit length
	Distance float64   // along Normal from the origin
	Point    math.Vec3 // any point on the plane
}

// NewPlane builds the plane normal·P = distance. normal need not be unit
// length: both terms are divided by its length, so the stored Distance is
// measured along the unit normal.
func NewPlane(normal math.Vec3, distance float64) (Plane, error) {
	l := normal.Length()
	if l < AreaEpsilon {
		return Plane{}, ErrDegeneratePlane
	}
	n := normal.Scale(1 / l)
	d := distance / l
	return Plane{Normal: n, Distance: d, Point: n.Scale(d)}, nil
}

// NewPlaneFromPoints builds the plane through three points. A clockwise
// winding seen from the front yields a normal pointing toward the viewer.
func NewPlaneFromPoints(p1, p2, p3 math.Vec3) (Plane, error) {
	c := p3.Sub(p1).Cross(p2.Sub(p1))
	l := c.Length()
	if l < AreaEpsilon || !c.IsFinite() {
		return Plane{}, ErrDegeneratePlane
	}
	n := c.Scale(1 / l)
	return Plane{Normal: n, Distance: n.Dot(p1), Point: p1}, nil
}

// Evaluate returns the signed distance of p from the plane.
func (p Plane) Evaluate(point math.Vec3) float64 {
	return p.Normal.Dot(point) - p.Distance
}

// OnPlane classifies a point: 1 in front, -1 behind, 0 within eps of the plane.
func (p Plane) OnPlane(point math.Vec3, eps float64) int {
	res := p.Evaluate(point)
	if gomath.Abs(res) < eps {
		return 0
	}
	if res < 0 {
		return -1
	}
	return 1
}

// Flip returns the plane facing the other way.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Neg(), Distance: -p.Distance, Point: p.Point}
}

// Offset returns the plane moved delta units along its normal.
func (p Plane) Offset(delta float64) Plane {
	return Plane{
		Normal:   p.Normal,
		Distance: p.Distance + delta,
		Point:    p.Point.Add(p.Normal.Scale(delta)),
	}
}

// Project returns the point on the plane closest to point.
func (p Plane) Project(point math.Vec3) math.Vec3 {
	return point.Sub(p.Normal.Scale(p.Evaluate(point)))
}

// ApproxEqual reports whether two planes have the same orientation and
// distance within eps.
func (p Plane) ApproxEqual(other Plane, eps float64) bool {
	return p.Normal.ApproxEqual(other.Normal, eps) &&
		gomath.Abs(p.Distance-other.Distance) < eps
}

// ClosestAxisBasis returns the world-aligned tangent and bitangent of the
// axis closest to the normal.
func (p Plane) ClosestAxisBasis() (u, v math.Vec3) {
	switch p.Normal.ClosestAxis() {
	case 0:
		return math.Vec3{Y: 1}, math.Vec3{Z: -1}
	case 1:
		return math.Vec3{X: 1}, math.Vec3{Z: -1}
	default:
		return math.Vec3{X: 1}, math.Vec3{Y: -1}
	}
}

// Line is a segment between two points.
type Line struct {
	Start math.Vec3
	End   math.Vec3
}

// IntersectLine returns where the line crosses the plane.
// Unless ignoreDirection is set, only lines travelling against the normal
// (front to back) intersect. Unless ignoreSegment is set, the point must lie
// between Start and End.
func (p Plane) IntersectLine(line Line, ignoreDirection, ignoreSegment bool) (math.Vec3, bool) {
	dir := line.End.Sub(line.Start)
	denominator := -p.Normal.Dot(dir)
	numerator := p.Evaluate(line.Start)
	if gomath.Abs(denominator) < PlaneEpsilon || (!ignoreDirection && denominator < 0) {
		return math.Vec3{}, false
	}
	u := numerator / denominator
	if !ignoreSegment && (u < 0 || u > 1) {
		return math.Vec3{}, false
	}
	return line.Start.Add(dir.Scale(u)), true
}

// Intersect returns the single point shared by three planes. It reports false
// when any two of them are (nearly) parallel.
func Intersect(p1, p2, p3 Plane) (math.Vec3, bool) {
	c0 := p2.Normal.Cross(p3.Normal)
	c1 := p3.Normal.Cross(p1.Normal)
	c2 := p1.Normal.Cross(p2.Normal)

	denom := p1.Normal.Dot(c0)
	if gomath.Abs(denom) < PlaneEpsilon {
		return math.Vec3{}, false
	}

	numer := c0.Scale(p1.Distance).Add(c1.Scale(p2.Distance)).Add(c2.Scale(p3.Distance))
	return numer.Scale(1 / denom), true
}
