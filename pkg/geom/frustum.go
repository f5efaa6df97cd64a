package geom

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-editor/pkg/math"
)

// Frustum is a view volume bounded by six inward-facing planes
// (left, right, bottom, top, near, far).
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the frustum of a view-projection matrix using
// the Gribb/Hartmann method. Normals point into the volume.
func FrustumFromMatrix(viewProj mgl64.Mat4) (Frustum, error) {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)
	rows := [6]mgl64.Vec4{
		r3.Add(r0),
		r3.Sub(r0),
		r3.Add(r1),
		r3.Sub(r1),
		r3.Add(r2),
		r3.Sub(r2),
	}

	var f Frustum
	for i, r := range rows {
		// a*x + b*y + c*z + d >= 0 inside, so Normal·P >= -d.
		p, err := NewPlane(math.Vec3{X: r[0], Y: r[1], Z: r[2]}, -r[3])
		if err != nil {
			return Frustum{}, err
		}
		f.Planes[i] = p
	}
	return f, nil
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.Evaluate(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsBox reports whether any part of the box may be inside the
// frustum. It is conservative: boxes near corners can pass.
func (f Frustum) IntersectsBox(b math.Box) bool {
	for _, plane := range f.Planes {
		positive := b.Min
		if plane.Normal.X >= 0 {
			positive.X = b.Max.X
		}
		if plane.Normal.Y >= 0 {
			positive.Y = b.Max.Y
		}
		if plane.Normal.Z >= 0 {
			positive.Z = b.Max.Z
		}
		if plane.Evaluate(positive) < 0 {
			return false
		}
	}
	return true
}
