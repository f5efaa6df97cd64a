// Package picking provides ray casting against brushes: editor picking,
// frustum culling and the shadow-ray backend of the lightmap baker.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-editor/pkg/brush"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

// parallelEpsilon treats rays this close to parallel with a plane as parallel.
const parallelEpsilon = 1e-12

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay normalizes direction.
func NewRay(origin, direction math.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float64, invViewProj mgl64.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // Flip Y

	near := unproject(invViewProj, mgl64.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invViewProj, mgl64.Vec4{ndcX, ndcY, 1, 1})
	return NewRay(near, far.Sub(near))
}

func unproject(m mgl64.Mat4, ndc mgl64.Vec4) math.Vec3 {
	p := m.Mul4x1(ndc)
	if p[3] != 0 {
		p = p.Mul(1 / p[3])
	}
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box math.Box) (t float64, hit bool) {
	tmin := gomath.Inf(-1)
	tmax := gomath.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o := r.Origin.Component(axis)
		d := r.Direction.Component(axis)
		lo, hi := box.Min.Component(axis), box.Max.Component(axis)
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectSolid clips the ray against every face plane of a convex solid
// and returns the entry distance and the face that was entered. A ray
// starting inside the solid hits at distance 0 with a nil face.
func (r Ray) IntersectSolid(s *brush.Solid) (t float64, face *brush.Face, hit bool) {
	enter, exit := 0.0, gomath.Inf(1)
	for _, f := range s.Faces {
		denom := f.Plane.Normal.Dot(r.Direction)
		dist := f.Plane.Evaluate(r.Origin)
		if gomath.Abs(denom) < parallelEpsilon {
			if dist > 0 {
				return 0, nil, false
			}
			continue
		}
		ft := -dist / denom
		if denom < 0 {
			if ft > enter {
				enter, face = ft, f
			}
		} else if ft < exit {
			exit = ft
		}
		if enter > exit {
			return 0, nil, false
		}
	}
	return enter, face, true
}
