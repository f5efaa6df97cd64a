package brush

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

// WeldEpsilon merges plane-intersection vertices that coincide.
const WeldEpsilon = 1e-3

// PlaneDef is one bounding half-space of a brush, as stored by plane-based
// map formats. The solid lies behind the plane.
type PlaneDef struct {
	Plane   geom.Plane
	Texture TextureRef
}

// NewSolidFromPlanes reconstructs a convex solid from its bounding planes.
// Every plane triple is intersected; points inside all planes become
// vertices of the faces they lie on. Planes that end up with fewer than three
// vertices are redundant and dropped.
func NewSolidFromPlanes(ids *IDGenerator, defs []PlaneDef, eps float64) (*Solid, error) {
	if len(defs) < MinFaces {
		return nil, fmt.Errorf("%w: %d planes", ErrInvalidSolid, len(defs))
	}

	points := make([][]math.Vec3, len(defs))
	n := len(defs)
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				pt, ok := geom.Intersect(defs[i].Plane, defs[j].Plane, defs[k].Plane)
				if !ok || !pt.IsFinite() || !insideAll(defs, pt, eps) {
					continue
				}
				for m := range defs {
					if m == i || m == j || m == k ||
						gomath.Abs(defs[m].Plane.Evaluate(pt)) < WeldEpsilon {
						points[m] = addUnique(points[m], pt)
					}
				}
			}
		}
	}

	faces := make([]*Face, 0, n)
	for i, def := range defs {
		if len(points[i]) < 3 {
			continue
		}
		poly, err := windPolygon(points[i], def.Plane.Normal)
		if err != nil || poly.Area() < geom.AreaEpsilon {
			continue
		}
		face := NewFace(ids.NextFaceID(), poly, def.Texture)
		face.Plane = def.Plane
		faces = append(faces, face)
	}

	if len(faces) < MinFaces {
		return nil, fmt.Errorf("%w: only %d bounding faces", ErrInvalidSolid, len(faces))
	}
	return NewSolid(ids.NextObjectID(), faces), nil
}

func insideAll(defs []PlaneDef, pt math.Vec3, eps float64) bool {
	for _, d := range defs {
		if d.Plane.OnPlane(pt, eps) > 0 {
			return false
		}
	}
	return true
}

func addUnique(points []math.Vec3, p math.Vec3) []math.Vec3 {
	for _, q := range points {
		if q.ApproxEqual(p, WeldEpsilon) {
			return points
		}
	}
	return append(points, p)
}

// windPolygon orders points around their centroid so the resulting polygon
// faces along normal.
func windPolygon(points []math.Vec3, normal math.Vec3) (*geom.Polygon, error) {
	var center math.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Scale(1 / float64(len(points)))

	u := points[0].Sub(center).Normalize()
	w := normal.Cross(u)

	sorted := make([]math.Vec3, len(points))
	copy(sorted, points)
	angle := func(p math.Vec3) float64 {
		d := p.Sub(center)
		return gomath.Atan2(d.Dot(w), d.Dot(u))
	}
	sort.Slice(sorted, func(a, b int) bool {
		return angle(sorted[a]) < angle(sorted[b])
	})

	poly, err := geom.NewPolygon(sorted)
	if err != nil {
		return nil, err
	}
	if poly.Plane().Normal.Dot(normal) < 0 {
		poly = poly.Flip()
	}
	return poly, nil
}

// BlockPlanes returns the six outward planes of an axis-aligned box.
func BlockPlanes(box math.Box) []geom.Plane {
	return []geom.Plane{
		{Normal: math.Vec3{X: 1}, Distance: box.Max.X, Point: box.Max},
		{Normal: math.Vec3{X: -1}, Distance: -box.Min.X, Point: box.Min},
		{Normal: math.Vec3{Y: 1}, Distance: box.Max.Y, Point: box.Max},
		{Normal: math.Vec3{Y: -1}, Distance: -box.Min.Y, Point: box.Min},
		{Normal: math.Vec3{Z: 1}, Distance: box.Max.Z, Point: box.Max},
		{Normal: math.Vec3{Z: -1}, Distance: -box.Min.Z, Point: box.Min},
	}
}

// NewBlock creates a six-sided box brush with world-aligned textures.
func NewBlock(ids *IDGenerator, box math.Box, texture TextureRef) (*Solid, error) {
	d := box.Dimensions()
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return nil, fmt.Errorf("%w: block dimensions %v", ErrInvalidSolid, d)
	}
	planes := BlockPlanes(box)
	defs := make([]PlaneDef, len(planes))
	for i, p := range planes {
		defs[i] = PlaneDef{Plane: p, Texture: texture.AlignToPlane(p)}
	}
	return NewSolidFromPlanes(ids, defs, geom.PlaneEpsilon)
}
