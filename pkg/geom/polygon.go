package geom

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-editor/pkg/math"
)

// PolygonClass is the position of a polygon relative to a plane.
type PolygonClass int

// Polygon classifications.
const (
	Front PolygonClass = iota
	Back
	OnPlane
	Spanning
)

// String returns the classification name.
func (c PolygonClass) String() string {
	switch c {
	case Front:
		return "front"
	case Back:
		return "back"
	case OnPlane:
		return "on-plane"
	case Spanning:
		return "spanning"
	}
	return fmt.Sprintf("PolygonClass(%d)", int(c))
}

// Polygon is an ordered loop of coplanar vertices. The winding decides the
// normal: clockwise seen from the front.
type Polygon struct {
	vertices []math.Vec3
	plane    Plane
}

// NewPolygon builds a polygon and derives its plane from the first three
// vertices, falling back to the first non-collinear triple in order.
func NewPolygon(vertices []math.Vec3) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: %d vertices", ErrDegeneratePolygon, len(vertices))
	}
	verts := make([]math.Vec3, len(vertices))
	copy(verts, vertices)

	plane, err := planeFromVertices(verts)
	if err != nil {
		return nil, err
	}
	return &Polygon{vertices: verts, plane: plane}, nil
}

func planeFromVertices(verts []math.Vec3) (Plane, error) {
	n := len(verts)
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				if p, err := NewPlaneFromPoints(verts[i], verts[j], verts[k]); err == nil {
					return p, nil
				}
			}
		}
	}
	return Plane{}, fmt.Errorf("%w: all vertices collinear", ErrDegeneratePolygon)
}

// Vertices returns a copy of the vertex loop.
func (p *Polygon) Vertices() []math.Vec3 {
	out := make([]math.Vec3, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// Len returns the vertex count.
func (p *Polygon) Len() int {
	return len(p.vertices)
}

// Plane returns the polygon's plane.
func (p *Polygon) Plane() Plane {
	return p.plane
}

// Classify returns where the polygon sits relative to plane.
func (p *Polygon) Classify(plane Plane, eps float64) PolygonClass {
	return classify(p.classifyVertices(plane, eps))
}

func (p *Polygon) classifyVertices(plane Plane, eps float64) []int {
	sides := make([]int, len(p.vertices))
	for i, v := range p.vertices {
		sides[i] = plane.OnPlane(v, eps)
	}
	return sides
}

func classify(sides []int) PolygonClass {
	allZero, allLE, allGE := true, true, true
	for _, s := range sides {
		if s != 0 {
			allZero = false
		}
		if s > 0 {
			allLE = false
		}
		if s < 0 {
			allGE = false
		}
	}
	switch {
	case allZero:
		return OnPlane
	case allLE:
		return Back
	case allGE:
		return Front
	}
	return Spanning
}

// PolygonSplit holds the pieces produced by Polygon.Split. At most one of the
// coplanar fields is set, and only when the polygon lies on the plane.
type PolygonSplit struct {
	Back          *Polygon
	Front         *Polygon
	CoplanarBack  *Polygon
	CoplanarFront *Polygon
}

// Split cuts the polygon by plane. It reports true only when the polygon
// spans the plane and was cut in two. Otherwise the polygon is returned whole
// in the field matching its side. Pieces left with fewer than three distinct
// vertices come back nil.
//
// Vertices within eps of the plane are copied into both halves.
func (p *Polygon) Split(plane Plane, eps float64) (PolygonSplit, bool, error) {
	sides := p.classifyVertices(plane, eps)

	switch classify(sides) {
	case Front:
		return PolygonSplit{Front: p}, false, nil
	case Back:
		return PolygonSplit{Back: p}, false, nil
	case OnPlane:
		if p.plane.Normal.Dot(plane.Normal) > 0 {
			return PolygonSplit{CoplanarFront: p}, false, nil
		}
		return PolygonSplit{CoplanarBack: p}, false, nil
	}

	n := len(p.vertices)
	front := make([]math.Vec3, 0, n+2)
	back := make([]math.Vec3, 0, n+2)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		s, e := p.vertices[i], p.vertices[j]
		cs, ce := sides[i], sides[j]

		if cs >= 0 {
			front = append(front, s)
		}
		if cs <= 0 {
			back = append(back, s)
		}
		if (cs > 0 && ce < 0) || (cs < 0 && ce > 0) {
			point, ok := plane.IntersectLine(Line{Start: s, End: e}, true, true)
			if !ok {
				return PolygonSplit{}, false, fmt.Errorf("%w: edge %v -> %v", ErrIntersectionFailed, s, e)
			}
			front = append(front, point)
			back = append(back, point)
		}
	}

	var result PolygonSplit
	if poly, err := NewPolygon(front); err == nil {
		result.Front = poly
	}
	if poly, err := NewPolygon(back); err == nil {
		result.Back = poly
	}
	return result, true, nil
}

// IsPlanar reports whether every vertex lies within eps of the polygon plane.
func (p *Polygon) IsPlanar(eps float64) bool {
	for _, v := range p.vertices {
		if p.plane.OnPlane(v, eps) != 0 {
			return false
		}
	}
	return true
}

// IsConvex reports whether every corner turns the same way.
func (p *Polygon) IsConvex(eps float64) bool {
	n := len(p.vertices)
	positive, negative := false, false
	for i := 0; i < n; i++ {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		c := p.vertices[(i+2)%n]
		turn := b.Sub(a).Cross(c.Sub(b)).Dot(p.plane.Normal)
		if turn > eps {
			positive = true
		} else if turn < -eps {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// IsValid reports whether the polygon has at least three vertices, is planar
// and convex, and has a non-zero area.
func (p *Polygon) IsValid(eps float64) bool {
	return len(p.vertices) >= 3 && p.IsPlanar(eps) && p.IsConvex(eps) && p.Area() >= AreaEpsilon
}

// Area returns the polygon area.
func (p *Polygon) Area() float64 {
	var sum math.Vec3
	v0 := p.vertices[0]
	for i := 1; i < len(p.vertices)-1; i++ {
		sum = sum.Add(p.vertices[i].Sub(v0).Cross(p.vertices[i+1].Sub(v0)))
	}
	return sum.Length() / 2
}

// Center returns the average of the vertices.
func (p *Polygon) Center() math.Vec3 {
	var sum math.Vec3
	for _, v := range p.vertices {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(p.vertices)))
}

// Bounds returns the polygon's bounding box.
func (p *Polygon) Bounds() math.Box {
	return math.BoxFromPoints(p.vertices...)
}

// Simplify returns a copy without duplicate vertices and without vertices
// lying within eps of the line through their neighbours.
func (p *Polygon) Simplify(eps float64) (*Polygon, error) {
	verts := make([]math.Vec3, 0, len(p.vertices))
	for _, v := range p.vertices {
		if len(verts) > 0 && verts[len(verts)-1].Distance(v) < eps {
			continue
		}
		verts = append(verts, v)
	}
	for len(verts) > 1 && verts[0].Distance(verts[len(verts)-1]) < eps {
		verts = verts[:len(verts)-1]
	}

	for changed := true; changed && len(verts) >= 3; {
		changed = false
		for i := 0; i < len(verts); i++ {
			prev := verts[(i+len(verts)-1)%len(verts)]
			cur := verts[i]
			next := verts[(i+1)%len(verts)]
			span := next.Sub(prev)
			l := span.Length()
			if l == 0 || cur.Sub(prev).Cross(span).Length()/l < eps {
				verts = append(verts[:i], verts[i+1:]...)
				changed = true
				break
			}
		}
	}
	return NewPolygon(verts)
}

// Contains reports whether point lies on the polygon plane (within eps) and
// inside its edges.
func (p *Polygon) Contains(point math.Vec3, eps float64) bool {
	if p.plane.OnPlane(point, eps) != 0 {
		return false
	}
	n := len(p.vertices)
	positive, negative := false, false
	for i := 0; i < n; i++ {
		a := p.vertices[i]
		b := p.vertices[(i+1)%n]
		s := b.Sub(a).Cross(point.Sub(a)).Dot(p.plane.Normal)
		tol := eps * b.Sub(a).Length()
		if s > tol {
			positive = true
		} else if s < -tol {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// Flip returns the polygon with reversed winding.
func (p *Polygon) Flip() *Polygon {
	n := len(p.vertices)
	verts := make([]math.Vec3, n)
	for i, v := range p.vertices {
		verts[n-1-i] = v
	}
	return &Polygon{vertices: verts, plane: p.plane.Flip()}
}

// Transform applies fn to every vertex and rebuilds the plane.
func (p *Polygon) Transform(fn func(math.Vec3) math.Vec3) (*Polygon, error) {
	verts := make([]math.Vec3, len(p.vertices))
	for i, v := range p.vertices {
		verts[i] = fn(v)
	}
	return NewPolygon(verts)
}

// NewBasePolygon returns a square of half-size size lying on plane, centred on
// the projection of center, wound so that its normal matches the plane.
func NewBasePolygon(plane Plane, center math.Vec3, size float64) *Polygon {
	n := plane.Normal
	up := math.Vec3{Z: 1}
	if gomath.Abs(n.Z) > 0.9 {
		up = math.Vec3{X: 1}
	}
	u := up.Cross(n).Normalize().Scale(size)
	v := n.Cross(u).Normalize().Scale(size)
	c := plane.Project(center)

	verts := []math.Vec3{
		c.Sub(u).Add(v),
		c.Add(u).Add(v),
		c.Add(u).Sub(v),
		c.Sub(u).Sub(v),
	}
	poly := &Polygon{vertices: verts}
	computed, _ := NewPlaneFromPoints(verts[0], verts[1], verts[2])
	if computed.Normal.Dot(n) < 0 {
		poly = poly.Flip()
	}
	poly.plane = plane
	return poly
}
