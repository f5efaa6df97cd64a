package brush

import (
	"errors"
	"fmt"
	"image/color"
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

// MinFaces is the smallest face count of a closed convex volume.
const MinFaces = 4

// ErrInvalidSolid reports a face set that does not bound a convex volume.
var ErrInvalidSolid = errors.New("invalid solid")

// Solid is a convex brush bounded by its faces' planes.
type Solid struct {
	ID       int64
	ParentID int64 // group or world; not owned
	Faces    []*Face
	Color    color.RGBA
	Selected bool

	bounds math.Box
}

// NewSolid assembles a solid from faces and takes ownership of them.
func NewSolid(id int64, faces []*Face) *Solid {
	s := &Solid{ID: id, Faces: faces}
	for _, f := range faces {
		f.Parent = s
	}
	s.UpdateBounds()
	return s
}

// NewSolidFromPolygons builds a solid with one face per polygon, each face
// taking a fresh ID and the given texture.
func NewSolidFromPolygons(ids *IDGenerator, polys []*geom.Polygon, texture TextureRef) (*Solid, error) {
	if len(polys) < MinFaces {
		return nil, fmt.Errorf("%w: %d faces", ErrInvalidSolid, len(polys))
	}
	faces := make([]*Face, 0, len(polys))
	for _, p := range polys {
		faces = append(faces, NewFace(ids.NextFaceID(), p, texture))
	}
	return NewSolid(ids.NextObjectID(), faces), nil
}

// Bounds returns the cached bounding box.
func (s *Solid) Bounds() math.Box {
	return s.bounds
}

// UpdateBounds recomputes the bounding box from the faces.
func (s *Solid) UpdateBounds() {
	b := math.EmptyBox()
	for _, f := range s.Faces {
		b = b.Union(f.Bounds())
	}
	s.bounds = b
}

// Volume returns the enclosed volume.
func (s *Solid) Volume() float64 {
	var sum float64
	for _, f := range s.Faces {
		if len(f.Vertices) < 3 {
			continue
		}
		a := f.Vertices[0].Position
		for i := 1; i < len(f.Vertices)-1; i++ {
			b := f.Vertices[i].Position
			c := f.Vertices[i+1].Position
			sum += a.Dot(b.Cross(c))
		}
	}
	return gomath.Abs(sum) / 6
}

// IsValid reports whether the solid has enough valid faces and every vertex
// sits behind or on every face plane.
func (s *Solid) IsValid(eps float64) bool {
	if len(s.Faces) < MinFaces {
		return false
	}
	for _, f := range s.Faces {
		poly, err := f.Polygon()
		if err != nil || !poly.IsValid(eps) {
			return false
		}
	}
	for _, f := range s.Faces {
		for _, other := range s.Faces {
			for _, v := range other.Vertices {
				if f.Plane.OnPlane(v.Position, eps) > 0 {
					return false
				}
			}
		}
	}
	return true
}

// FaceByID returns the face with the given ID, or nil.
func (s *Solid) FaceByID(id int64) *Face {
	for _, f := range s.Faces {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Clone returns a deep copy with fresh object and face IDs.
func (s *Solid) Clone(ids *IDGenerator) *Solid {
	faces := make([]*Face, len(s.Faces))
	for i, f := range s.Faces {
		faces[i] = f.Clone(ids.NextFaceID())
	}
	c := NewSolid(ids.NextObjectID(), faces)
	c.ParentID = s.ParentID
	c.Color = s.Color
	c.Selected = s.Selected
	return c
}

// Transform applies an affine matrix to every vertex. Mirroring transforms
// reverse the windings so normals keep pointing outward.
func (s *Solid) Transform(m mgl64.Mat4) error {
	mirror := m.Det() < 0
	for _, f := range s.Faces {
		for i := range f.Vertices {
			p := f.Vertices[i].Position
			r := m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
			f.Vertices[i].Position = math.Vec3{X: r[0], Y: r[1], Z: r[2]}
		}
		if mirror {
			for i, j := 0, len(f.Vertices)-1; i < j; i, j = i+1, j-1 {
				f.Vertices[i], f.Vertices[j] = f.Vertices[j], f.Vertices[i]
			}
		}
		if err := f.UpdatePlane(); err != nil {
			return fmt.Errorf("transforming solid %d: %w", s.ID, err)
		}
	}
	s.UpdateBounds()
	return nil
}

// MaxIDs returns the largest solid and face IDs in the slice, for
// IDGenerator.Reset after an import.
func MaxIDs(solids []*Solid) (maxObject, maxFace int64) {
	for _, s := range solids {
		maxObject = max(maxObject, s.ID)
		for _, f := range s.Faces {
			maxFace = max(maxFace, f.ID)
		}
	}
	return maxObject, maxFace
}
