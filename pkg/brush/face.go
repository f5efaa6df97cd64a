package brush

import (
	"fmt"
	"image/color"

	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

// Vertex is a face corner with its texture (UV0) and lightmap (UV1)
// coordinates.
type Vertex struct {
	Position math.Vec3
	UV0      math.Vec2
	UV1      math.Vec2
}

// Face is one planar side of a solid. Vertex order follows the polygon
// winding; Plane is derived from the vertices.
type Face struct {
	ID                int64
	Plane             geom.Plane
	Vertices          []Vertex
	Texture           TextureRef
	Color             color.RGBA
	DisableInLightmap bool
	TexelSize         float64 // world units per lightmap texel, 0 = baker default

	Parent *Solid
}

// NewFace wraps a polygon in a face.
func NewFace(id int64, poly *geom.Polygon, texture TextureRef) *Face {
	verts := poly.Vertices()
	f := &Face{
		ID:       id,
		Plane:    poly.Plane(),
		Vertices: make([]Vertex, len(verts)),
		Texture:  texture,
	}
	for i, v := range verts {
		f.Vertices[i].Position = v
	}
	return f
}

// Positions returns the vertex positions in winding order.
func (f *Face) Positions() []math.Vec3 {
	out := make([]math.Vec3, len(f.Vertices))
	for i, v := range f.Vertices {
		out[i] = v.Position
	}
	return out
}

// Polygon returns the face outline as a polygon.
func (f *Face) Polygon() (*geom.Polygon, error) {
	poly, err := geom.NewPolygon(f.Positions())
	if err != nil {
		return nil, fmt.Errorf("face %d: %w", f.ID, err)
	}
	return poly, nil
}

// UpdatePlane recomputes the plane from the vertices.
func (f *Face) UpdatePlane() error {
	poly, err := f.Polygon()
	if err != nil {
		return err
	}
	f.Plane = poly.Plane()
	return nil
}

// CalculateTextureCoordinates fills UV0 for a texture of the given size.
func (f *Face) CalculateTextureCoordinates(width, height float64) {
	for i := range f.Vertices {
		f.Vertices[i].UV0 = f.Texture.UV(f.Vertices[i].Position, width, height)
	}
}

// Bounds returns the bounding box of the vertices.
func (f *Face) Bounds() math.Box {
	return math.BoxFromPoints(f.Positions()...)
}

// Clone returns a detached copy with a new ID.
func (f *Face) Clone(id int64) *Face {
	c := *f
	c.ID = id
	c.Parent = nil
	c.Vertices = make([]Vertex, len(f.Vertices))
	copy(c.Vertices, f.Vertices)
	return &c
}

// derive builds a new face on poly that inherits f's surface properties.
func (f *Face) derive(id int64, poly *geom.Polygon) *Face {
	n := NewFace(id, poly, f.Texture)
	n.Color = f.Color
	n.DisableInLightmap = f.DisableInLightmap
	n.TexelSize = f.TexelSize
	return n
}
