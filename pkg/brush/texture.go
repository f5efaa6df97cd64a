package brush

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

// TextureRef describes how a texture is projected onto a face. Name is an
// opaque asset path; the core never reads pixel data.
type TextureRef struct {
	Name     string
	UAxis    math.Vec3
	VAxis    math.Vec3
	XShift   float64
	YShift   float64
	XScale   float64
	YScale   float64
	Rotation float64 // degrees
}

// IsEmpty reports whether no texture is assigned.
func (t TextureRef) IsEmpty() bool {
	return t.Name == ""
}

// AlignToPlane returns the texture with world-aligned axes for the plane's
// closest axis and the rotation cleared. Missing scales become 1.
func (t TextureRef) AlignToPlane(plane geom.Plane) TextureRef {
	t.UAxis, t.VAxis = plane.ClosestAxisBasis()
	t.Rotation = 0
	if t.XScale == 0 {
		t.XScale = 1
	}
	if t.YScale == 0 {
		t.YScale = 1
	}
	return t
}

// SetRotation rotates the texture axes about normal so the total rotation
// becomes degrees.
func (t TextureRef) SetRotation(normal math.Vec3, degrees float64) TextureRef {
	delta := mgl64.DegToRad(degrees - t.Rotation)
	rot := mgl64.HomogRotate3D(delta, mgl64.Vec3{normal.X, normal.Y, normal.Z}.Normalize())
	t.UAxis = rotateAxis(rot, t.UAxis)
	t.VAxis = rotateAxis(rot, t.VAxis)
	t.Rotation = degrees
	return t
}

func rotateAxis(m mgl64.Mat4, v math.Vec3) math.Vec3 {
	r := m.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 0})
	return math.Vec3{X: r[0], Y: r[1], Z: r[2]}
}

// UV returns the normalized texture coordinate of a world position for a
// texture of the given pixel size.
func (t TextureRef) UV(position math.Vec3, width, height float64) math.Vec2 {
	xs, ys := nonZero(t.XScale), nonZero(t.YScale)
	w, h := nonZero(width), nonZero(height)
	return math.Vec2{
		X: (position.Dot(t.UAxis)/xs + t.XShift) / w,
		Y: (position.Dot(t.VAxis)/ys + t.YShift) / h,
	}
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
