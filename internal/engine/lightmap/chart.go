package lightmap

import (
	gomath "math"

	"github.com/Faultbox/midgard-editor/pkg/brush"
	"github.com/Faultbox/midgard-editor/pkg/formats"
	"github.com/Faultbox/midgard-editor/pkg/math"
	"github.com/Faultbox/midgard-editor/pkg/pack"
)

// minExtent rejects faces that collapse to a line in their projection.
const minExtent = 1e-9

// chart is one face's rectangle in the atlas. The face is projected onto
// the axis-aligned basis of its plane's dominant axis.
type chart struct {
	face  *brush.Face
	solid *brush.Solid

	axis   int
	u, v   math.Vec3
	min    math.Vec2 // projected minimum
	extent math.Vec2 // projected size in world units
	size   math.Vec2 // texels before packing

	rect pack.Rect // packed position, set after packing
}

// bakeable reports whether a face receives a lightmap.
func bakeable(f *brush.Face) bool {
	return !f.Texture.IsEmpty() && !f.DisableInLightmap && len(f.Vertices) >= 3
}

// buildCharts estimates the UV bounds of every bakeable face.
func buildCharts(solids []*brush.Solid, s Settings) []*chart {
	var charts []*chart
	for _, solid := range solids {
		for _, f := range solid.Faces {
			if !bakeable(f) {
				continue
			}
			if c := newChart(solid, f, s); c != nil {
				charts = append(charts, c)
			}
		}
	}
	return charts
}

func newChart(solid *brush.Solid, f *brush.Face, s Settings) *chart {
	u, v := f.Plane.ClosestAxisBasis()
	lo, hi := math.Splat(gomath.Inf(1)), math.Splat(gomath.Inf(-1))
	for _, vert := range f.Vertices {
		p := math.Vec2{X: vert.Position.Dot(u), Y: vert.Position.Dot(v)}
		lo, hi = lo.Min(p), hi.Max(p)
	}
	extent := hi.Sub(lo)
	if extent.X < minExtent || extent.Y < minExtent {
		return nil
	}

	texel := f.TexelSize
	if texel <= 0 {
		texel = s.TexelSize
	}
	size := chartSize(extent.Scale(1/texel), float64(s.Width), float64(s.Height))

	return &chart{
		face:   f,
		solid:  solid,
		axis:   f.Plane.Normal.ClosestAxis(),
		u:      u,
		v:      v,
		min:    lo,
		extent: extent,
		size:   size,
	}
}

// chartSize clamps a chart into [MinChartSize, atlas] with one factor for
// both axes. When the two bounds conflict the atlas wins, and the short axis
// keeps at least one texel.
func chartSize(texels math.Vec2, maxW, maxH float64) math.Vec2 {
	scale := max(1, MinChartSize/texels.X, MinChartSize/texels.Y)
	scale = min(scale, maxW/texels.X, maxH/texels.Y)
	return texels.Scale(scale).Ceil().Max(math.Splat(1)).Min(math.Vec2{X: maxW, Y: maxH})
}

// texels returns the half-open texel range covered by the packed rect.
// Rounding both edges keeps adjacent charts disjoint.
func (c *chart) texels() (x0, y0, x1, y1 int) {
	return int(gomath.Round(c.rect.X)), int(gomath.Round(c.rect.Y)),
		int(gomath.Round(c.rect.Right())), int(gomath.Round(c.rect.Bottom()))
}

func (c *chart) region() formats.LightmapRegion {
	x0, y0, x1, y1 := c.texels()
	return formats.LightmapRegion{
		FaceID:  c.face.ID,
		SolidID: c.solid.ID,
		X:       x0,
		Y:       y0,
		Width:   x1 - x0,
		Height:  y1 - y0,
	}
}

// worldPosition maps normalized chart coordinates back onto the face plane.
func (c *chart) worldPosition(fu, fv float64) math.Vec3 {
	pu := c.min.X + fu*c.extent.X
	pv := c.min.Y + fv*c.extent.Y
	p := c.u.Scale(pu).Add(c.v.Scale(pv))

	plane := c.face.Plane
	along := (plane.Distance - plane.Normal.Dot(p)) / plane.Normal.Component(c.axis)
	switch c.axis {
	case 0:
		p.X = along
	case 1:
		p.Y = along
	default:
		p.Z = along
	}
	return p
}

// assignUV1 writes atlas-normalized lightmap coordinates into the face.
func (c *chart) assignUV1(atlasW, atlasH int) {
	for i := range c.face.Vertices {
		pos := c.face.Vertices[i].Position
		f := math.Vec2{X: pos.Dot(c.u), Y: pos.Dot(c.v)}.Sub(c.min).Div(c.extent)
		texel := math.Vec2{X: c.rect.X, Y: c.rect.Y}.Add(f.Mul(math.Vec2{X: c.rect.Width, Y: c.rect.Height}))
		c.face.Vertices[i].UV1 = texel.Div(math.Vec2{X: float64(atlasW), Y: float64(atlasH)})
	}
}
