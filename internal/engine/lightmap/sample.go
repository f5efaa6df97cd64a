package lightmap

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-editor/internal/engine/lighting"
	"github.com/Faultbox/midgard-editor/internal/engine/picking"
	"github.com/Faultbox/midgard-editor/pkg/formats"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

// Tracer casts shadow rays against the scene.
type Tracer interface {
	Trace(origin, direction math.Vec3, maxDistance float64) picking.TraceResult
}

// sampler shades texels. It only writes inside the chart it is given, so
// charts can be sampled concurrently into the same lightmap.
type sampler struct {
	settings Settings
	tracer   Tracer
	lights   []lighting.Light
	lm       *formats.Lightmap
}

func (s *sampler) sampleChart(c *chart) {
	x0, y0, x1, y1 := c.texels()
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, s.lm.Width), min(y1, s.lm.Height)

	normal := c.face.Plane.Normal
	offset := normal.Scale(s.settings.SurfaceOffset)
	for y := y0; y < y1; y++ {
		fv := clamp01((float64(y) + 0.5 - c.rect.Y) / c.rect.Height)
		for x := x0; x < x1; x++ {
			fu := clamp01((float64(x) + 0.5 - c.rect.X) / c.rect.Width)
			origin := c.worldPosition(fu, fv).Add(offset)

			color, dominant, visible := s.shade(origin, normal)
			idx := y*s.lm.Width + x
			s.lm.Data[idx*3] = color[0]
			s.lm.Data[idx*3+1] = color[1]
			s.lm.Data[idx*3+2] = color[2]
			if s.lm.Directional != nil {
				s.lm.Directional[idx*3] = float32(dominant.X*0.5 + 0.5)
				s.lm.Directional[idx*3+1] = float32(dominant.Y*0.5 + 0.5)
				s.lm.Directional[idx*3+2] = float32(dominant.Z*0.5 + 0.5)
			}
			if s.lm.ShadowMask != nil {
				s.lm.ShadowMask[idx] = visible
			}
		}
	}
}

// shade returns the direct lighting at origin, the direction toward the
// strongest visible light and the fraction of reaching lights that were not
// shadowed.
func (s *sampler) shade(origin, normal math.Vec3) (color [3]float32, dominant math.Vec3, visible float32) {
	color = s.settings.Ambient
	var strongest float32
	var reaching, lit int

	for _, l := range s.lights {
		c, ok := l.Contribution(origin)
		if !ok {
			continue
		}
		diffuse := math32.Max(0, float32(normal.Dot(c.ToLight)))
		if diffuse <= 0 {
			continue
		}
		reaching++

		dist := c.Distance
		if gomath.IsInf(dist, 1) {
			dist = s.settings.DirectionalDistance
		}
		if s.occluded(origin, c.ToLight, dist) {
			continue
		}
		lit++

		r, g, b := c.Color[0]*diffuse, c.Color[1]*diffuse, c.Color[2]*diffuse
		color[0] += r
		color[1] += g
		color[2] += b
		if intensity := math32.Max(r, math32.Max(g, b)); intensity > strongest {
			strongest = intensity
			dominant = c.ToLight
		}
	}

	visible = 1
	if reaching > 0 {
		visible = float32(lit) / float32(reaching)
	}
	return color, dominant, visible
}

// occluded casts from the light toward origin and reports a hit in front of
// the sample.
func (s *sampler) occluded(origin, toLight math.Vec3, dist float64) bool {
	if s.tracer == nil {
		return false
	}
	from := origin.Add(toLight.Scale(dist))
	hit := s.tracer.Trace(from, toLight.Neg(), dist)
	return hit.Hit && hit.Distance < dist-s.settings.ShadowBias
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
