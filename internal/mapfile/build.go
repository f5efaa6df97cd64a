package mapfile

import (
	"fmt"

	"github.com/Faultbox/midgard-editor/internal/engine/lighting"
	"github.com/Faultbox/midgard-editor/pkg/brush"
	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

// Build turns the document into solids and lights. Explicit IDs are kept and
// ids is advanced past them; missing IDs are drawn from ids.
func (d *Document) Build(ids *brush.IDGenerator, eps float64) ([]*brush.Solid, []lighting.Light, error) {
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}
	ids.Observe(d.maxIDs())

	solids := make([]*brush.Solid, 0, len(d.Solids))
	for i, entry := range d.Solids {
		var (
			s   *brush.Solid
			err error
		)
		if len(entry.Planes) > 0 {
			s, err = buildFromPlanes(entry, ids, eps)
		} else {
			s, err = buildFromFaces(entry, ids, eps)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("solid %d: %w", i, err)
		}
		solids = append(solids, s)
	}

	lights := make([]lighting.Light, 0, len(d.Lights))
	for _, entry := range d.Lights {
		lights = append(lights, entry.light())
	}
	return solids, lights, nil
}

// AmbientOr returns the document's ambient color, or fallback when unset.
func (d *Document) AmbientOr(fallback [3]float32) [3]float32 {
	if d.Ambient == nil {
		return fallback
	}
	return *d.Ambient
}

func (d *Document) maxIDs() (maxObject, maxFace int64) {
	for _, s := range d.Solids {
		maxObject = max(maxObject, s.ID)
		for _, f := range s.Faces {
			maxFace = max(maxFace, f.ID)
		}
	}
	return maxObject, maxFace
}

func buildFromFaces(entry SolidEntry, ids *brush.IDGenerator, eps float64) (*brush.Solid, error) {
	faces := make([]*brush.Face, 0, len(entry.Faces))
	for j, fs := range entry.Faces {
		verts := make([]math.Vec3, len(fs.Vertices))
		for k, v := range fs.Vertices {
			verts[k] = math.Vec3FromArray(v)
		}
		poly, err := geom.NewPolygon(verts)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", j, err)
		}

		id := fs.ID
		if id == 0 {
			id = ids.NextFaceID()
		}
		f := brush.NewFace(id, poly, fs.Texture.ref(poly.Plane()))
		f.TexelSize = fs.TexelSize
		f.DisableInLightmap = fs.NoLightmap
		faces = append(faces, f)
	}

	id := entry.ID
	if id == 0 {
		id = ids.NextObjectID()
	}
	s := brush.NewSolid(id, faces)
	if !s.IsValid(eps) {
		return nil, fmt.Errorf("%w: faces do not bound a convex volume", brush.ErrInvalidSolid)
	}
	return s, nil
}

func buildFromPlanes(entry SolidEntry, ids *brush.IDGenerator, eps float64) (*brush.Solid, error) {
	defs := make([]brush.PlaneDef, 0, len(entry.Planes))
	for j, ps := range entry.Planes {
		plane, err := ps.plane()
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", j, err)
		}
		defs = append(defs, brush.PlaneDef{Plane: plane, Texture: ps.Texture.ref(plane)})
	}
	s, err := brush.NewSolidFromPlanes(ids, defs, eps)
	if err != nil {
		return nil, err
	}
	if entry.ID != 0 {
		s.ID = entry.ID
	}
	return s, nil
}

func (p PlaneEntry) plane() (geom.Plane, error) {
	if p.Normal != nil {
		return geom.NewPlane(math.Vec3FromArray(*p.Normal), p.Distance)
	}
	return geom.NewPlaneFromPoints(
		math.Vec3FromArray(p.Points[0]),
		math.Vec3FromArray(p.Points[1]),
		math.Vec3FromArray(p.Points[2]),
	)
}

func (t TextureEntry) ref(plane geom.Plane) brush.TextureRef {
	ref := brush.TextureRef{
		Name:   t.Name,
		XShift: t.XShift,
		YShift: t.YShift,
		XScale: t.XScale,
		YScale: t.YScale,
	}
	if t.UAxis == nil || t.VAxis == nil {
		ref = ref.AlignToPlane(plane)
		if t.Rotation != 0 {
			ref = ref.SetRotation(plane.Normal, t.Rotation)
		}
		return ref
	}
	ref.UAxis = math.Vec3FromArray(*t.UAxis)
	ref.VAxis = math.Vec3FromArray(*t.VAxis)
	ref.Rotation = t.Rotation
	return ref
}

func (l LightEntry) light() lighting.Light {
	intensity := float32(1)
	if l.Intensity != nil {
		intensity = *l.Intensity
	}
	switch l.Type {
	case LightPoint:
		return lighting.NewPointLight(math.Vec3FromArray(*l.Position), l.Color, l.Range, intensity)
	case LightDirectional:
		return lighting.DirectionalLight{
			Direction: math.Vec3FromArray(*l.Direction).Normalize(),
			Color:     l.Color,
			Intensity: intensity,
		}
	default:
		return lighting.NewSun(l.Longitude, l.Latitude, l.Color, intensity)
	}
}
