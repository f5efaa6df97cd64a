package mapfile

import (
	"github.com/Faultbox/midgard-editor/internal/engine/lighting"
	"github.com/Faultbox/midgard-editor/pkg/brush"
)

// FromSolids captures solids and lights as a document. Faces are stored by
// their vertices with the full texture projection. Lights other than point
// and directional lights are skipped.
func FromSolids(solids []*brush.Solid, lights []lighting.Light, ambient *[3]float32) *Document {
	doc := &Document{Ambient: ambient, Solids: make([]SolidEntry, 0, len(solids))}
	for _, s := range solids {
		entry := SolidEntry{ID: s.ID, Faces: make([]FaceEntry, 0, len(s.Faces))}
		for _, f := range s.Faces {
			fs := FaceEntry{
				ID:         f.ID,
				Vertices:   make([][3]float64, len(f.Vertices)),
				Texture:    textureEntry(f.Texture),
				TexelSize:  f.TexelSize,
				NoLightmap: f.DisableInLightmap,
			}
			for i, v := range f.Vertices {
				fs.Vertices[i] = v.Position.Array()
			}
			entry.Faces = append(entry.Faces, fs)
		}
		doc.Solids = append(doc.Solids, entry)
	}

	for _, l := range lights {
		switch l := l.(type) {
		case lighting.PointLight:
			pos := l.Position.Array()
			intensity := l.Intensity
			doc.Lights = append(doc.Lights, LightEntry{
				Type:      LightPoint,
				Position:  &pos,
				Color:     l.Color,
				Intensity: &intensity,
				Range:     l.Range,
			})
		case lighting.DirectionalLight:
			dir := l.Direction.Array()
			intensity := l.Intensity
			doc.Lights = append(doc.Lights, LightEntry{
				Type:      LightDirectional,
				Direction: &dir,
				Color:     l.Color,
				Intensity: &intensity,
			})
		}
	}
	return doc
}

func textureEntry(t brush.TextureRef) TextureEntry {
	if t.IsEmpty() {
		return TextureEntry{}
	}
	u, v := t.UAxis.Array(), t.VAxis.Array()
	return TextureEntry{
		Name:     t.Name,
		UAxis:    &u,
		VAxis:    &v,
		XShift:   t.XShift,
		YShift:   t.YShift,
		XScale:   t.XScale,
		YScale:   t.YScale,
		Rotation: t.Rotation,
	}
}
