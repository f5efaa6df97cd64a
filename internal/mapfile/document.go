// Package mapfile reads and writes editor map documents: brush solids,
// lights and the ambient color, stored as YAML.
package mapfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument wraps every document validation failure.
var ErrInvalidDocument = errors.New("invalid map document")

// Light types.
const (
	LightPoint       = "point"
	LightDirectional = "directional"
	LightSun         = "sun"
)

// Document is a map as stored on disk.
type Document struct {
	Ambient *[3]float32  `yaml:"ambient,flow,omitempty"`
	Solids  []SolidEntry `yaml:"solids"`
	Lights  []LightEntry `yaml:"lights,omitempty"`
}

// SolidEntry describes a solid either by its faces or by its bounding
// planes.
type SolidEntry struct {
	ID     int64        `yaml:"id,omitempty"`
	Faces  []FaceEntry  `yaml:"faces,omitempty"`
	Planes []PlaneEntry `yaml:"planes,omitempty"`
}

// FaceEntry is a face with explicit vertices in winding order.
type FaceEntry struct {
	ID         int64        `yaml:"id,omitempty"`
	Vertices   [][3]float64 `yaml:"vertices,flow"`
	Texture    TextureEntry `yaml:"texture,omitempty"`
	TexelSize  float64      `yaml:"texel_size,omitempty"`
	NoLightmap bool         `yaml:"no_lightmap,omitempty"`
}

// PlaneEntry is one bounding plane, given by three points or by the equation
// normal·P = distance. The normal need not be unit length. The solid lies
// behind the plane.
type PlaneEntry struct {
	Points   [][3]float64 `yaml:"points,flow,omitempty"`
	Normal   *[3]float64  `yaml:"normal,flow,omitempty"`
	Distance float64      `yaml:"distance,omitempty"`
	Texture  TextureEntry `yaml:"texture,omitempty"`
}

// TextureEntry is a texture projection. Missing axes are aligned to the
// face plane.
type TextureEntry struct {
	Name     string      `yaml:"name,omitempty"`
	UAxis    *[3]float64 `yaml:"u_axis,flow,omitempty"`
	VAxis    *[3]float64 `yaml:"v_axis,flow,omitempty"`
	XShift   float64     `yaml:"x_shift,omitempty"`
	YShift   float64     `yaml:"y_shift,omitempty"`
	XScale   float64     `yaml:"x_scale,omitempty"`
	YScale   float64     `yaml:"y_scale,omitempty"`
	Rotation float64     `yaml:"rotation,omitempty"`
}

// LightEntry is a light source. Point lights need a position, directional
// lights a direction, and suns a longitude and latitude in degrees.
type LightEntry struct {
	Type      string      `yaml:"type"`
	Position  *[3]float64 `yaml:"position,flow,omitempty"`
	Direction *[3]float64 `yaml:"direction,flow,omitempty"`
	Color     [3]float32  `yaml:"color,flow"`
	Intensity *float32    `yaml:"intensity,omitempty"` // nil = 1
	Range     float64     `yaml:"range,omitempty"`
	Longitude float64     `yaml:"longitude,omitempty"`
	Latitude  float64     `yaml:"latitude,omitempty"`
}

// Load reads and validates a document file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a document.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding map: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Write encodes the document as YAML.
func (d *Document) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding map: %w", err)
	}
	return enc.Close()
}

// Save writes the document to path, creating parent directories.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate reports every structural problem in the document.
func (d *Document) Validate() error {
	var err error
	fail := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidDocument}, args...)...))
	}

	if d.Ambient != nil {
		for i, c := range d.Ambient {
			if c < 0 {
				fail("ambient[%d] is negative", i)
			}
		}
	}

	solidIDs := make(map[int64]bool)
	faceIDs := make(map[int64]bool)
	for i, s := range d.Solids {
		if s.ID != 0 {
			if solidIDs[s.ID] {
				fail("solid %d: duplicate id %d", i, s.ID)
			}
			solidIDs[s.ID] = true
		}
		switch {
		case len(s.Faces) > 0 && len(s.Planes) > 0:
			fail("solid %d: both faces and planes given", i)
		case len(s.Faces) == 0 && len(s.Planes) == 0:
			fail("solid %d: no faces or planes", i)
		}
		for j, f := range s.Faces {
			if len(f.Vertices) < 3 {
				fail("solid %d face %d: %d vertices", i, j, len(f.Vertices))
			}
			if f.TexelSize < 0 {
				fail("solid %d face %d: texel size %g", i, j, f.TexelSize)
			}
			if f.ID != 0 {
				if faceIDs[f.ID] {
					fail("solid %d face %d: duplicate id %d", i, j, f.ID)
				}
				faceIDs[f.ID] = true
			}
		}
		for j, p := range s.Planes {
			switch {
			case p.Normal != nil && len(p.Points) > 0:
				fail("solid %d plane %d: both points and normal given", i, j)
			case p.Normal == nil && len(p.Points) != 3:
				fail("solid %d plane %d: need 3 points, got %d", i, j, len(p.Points))
			}
		}
	}

	for i, l := range d.Lights {
		switch l.Type {
		case LightPoint:
			if l.Position == nil {
				fail("light %d: point light without position", i)
			}
			if l.Range < 0 {
				fail("light %d: range %g", i, l.Range)
			}
		case LightDirectional:
			if l.Direction == nil {
				fail("light %d: directional light without direction", i)
			}
		case LightSun:
		default:
			fail("light %d: unknown type %q", i, l.Type)
		}
		for c, v := range l.Color {
			if v < 0 {
				fail("light %d: color[%d] is negative", i, c)
			}
		}
	}
	return err
}
