// Package formats reads and writes the files produced by the lightmap baker:
// the binary LMAP container and 16-bit TIFF previews.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// LMAP format errors.
var (
	ErrInvalidLightmapMagic       = errors.New("invalid lightmap magic: expected 'LMAP'")
	ErrUnsupportedLightmapVersion = errors.New("unsupported lightmap version")
	ErrTruncatedLightmapData      = errors.New("truncated lightmap data")
	ErrInvalidLightmapSize        = errors.New("invalid lightmap dimensions")
)

// LightmapVersion is the only version written.
var LightmapVersion = Version{Major: 1, Minor: 0}

// MaxLightmapSize bounds each dimension accepted by the parser.
const MaxLightmapSize = 16384

// Header flags.
const (
	LightmapHasDirectional uint32 = 1 << iota
	LightmapHasShadowMask
)

// Version is a major.minor file version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// LightmapRegion is the atlas rectangle owned by one face.
type LightmapRegion struct {
	FaceID  int64
	SolidID int64
	X, Y    int
	Width   int
	Height  int
}

// Lightmap is a baked atlas in linear float RGB, row-major, top row first.
type Lightmap struct {
	Width  int
	Height int
	Data   []float32 // RGB, Width*Height*3

	Directional []float32 // optional dominant light direction, encoded dir*0.5+0.5
	ShadowMask  []float32 // optional fraction of visible lights, Width*Height

	Regions []LightmapRegion
}

// NewLightmap allocates a black lightmap with the requested optional buffers.
func NewLightmap(width, height int, directional, shadowMask bool) *Lightmap {
	lm := &Lightmap{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height*3),
	}
	if directional {
		lm.Directional = make([]float32, width*height*3)
	}
	if shadowMask {
		lm.ShadowMask = make([]float32, width*height)
	}
	return lm
}

// At returns the color of the texel at (x, y).
func (l *Lightmap) At(x, y int) [3]float32 {
	i := (y*l.Width + x) * 3
	return [3]float32{l.Data[i], l.Data[i+1], l.Data[i+2]}
}

// Set stores the color of the texel at (x, y).
func (l *Lightmap) Set(x, y int, c [3]float32) {
	i := (y*l.Width + x) * 3
	l.Data[i], l.Data[i+1], l.Data[i+2] = c[0], c[1], c[2]
}

// RegionForFace returns the region baked for a face.
func (l *Lightmap) RegionForFace(faceID int64) (LightmapRegion, bool) {
	for _, r := range l.Regions {
		if r.FaceID == faceID {
			return r, true
		}
	}
	return LightmapRegion{}, false
}

func (l *Lightmap) flags() uint32 {
	var f uint32
	if l.Directional != nil {
		f |= LightmapHasDirectional
	}
	if l.ShadowMask != nil {
		f |= LightmapHasShadowMask
	}
	return f
}

// WriteLightmap encodes lm in the LMAP format.
func WriteLightmap(w io.Writer, lm *Lightmap) error {
	texels := lm.Width * lm.Height
	if lm.Width <= 0 || lm.Height <= 0 || len(lm.Data) != texels*3 {
		return fmt.Errorf("%w: %dx%d with %d values", ErrInvalidLightmapSize, lm.Width, lm.Height, len(lm.Data))
	}

	buf := new(bytes.Buffer)
	buf.WriteString("LMAP")
	buf.WriteByte(LightmapVersion.Major)
	buf.WriteByte(LightmapVersion.Minor)

	header := []uint32{uint32(lm.Width), uint32(lm.Height), lm.flags(), uint32(len(lm.Regions))}
	for _, v := range header {
		binary.Write(buf, binary.LittleEndian, v)
	}
	binary.Write(buf, binary.LittleEndian, lm.Data)
	if lm.Directional != nil {
		if len(lm.Directional) != texels*3 {
			return fmt.Errorf("%w: directional buffer has %d values", ErrInvalidLightmapSize, len(lm.Directional))
		}
		binary.Write(buf, binary.LittleEndian, lm.Directional)
	}
	if lm.ShadowMask != nil {
		if len(lm.ShadowMask) != texels {
			return fmt.Errorf("%w: shadow mask has %d values", ErrInvalidLightmapSize, len(lm.ShadowMask))
		}
		binary.Write(buf, binary.LittleEndian, lm.ShadowMask)
	}
	for _, r := range lm.Regions {
		binary.Write(buf, binary.LittleEndian, r.FaceID)
		binary.Write(buf, binary.LittleEndian, r.SolidID)
		for _, v := range []int32{int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height)} {
			binary.Write(buf, binary.LittleEndian, v)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// ParseLightmap parses an LMAP file from raw bytes.
func ParseLightmap(data []byte) (*Lightmap, error) {
	if len(data) < 22 {
		return nil, ErrTruncatedLightmapData
	}
	if string(data[0:4]) != "LMAP" {
		return nil, ErrInvalidLightmapMagic
	}
	version := Version{Major: data[4], Minor: data[5]}
	if version.Major != LightmapVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLightmapVersion, version)
	}

	r := bytes.NewReader(data[6:])
	var width, height, flags, regionCount uint32
	for _, f := range []struct {
		name string
		dst  *uint32
	}{{"width", &width}, {"height", &height}, {"flags", &flags}, {"region count", &regionCount}} {
		if err := binary.Read(r, binary.LittleEndian, f.dst); err != nil {
			return nil, fmt.Errorf("%w: reading %s", ErrTruncatedLightmapData, f.name)
		}
	}
	if width == 0 || height == 0 || width > MaxLightmapSize || height > MaxLightmapSize {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidLightmapSize, width, height)
	}

	directional := flags&LightmapHasDirectional != 0
	shadowMask := flags&LightmapHasShadowMask != 0
	// 3 float32 per texel for color and direction, 1 for the mask
	texels := int64(width) * int64(height)
	need := texels * 12
	if directional {
		need += texels * 12
	}
	if shadowMask {
		need += texels * 4
	}
	if need > int64(r.Len()) {
		return nil, fmt.Errorf("%w: %dx%d needs %d texel bytes, have %d", ErrTruncatedLightmapData, width, height, need, r.Len())
	}

	lm := NewLightmap(int(width), int(height), directional, shadowMask)
	if err := binary.Read(r, binary.LittleEndian, lm.Data); err != nil {
		return nil, fmt.Errorf("%w: reading color data", ErrTruncatedLightmapData)
	}
	if lm.Directional != nil {
		if err := binary.Read(r, binary.LittleEndian, lm.Directional); err != nil {
			return nil, fmt.Errorf("%w: reading directional data", ErrTruncatedLightmapData)
		}
	}
	if lm.ShadowMask != nil {
		if err := binary.Read(r, binary.LittleEndian, lm.ShadowMask); err != nil {
			return nil, fmt.Errorf("%w: reading shadow mask", ErrTruncatedLightmapData)
		}
	}

	// 8+8+4*4 bytes per region
	if int64(regionCount)*32 > int64(r.Len()) {
		return nil, fmt.Errorf("%w: %d regions", ErrTruncatedLightmapData, regionCount)
	}
	lm.Regions = make([]LightmapRegion, regionCount)
	for i := range lm.Regions {
		var raw struct {
			FaceID, SolidID int64
			X, Y, W, H      int32
		}
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("%w: reading region %d", ErrTruncatedLightmapData, i)
		}
		lm.Regions[i] = LightmapRegion{
			FaceID:  raw.FaceID,
			SolidID: raw.SolidID,
			X:       int(raw.X),
			Y:       int(raw.Y),
			Width:   int(raw.W),
			Height:  int(raw.H),
		}
	}
	return lm, nil
}

// ParseLightmapFile parses an LMAP file from disk.
func ParseLightmapFile(path string) (*Lightmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lightmap file: %w", err)
	}
	return ParseLightmap(data)
}

// WriteLightmapFile writes lm to disk in the LMAP format.
func WriteLightmapFile(path string, lm *Lightmap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating lightmap file: %w", err)
	}
	if err := WriteLightmap(f, lm); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
