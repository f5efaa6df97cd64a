package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"golang.org/x/image/tiff"
)

func sampleLightmap() *Lightmap {
	lm := NewLightmap(4, 2, true, true)
	for i := range lm.Data {
		lm.Data[i] = float32(i) / float32(len(lm.Data))
	}
	for i := range lm.Directional {
		lm.Directional[i] = 0.5
	}
	for i := range lm.ShadowMask {
		lm.ShadowMask[i] = 1
	}
	lm.Regions = []LightmapRegion{
		{FaceID: 7, SolidID: 3, X: 0, Y: 0, Width: 2, Height: 2},
		{FaceID: 9, SolidID: 3, X: 2, Y: 0, Width: 2, Height: 2},
	}
	return lm
}

func TestLightmapRoundTrip(t *testing.T) {
	lm := sampleLightmap()

	var buf bytes.Buffer
	if err := WriteLightmap(&buf, lm); err != nil {
		t.Fatalf("WriteLightmap failed: %v", err)
	}

	got, err := ParseLightmap(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseLightmap failed: %v", err)
	}
	if got.Width != 4 || got.Height != 2 {
		t.Errorf("expected 4x2, got %dx%d", got.Width, got.Height)
	}
	for i := range lm.Data {
		if got.Data[i] != lm.Data[i] {
			t.Fatalf("data[%d]: expected %v, got %v", i, lm.Data[i], got.Data[i])
		}
	}
	if len(got.Directional) != len(lm.Directional) || len(got.ShadowMask) != len(lm.ShadowMask) {
		t.Errorf("optional buffers not restored")
	}
	if len(got.Regions) != 2 || got.Regions[1] != lm.Regions[1] {
		t.Errorf("regions not restored: %+v", got.Regions)
	}

	r, ok := got.RegionForFace(9)
	if !ok || r.X != 2 {
		t.Errorf("RegionForFace(9) = %+v, %v", r, ok)
	}
	if _, ok := got.RegionForFace(42); ok {
		t.Error("unexpected region for unknown face")
	}
}

func TestLightmapWithoutOptionalBuffers(t *testing.T) {
	lm := NewLightmap(2, 2, false, false)
	lm.Set(1, 1, [3]float32{0.25, 0.5, 1})

	var buf bytes.Buffer
	if err := WriteLightmap(&buf, lm); err != nil {
		t.Fatalf("WriteLightmap failed: %v", err)
	}
	got, err := ParseLightmap(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseLightmap failed: %v", err)
	}
	if got.Directional != nil || got.ShadowMask != nil {
		t.Error("expected no optional buffers")
	}
	if c := got.At(1, 1); c != [3]float32{0.25, 0.5, 1} {
		t.Errorf("At(1,1) = %v", c)
	}
}

func TestParseLightmapErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLightmap(&buf, sampleLightmap()); err != nil {
		t.Fatalf("WriteLightmap failed: %v", err)
	}
	valid := buf.Bytes()

	badMagic := append([]byte("XMAP"), valid[4:]...)
	badVersion := append([]byte{}, valid...)
	badVersion[4] = 9

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", valid[:10], ErrTruncatedLightmapData},
		{"bad magic", badMagic, ErrInvalidLightmapMagic},
		{"bad version", badVersion, ErrUnsupportedLightmapVersion},
		{"truncated data", valid[:40], ErrTruncatedLightmapData},
		{"truncated regions", valid[:len(valid)-8], ErrTruncatedLightmapData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLightmap(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseLightmapOversizedHeader(t *testing.T) {
	data := []byte("LMAP")
	data = append(data, LightmapVersion.Major, LightmapVersion.Minor)
	data = binary.LittleEndian.AppendUint32(data, 8192)
	data = binary.LittleEndian.AppendUint32(data, 8192)
	data = binary.LittleEndian.AppendUint32(data, LightmapHasDirectional|LightmapHasShadowMask)
	data = binary.LittleEndian.AppendUint32(data, 0)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := ParseLightmap(data)
	runtime.ReadMemStats(&after)

	if !errors.Is(err, ErrTruncatedLightmapData) {
		t.Fatalf("expected %v, got %v", ErrTruncatedLightmapData, err)
	}
	if grown := after.TotalAlloc - before.TotalAlloc; grown > 1<<20 {
		t.Errorf("parser allocated %d bytes before rejecting the header", grown)
	}
}

func TestWriteLightmapRejectsMismatchedBuffer(t *testing.T) {
	lm := &Lightmap{Width: 2, Height: 2, Data: make([]float32, 5)}
	if err := WriteLightmap(&bytes.Buffer{}, lm); !errors.Is(err, ErrInvalidLightmapSize) {
		t.Errorf("expected ErrInvalidLightmapSize, got %v", err)
	}
}

func TestLightmapFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.lmap")
	if err := WriteLightmapFile(path, sampleLightmap()); err != nil {
		t.Fatalf("WriteLightmapFile failed: %v", err)
	}
	got, err := ParseLightmapFile(path)
	if err != nil {
		t.Fatalf("ParseLightmapFile failed: %v", err)
	}
	if len(got.Regions) != 2 {
		t.Errorf("expected 2 regions, got %d", len(got.Regions))
	}
}

func TestEncodeTIFF(t *testing.T) {
	lm := NewLightmap(3, 2, false, false)
	lm.Set(1, 0, [3]float32{1, 0.5, 2})

	var buf bytes.Buffer
	if err := EncodeTIFF(&buf, lm); err != nil {
		t.Fatalf("EncodeTIFF failed: %v", err)
	}

	img, err := tiff.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("expected 3x2 image, got %v", b)
	}
	r, g, b, a := img.At(1, 0).RGBA()
	if r != 0xffff || g != uint32(to16(0.5)) || b != 0xffff || a != 0xffff {
		t.Errorf("pixel (1,0) = %x %x %x %x", r, g, b, a)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Errorf("expected black at (0,0), got r=%x", r)
	}
}
