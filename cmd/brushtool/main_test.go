package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/midgard-editor/internal/config"
	"github.com/Faultbox/midgard-editor/internal/engine/lighting"
	"github.com/Faultbox/midgard-editor/internal/mapfile"
	"github.com/Faultbox/midgard-editor/pkg/brush"
	"github.com/Faultbox/midgard-editor/pkg/formats"
	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

func testApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Lightmap.Width, cfg.Lightmap.Height = 256, 256
	cfg.Lightmap.Workers = 2
	var out bytes.Buffer
	return newApp(cfg, zaptest.NewLogger(t), &out), &out
}

// writeMap saves the given boxes as solids 1..n and returns the map path.
func writeMap(t *testing.T, lights []lighting.Light, boxes ...math.Box) string {
	t.Helper()
	ids := brush.NewIDGenerator()
	var solids []*brush.Solid
	for _, b := range boxes {
		s, err := brush.NewBlock(ids, b, brush.TextureRef{Name: "textures/wall"})
		require.NoError(t, err)
		solids = append(solids, s)
	}
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, mapfile.FromSolids(solids, lights, nil).Save(path))
	return path
}

func readSolids(t *testing.T, path string) []*brush.Solid {
	t.Helper()
	doc, err := mapfile.Load(path)
	require.NoError(t, err)
	solids, _, err := doc.Build(brush.NewIDGenerator(), geom.DefaultEpsilon)
	require.NoError(t, err)
	return solids
}

func totalVolume(solids []*brush.Solid) float64 {
	var v float64
	for _, s := range solids {
		v += s.Volume()
	}
	return v
}

var cube = math.Box{Max: math.Vec3{X: 64, Y: 64, Z: 64}}

func TestInfo(t *testing.T) {
	a, out := testApp(t)
	path := writeMap(t, nil, cube, math.Box{Min: math.Vec3{X: 100}, Max: math.Vec3{X: 110, Y: 10, Z: 10}})

	require.NoError(t, a.cmdInfo([]string{path}))
	assert.Contains(t, out.String(), "Solids:  2")
	assert.Contains(t, out.String(), "Faces:   12 (12 lightmapped)")
	assert.Contains(t, out.String(), "Bounds:  (0, 0, 0) - (110, 64, 64)")

	assert.Error(t, a.cmdInfo(nil))
}

func TestClip(t *testing.T) {
	a, _ := testApp(t)
	path := writeMap(t, nil, cube)
	outPath := filepath.Join(t.TempDir(), "clipped.yaml")

	require.NoError(t, a.cmdClip([]string{"-plane", "0,0,1,32", "-keep", "back", "-o", outPath, path}))

	solids := readSolids(t, outPath)
	require.Len(t, solids, 1)
	assert.InDelta(t, 64*64*32, solids[0].Volume(), 1e-6)
	assert.Equal(t, 32.0, solids[0].Bounds().Max.Z)
}

func TestClipToStdout(t *testing.T) {
	a, out := testApp(t)
	path := writeMap(t, nil, cube)

	require.NoError(t, a.cmdClip([]string{"-plane", "1,0,0,16", path}))
	doc, err := mapfile.Parse(out)
	require.NoError(t, err)
	assert.Len(t, doc.Solids, 2)
}

func TestClipErrors(t *testing.T) {
	a, _ := testApp(t)
	path := writeMap(t, nil, cube)

	assert.Error(t, a.cmdClip([]string{"-plane", "0,0,1", path}))
	assert.Error(t, a.cmdClip([]string{"-plane", "0,0,0,1", path}))
	assert.Error(t, a.cmdClip([]string{"-plane", "0,0,1,1", "-keep", "left", path}))
	assert.Error(t, a.cmdClip([]string{"-plane", "0,0,1,1", "-solid", "99", path}))
}

func TestCarve(t *testing.T) {
	a, _ := testApp(t)
	carver := math.Box{Min: math.Vec3{X: 16, Y: 16, Z: -8}, Max: math.Vec3{X: 48, Y: 48, Z: 72}}
	far := math.Box{Min: math.Vec3{X: 200}, Max: math.Vec3{X: 210, Y: 10, Z: 10}}
	path := writeMap(t, nil, cube, carver, far)
	outPath := filepath.Join(t.TempDir(), "carved.yaml")

	require.NoError(t, a.cmdCarve([]string{"-carver", "2", "-o", outPath, path}))

	solids := readSolids(t, outPath)
	// Four pieces around the hole, the carver and the untouched block.
	require.Len(t, solids, 6)
	pieces := solids[:4]
	assert.InDelta(t, 64*64*64-32*32*64, totalVolume(pieces), 1e-6)
	assert.Equal(t, int64(2), solids[4].ID)
	assert.Equal(t, int64(3), solids[5].ID)
}

func TestHollow(t *testing.T) {
	a, _ := testApp(t)
	path := writeMap(t, nil, cube)
	outPath := filepath.Join(t.TempDir(), "hollow.yaml")

	require.NoError(t, a.cmdHollow([]string{"-solid", "1", "-thickness", "8", "-o", outPath, path}))

	solids := readSolids(t, outPath)
	assert.Len(t, solids, 6)
	assert.InDelta(t, 64*64*64-48*48*48, totalVolume(solids), 1e-6)

	assert.Error(t, a.cmdHollow([]string{"-solid", "1", "-thickness", "40", path}))
}

func TestPick(t *testing.T) {
	a, out := testApp(t)
	path := writeMap(t, nil, cube)

	require.NoError(t, a.cmdPick([]string{path}))
	assert.Contains(t, out.String(), "Visible: 1 of 1 solids")
	assert.Contains(t, out.String(), "Hit: solid 1 face")

	out.Reset()
	require.NoError(t, a.cmdPick([]string{"-x", "0", "-y", "0", path}))
	assert.Contains(t, out.String(), "No hit")

	assert.Error(t, a.cmdPick([]string{"-vw", "0", path}))
	assert.Error(t, a.cmdPick(nil))
}

func TestBake(t *testing.T) {
	a, out := testApp(t)
	sun := lighting.DirectionalLight{Direction: math.Vec3{Z: -1}, Color: [3]float32{1, 1, 1}, Intensity: 1}
	path := writeMap(t, []lighting.Light{sun}, cube)
	dir := t.TempDir()
	lmPath := filepath.Join(dir, "map.lmap")
	tiffPath := filepath.Join(dir, "map.tiff")

	require.NoError(t, a.cmdBake([]string{"-o", lmPath, "-tiff", tiffPath, path}))
	assert.Contains(t, out.String(), "Baked: "+lmPath)

	lm, err := formats.ParseLightmapFile(lmPath)
	require.NoError(t, err)
	assert.Len(t, lm.Regions, 6)

	info, err := os.Stat(tiffPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, a.cmdBake([]string{path}), "missing -o")
}
