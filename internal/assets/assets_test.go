package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-editor/pkg/brush"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

const catalogYAML = `
textures:
  - name: textures/stone_wall
    width: 64
    height: 64
    texel_size: 4
  - name: textures/sky
    width: 256
    height: 256
    lightmap: false
  - name: textures/trim
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	wall, ok := c.Lookup("TEXTURES\\Stone_Wall")
	require.True(t, ok)
	assert.Equal(t, 64, wall.Width)
	assert.Equal(t, 4.0, wall.TexelSize)
	assert.True(t, wall.Lightmapped())

	sky, ok := c.Lookup("textures/sky")
	require.True(t, ok)
	assert.False(t, sky.Lightmapped())

	_, ok = c.Lookup("textures/missing")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestParseCatalogEmpty(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestCatalogValidation(t *testing.T) {
	_, err := NewCatalog(
		Texture{Name: ""},
		Texture{Name: "a", Width: -1},
		Texture{Name: "b", TexelSize: -2},
	)
	require.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Contains(t, err.Error(), "without a name")
	assert.Contains(t, err.Error(), "size -1x0")
	assert.Contains(t, err.Error(), "texel size -2")

	_, err = NewCatalog(Texture{Name: "Dup"}, Texture{Name: "dup"})
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	ids := brush.NewIDGenerator()
	wall, err := brush.NewBlock(ids, math.Box{Max: math.Vec3{X: 64, Y: 64, Z: 64}}, brush.TextureRef{Name: "textures/stone_wall"})
	require.NoError(t, err)
	sky, err := brush.NewBlock(ids, math.Box{Min: math.Vec3{Z: 100}, Max: math.Vec3{X: 64, Y: 64, Z: 110}}, brush.TextureRef{Name: "textures/sky"})
	require.NoError(t, err)
	unknown, err := brush.NewBlock(ids, math.Box{Min: math.Vec3{X: 100}, Max: math.Vec3{X: 110, Y: 10, Z: 10}}, brush.TextureRef{Name: "textures/unknown"})
	require.NoError(t, err)

	matched := c.Apply([]*brush.Solid{wall, sky, unknown})
	assert.Equal(t, 12, matched)

	for _, f := range wall.Faces {
		assert.Equal(t, 4.0, f.TexelSize)
		assert.False(t, f.DisableInLightmap)
		for _, v := range f.Vertices {
			assert.True(t, v.UV0.X >= -1 && v.UV0.X <= 1, "u %g", v.UV0.X)
			assert.True(t, v.UV0.Y >= -1 && v.UV0.Y <= 1, "v %g", v.UV0.Y)
		}
	}
	for _, f := range sky.Faces {
		assert.True(t, f.DisableInLightmap)
		assert.Zero(t, f.TexelSize)
	}
	for _, f := range unknown.Faces {
		assert.False(t, f.DisableInLightmap)
		assert.Equal(t, math.Vec2{}, f.Vertices[0].UV0)
	}
}

func TestCatalogConcurrentLookup(t *testing.T) {
	c, err := NewCatalog(Texture{Name: "a"}, Texture{Name: "b"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Lookup("a")
				c.Lookup("c")
			}
		}()
	}
	wg.Wait()

	hits, misses := c.Stats()
	assert.Equal(t, 800, hits)
	assert.Equal(t, 800, misses)
}
