// Package assets resolves texture names to the metadata the editor needs:
// pixel size for texture coordinates and lightmap density.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-editor/pkg/brush"
)

// ErrInvalidCatalog wraps every catalog validation failure.
var ErrInvalidCatalog = errors.New("invalid texture catalog")

// Texture describes one texture asset.
type Texture struct {
	Name      string  `yaml:"name"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TexelSize float64 `yaml:"texel_size,omitempty"` // lightmap texel size, 0 = baker default
	Lightmap  *bool   `yaml:"lightmap,omitempty"`   // nil = lightmapped
}

// Lightmapped reports whether faces with this texture receive a lightmap.
func (t Texture) Lightmapped() bool {
	return t.Lightmap == nil || *t.Lightmap
}

type catalogFile struct {
	Textures []Texture `yaml:"textures"`
}

// Catalog maps texture names to their metadata. It is safe for concurrent
// use.
type Catalog struct {
	mu       sync.RWMutex
	textures map[string]Texture

	statsMu sync.Mutex
	hits    int
	misses  int
}

// NewCatalog creates a catalog from textures.
func NewCatalog(textures ...Texture) (*Catalog, error) {
	c := &Catalog{textures: make(map[string]Texture, len(textures))}
	var err error
	for _, t := range textures {
		err = multierr.Append(err, c.Add(t))
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	c, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return NewCatalog(file.Textures...)
}

// Add registers a texture. Duplicate names are rejected.
func (c *Catalog) Add(t Texture) error {
	key := normalizeName(t.Name)
	var err error
	if key == "" {
		err = multierr.Append(err, fmt.Errorf("%w: texture without a name", ErrInvalidCatalog))
	}
	if t.Width < 0 || t.Height < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %s: size %dx%d", ErrInvalidCatalog, t.Name, t.Width, t.Height))
	}
	if t.TexelSize < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %s: texel size %g", ErrInvalidCatalog, t.Name, t.TexelSize))
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.textures[key]; ok {
		return fmt.Errorf("%w: duplicate texture %s", ErrInvalidCatalog, t.Name)
	}
	c.textures[key] = t
	return nil
}

// Lookup finds a texture by name. Names are case-insensitive and accept
// either slash.
func (c *Catalog) Lookup(name string) (Texture, bool) {
	c.mu.RLock()
	t, ok := c.textures[normalizeName(name)]
	c.mu.RUnlock()

	c.statsMu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.statsMu.Unlock()
	return t, ok
}

// Len returns the number of textures.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.textures)
}

// Apply copies catalog metadata onto the faces of solids: texture
// coordinates for textures with a known size, the lightmap texel size, and
// the lightmap flag. It returns the number of faces that matched.
func (c *Catalog) Apply(solids []*brush.Solid) int {
	matched := 0
	for _, s := range solids {
		for _, f := range s.Faces {
			if f.Texture.IsEmpty() {
				continue
			}
			t, ok := c.Lookup(f.Texture.Name)
			if !ok {
				continue
			}
			matched++
			if t.Width > 0 && t.Height > 0 {
				f.CalculateTextureCoordinates(float64(t.Width), float64(t.Height))
			}
			if t.TexelSize > 0 {
				f.TexelSize = t.TexelSize
			}
			f.DisableInLightmap = !t.Lightmapped()
		}
	}
	return matched
}

// Stats returns lookup statistics.
func (c *Catalog) Stats() (hits, misses int) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.hits, c.misses
}

func normalizeName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	return strings.ToLower(name)
}
