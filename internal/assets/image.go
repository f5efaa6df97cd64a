package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	_ "golang.org/x/image/bmp"
)

// ErrUnsupportedImage is returned for image files whose size cannot be read.
var ErrUnsupportedImage = errors.New("unsupported image")

// tgaHeaderSize is the fixed TGA header length.
const tgaHeaderSize = 18

// imageExtensions are tried in order when a texture name has no extension.
var imageExtensions = []string{".tga", ".png", ".bmp", ".jpg", ".jpeg"}

// ImageSize returns the pixel size of an image file. TGA headers are read
// directly; other formats go through the registered image decoders.
func ImageSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var cfg image.Config
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		cfg, err = decodeTGAConfig(f)
	} else {
		cfg, _, err = image.DecodeConfig(f)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// decodeTGAConfig reads the size of an uncompressed (type 2) or RLE
// (type 10) true-color TGA.
func decodeTGAConfig(r io.Reader) (image.Config, error) {
	var h [tgaHeaderSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return image.Config{}, fmt.Errorf("TGA header: %w", err)
	}

	colorMapType := h[1]
	imageType := h[2]
	width := int(h[12]) | int(h[13])<<8
	height := int(h[14]) | int(h[15])<<8
	bpp := int(h[16])

	if colorMapType != 0 {
		return image.Config{}, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != 2 && imageType != 10 {
		return image.Config{}, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return image.Config{}, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}
	if width == 0 || height == 0 {
		return image.Config{}, fmt.Errorf("empty TGA %dx%d", width, height)
	}
	return image.Config{Width: width, Height: height}, nil
}

// findImage locates the file of a texture under root.
func findImage(root, name string) (string, bool) {
	base := filepath.Join(root, filepath.FromSlash(normalizeName(name)))
	candidates := []string{base}
	if filepath.Ext(base) == "" {
		candidates = candidates[:0]
		for _, ext := range imageExtensions {
			candidates = append(candidates, base+ext)
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// ResolveSizes fills in the pixel size of textures that have none by reading
// their image files under root. Textures without a file are left alone. It
// returns how many textures were resolved.
func (c *Catalog) ResolveSizes(root string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resolved := 0
	var err error
	for key, t := range c.textures {
		if t.Width > 0 && t.Height > 0 {
			continue
		}
		path, ok := findImage(root, t.Name)
		if !ok {
			continue
		}
		w, h, sizeErr := ImageSize(path)
		if sizeErr != nil {
			err = multierr.Append(err, sizeErr)
			continue
		}
		t.Width, t.Height = w, h
		c.textures[key] = t
		resolved++
	}
	return resolved, err
}
