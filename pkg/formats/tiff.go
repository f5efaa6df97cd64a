package formats

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"golang.org/x/image/tiff"
)

// LightmapImage converts the float atlas to a 16-bit image for previews.
// Values are clamped to [0,1]; no gamma is applied.
func LightmapImage(lm *Lightmap) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, lm.Width, lm.Height))
	for y := 0; y < lm.Height; y++ {
		for x := 0; x < lm.Width; x++ {
			c := lm.At(x, y)
			img.SetRGBA64(x, y, color.RGBA64{
				R: to16(c[0]),
				G: to16(c[1]),
				B: to16(c[2]),
				A: 0xffff,
			})
		}
	}
	return img
}

func to16(v float32) uint16 {
	v = min(max(v, 0), 1)
	return uint16(v*0xffff + 0.5)
}

// EncodeTIFF writes a deflate-compressed 16-bit TIFF preview of lm.
func EncodeTIFF(w io.Writer, lm *Lightmap) error {
	if lm.Width <= 0 || lm.Height <= 0 || len(lm.Data) != lm.Width*lm.Height*3 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidLightmapSize, lm.Width, lm.Height)
	}
	return tiff.Encode(w, LightmapImage(lm), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// WriteTIFFFile writes a TIFF preview of lm to disk.
func WriteTIFFFile(path string, lm *Lightmap) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preview file: %w", err)
	}
	if err := EncodeTIFF(f, lm); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
