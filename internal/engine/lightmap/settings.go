// Package lightmap bakes static direct lighting for brush faces into a
// packed float RGB atlas.
package lightmap

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidSettings wraps every settings validation failure.
var ErrInvalidSettings = errors.New("invalid lightmap settings")

// MinChartSize is the smallest chart edge in texels.
const MinChartSize = 4

// Settings controls a bake.
type Settings struct {
	Width  int // maximum atlas width in texels
	Height int // maximum atlas height in texels

	TexelSize    float64 // world units per texel for faces without their own
	Margin       float64 // texels kept free around every chart
	BlurStrength float32 // Gaussian sigma in texels, 0 disables the blur

	Ambient             [3]float32
	SurfaceOffset       float64 // sample distance above the face
	ShadowBias          float64
	DirectionalDistance float64 // where shadow rays of directional lights start

	Workers int // parallel face tasks, 0 = GOMAXPROCS

	Directional bool // also bake the dominant light direction
	ShadowMask  bool // also bake the visible-light fraction
}

// DefaultSettings returns the editor defaults.
func DefaultSettings() Settings {
	return Settings{
		Width:               1024,
		Height:              1024,
		TexelSize:           8,
		Margin:              1,
		BlurStrength:        1,
		Ambient:             [3]float32{0.35, 0.35, 0.35},
		SurfaceOffset:       0.1,
		ShadowBias:          0.05,
		DirectionalDistance: 10000,
	}
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidSettings}, args...)...))
		}
	}
	check(s.Width >= MinChartSize && s.Height >= MinChartSize, "atlas size %dx%d", s.Width, s.Height)
	check(s.TexelSize > 0, "texel size %g", s.TexelSize)
	check(s.Margin >= 0, "margin %g", s.Margin)
	check(s.BlurStrength >= 0, "blur strength %g", s.BlurStrength)
	check(s.SurfaceOffset >= 0, "surface offset %g", s.SurfaceOffset)
	check(s.ShadowBias >= 0, "shadow bias %g", s.ShadowBias)
	check(s.DirectionalDistance > 0, "directional distance %g", s.DirectionalDistance)
	check(s.Workers >= 0, "workers %d", s.Workers)
	for i, c := range s.Ambient {
		check(c >= 0, "ambient[%d] %g", i, c)
	}
	return err
}
