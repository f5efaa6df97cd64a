// Package config handles editor configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-editor/internal/engine/lightmap"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all editor settings.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Geometry GeometryConfig `yaml:"geometry"`
	Lightmap LightmapConfig `yaml:"lightmap"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// GeometryConfig holds CSG tolerances.
type GeometryConfig struct {
	Epsilon     float64 `yaml:"epsilon"`      // plane classification
	WeldEpsilon float64 `yaml:"weld_epsilon"` // vertex welding
}

// LightmapConfig holds lightmap bake settings.
type LightmapConfig struct {
	Width               int        `yaml:"width"`
	Height              int        `yaml:"height"`
	TexelSize           float64    `yaml:"texel_size"`
	Margin              float64    `yaml:"margin"`
	BlurStrength        float32    `yaml:"blur_strength"`
	Ambient             [3]float32 `yaml:"ambient,flow"`
	SurfaceOffset       float64    `yaml:"surface_offset"`
	ShadowBias          float64    `yaml:"shadow_bias"`
	DirectionalDistance float64    `yaml:"directional_distance"`
	Workers             int        `yaml:"workers"` // 0 = GOMAXPROCS
	Directional         bool       `yaml:"directional"`
	ShadowMask          bool       `yaml:"shadow_mask"`
}

// AssetsConfig holds asset lookup paths.
type AssetsConfig struct {
	Catalog     string `yaml:"catalog"`      // texture catalog YAML, optional
	TextureRoot string `yaml:"texture_root"` // directory of texture images for unsized entries
}

// Default returns a Config with sensible default values.
func Default() *Config {
	bake := lightmap.DefaultSettings()
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Geometry: GeometryConfig{
			Epsilon:     0.5,
			WeldEpsilon: 0.001,
		},
		Lightmap: LightmapConfig{
			Width:               bake.Width,
			Height:              bake.Height,
			TexelSize:           bake.TexelSize,
			Margin:              bake.Margin,
			BlurStrength:        bake.BlurStrength,
			Ambient:             bake.Ambient,
			SurfaceOffset:       bake.SurfaceOffset,
			ShadowBias:          bake.ShadowBias,
			DirectionalDistance: bake.DirectionalDistance,
		},
	}
}

// Settings converts the section into baker settings.
func (l LightmapConfig) Settings() lightmap.Settings {
	return lightmap.Settings{
		Width:               l.Width,
		Height:              l.Height,
		TexelSize:           l.TexelSize,
		Margin:              l.Margin,
		BlurStrength:        l.BlurStrength,
		Ambient:             l.Ambient,
		SurfaceOffset:       l.SurfaceOffset,
		ShadowBias:          l.ShadowBias,
		DirectionalDistance: l.DirectionalDistance,
		Workers:             l.Workers,
		Directional:         l.Directional,
		ShadowMask:          l.ShadowMask,
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		err = multierr.Append(err, fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level))
	}
	if c.Geometry.Epsilon <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: geometry.epsilon %g", ErrInvalidConfig, c.Geometry.Epsilon))
	}
	if c.Geometry.WeldEpsilon <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: geometry.weld_epsilon %g", ErrInvalidConfig, c.Geometry.WeldEpsilon))
	}
	for _, e := range multierr.Errors(c.Lightmap.Settings().Validate()) {
		err = multierr.Append(err, fmt.Errorf("%w: lightmap: %w", ErrInvalidConfig, e))
	}
	return err
}
