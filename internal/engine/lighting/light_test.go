package lighting

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-editor/pkg/math"
)

func TestNewPointLightSanitizes(t *testing.T) {
	l := NewPointLight(math.Vec3{}, [3]float32{1.5, -0.2, 0.5}, 0, 1)
	assert.Equal(t, [3]float32{1, 0, 0.5}, l.Color)
	assert.Equal(t, DefaultRange, l.Range)
}

func TestPointLightContribution(t *testing.T) {
	l := NewPointLight(math.Vec3{Z: 100}, [3]float32{1, 1, 1}, 400, 2)

	c, ok := l.Contribution(math.Vec3{})
	require.True(t, ok)
	assert.Equal(t, math.Vec3{Z: 1}, c.ToLight)
	assert.InDelta(t, 100, c.Distance, 1e-12)

	want := 2 * Attenuation(100, 400)
	assert.InDelta(t, want, c.Color[0], 1e-6)

	_, ok = l.Contribution(math.Vec3{Z: -400})
	assert.False(t, ok, "outside range")
}

func TestAttenuation(t *testing.T) {
	assert.InDelta(t, 1, Attenuation(0, 100), 1e-9)
	assert.InDelta(t, 0, Attenuation(100, 100), 1e-9)

	// 1 / (1 + (50*0.0254)^2) * (1 - smoothstep(0.5))
	m := 50 * InchesToMeters
	assert.InDelta(t, 1/(1+m*m)*0.5, Attenuation(50, 100), 1e-6)

	assert.Greater(t, Attenuation(10, 100), Attenuation(20, 100))
}

func TestDirectionalLightContribution(t *testing.T) {
	l := DirectionalLight{Direction: math.Vec3{Z: -2}, Color: [3]float32{0.5, 0.25, 1}, Intensity: 2}

	c, ok := l.Contribution(math.Vec3{X: 123, Y: -5})
	require.True(t, ok)
	assert.Equal(t, math.Vec3{Z: 1}, c.ToLight)
	assert.True(t, gomath.IsInf(c.Distance, 1))
	assert.Equal(t, [3]float32{1, 0.5, 2}, c.Color)

	_, ok = DirectionalLight{}.Contribution(math.Vec3{})
	assert.False(t, ok)
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		want     math.Vec3
	}{
		{"zenith", 0, 90, math.Vec3{Z: 1}},
		{"north horizon", 0, 0, math.Vec3{Y: 1}},
		{"east horizon", 90, 0, math.Vec3{X: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.lon, tt.lat)
			assert.True(t, got.ApproxEqual(tt.want, 1e-12), "got %v", got)
			assert.InDelta(t, 1, got.Length(), 1e-12)
		})
	}

	sun := NewSun(0, 90, [3]float32{1, 1, 1}, 1)
	assert.True(t, sun.Direction.ApproxEqual(math.Vec3{Z: -1}, 1e-12))
}
