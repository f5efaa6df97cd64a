package lightmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-editor/pkg/formats"
	"github.com/Faultbox/midgard-editor/pkg/pack"
)

func TestKernelIsCachedPerRadius(t *testing.T) {
	b := NewBaker(DefaultSettings(), nil, nil)

	k1 := b.kernel(1)
	require.Len(t, k1, 7)
	var sum float32
	for _, w := range k1 {
		sum += w
	}
	assert.InDelta(t, 1, sum, 1e-6)
	assert.InDelta(t, k1[0], k1[6], 1e-9)
	assert.Greater(t, k1[3], k1[2])

	// 0.9 rounds up to the same radius.
	k2 := b.kernel(0.9)
	assert.Same(t, &k1[0], &k2[0])
	assert.Equal(t, 1, b.kernelBuilds)

	k3 := b.kernel(2)
	assert.Len(t, k3, 13)
	assert.Equal(t, 2, b.kernelBuilds)
}

func TestBlurKeepsChartsApart(t *testing.T) {
	lm := formats.NewLightmap(8, 1, false, false)
	owner := make([]int32, 8)
	for x := 0; x < 8; x++ {
		v := float32(1)
		owner[x] = 1
		if x >= 4 {
			v = 0.5
			owner[x] = 2
		}
		lm.Set(x, 0, [3]float32{v, v, v})
	}

	b := NewBaker(DefaultSettings(), nil, nil)
	require.NoError(t, blur(context.Background(), lm, owner, b.kernel(2), 2))

	for x := 0; x < 8; x++ {
		want := float32(1)
		if x >= 4 {
			want = 0.5
		}
		assert.InDelta(t, want, lm.At(x, 0)[0], 1e-6, "texel %d", x)
	}
}

func TestBlurSmoothsWithinChart(t *testing.T) {
	lm := formats.NewLightmap(5, 1, false, false)
	owner := []int32{1, 1, 1, 1, 1}
	lm.Set(2, 0, [3]float32{1, 1, 1})

	b := NewBaker(DefaultSettings(), nil, nil)
	require.NoError(t, blur(context.Background(), lm, owner, b.kernel(1), 1))

	center := lm.At(2, 0)[0]
	assert.Less(t, center, float32(1))
	assert.Greater(t, lm.At(1, 0)[0], float32(0))
	assert.InDelta(t, lm.At(1, 0)[0], lm.At(3, 0)[0], 1e-6)
}

func TestBlurIgnoresUnownedTexels(t *testing.T) {
	lm := formats.NewLightmap(3, 1, false, false)
	lm.Set(0, 0, [3]float32{1, 0, 0})
	lm.Set(1, 0, [3]float32{0, 1, 0})
	owner := []int32{0, 1, 0}

	b := NewBaker(DefaultSettings(), nil, nil)
	require.NoError(t, blur(context.Background(), lm, owner, b.kernel(1), 1))
	assert.Equal(t, [3]float32{1, 0, 0}, lm.At(0, 0))
	assert.InDelta(t, 1, lm.At(1, 0)[1], 1e-6)
}

func TestDilateFillsOneTexelRing(t *testing.T) {
	lm := formats.NewLightmap(5, 5, false, false)
	lm.Set(2, 2, [3]float32{0.8, 0.6, 0.4})

	require.NoError(t, dilate(context.Background(), lm, 2))

	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			assert.Equal(t, [3]float32{0.8, 0.6, 0.4}, lm.At(x, y), "texel (%d,%d)", x, y)
		}
	}
	assert.Equal(t, [3]float32{}, lm.At(0, 0))
	assert.Equal(t, [3]float32{}, lm.At(4, 2))
}

func TestDilateAveragesNeighbors(t *testing.T) {
	lm := formats.NewLightmap(3, 1, false, false)
	lm.Set(0, 0, [3]float32{1, 0, 0})
	lm.Set(2, 0, [3]float32{0, 0, 1})

	require.NoError(t, dilate(context.Background(), lm, 1))
	assert.Equal(t, [3]float32{0.5, 0, 0.5}, lm.At(1, 0))
}

func TestOwnerMap(t *testing.T) {
	charts := []*chart{
		{rect: pack.Rect{X: 0, Y: 0, Width: 2, Height: 2}},
		{rect: pack.Rect{X: 2, Y: 0, Width: 2, Height: 1}},
	}
	owner := ownerMap(charts, 4, 2)
	assert.Equal(t, []int32{1, 1, 2, 2, 1, 1, 0, 0}, owner)
}
