package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-editor/pkg/math"
)

func TestNewPlaneFromPoints(t *testing.T) {
	// Clockwise seen from above: normal points up.
	p, err := NewPlaneFromPoints(math.Vec3{0, 1, 1}, math.Vec3{1, 1, 1}, math.Vec3{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{0, 0, 1}, p.Normal)
	assert.Equal(t, 1.0, p.Distance)
}

func TestNewPlaneFromPointsCollinear(t *testing.T) {
	_, err := NewPlaneFromPoints(math.Vec3{0, 0, 0}, math.Vec3{1, 1, 1}, math.Vec3{2, 2, 2})
	assert.ErrorIs(t, err, ErrDegeneratePlane)
}

func TestNewPlaneNormalizes(t *testing.T) {
	p, err := NewPlane(math.Vec3{0, 0, 4}, 8)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{0, 0, 1}, p.Normal)
	assert.Equal(t, 2.0, p.Distance)
	assert.Equal(t, math.Vec3{0, 0, 2}, p.Point)

	_, err = NewPlane(math.Vec3{}, 1)
	assert.ErrorIs(t, err, ErrDegeneratePlane)
}

func TestPlaneOnPlane(t *testing.T) {
	p, err := NewPlane(math.Vec3{X: 1}, 10)
	require.NoError(t, err)

	tests := []struct {
		point math.Vec3
		eps   float64
		want  int
	}{
		{math.Vec3{X: 20}, DefaultEpsilon, 1},
		{math.Vec3{X: 0}, DefaultEpsilon, -1},
		{math.Vec3{X: 10.3}, DefaultEpsilon, 0},
		{math.Vec3{X: 10.3}, 0.1, 1},
		{math.Vec3{X: 9.5}, DefaultEpsilon, -1},
	}
	for _, tt := range tests {
		got := p.OnPlane(tt.point, tt.eps)
		assert.Equal(t, tt.want, got, "OnPlane(%v, %v)", tt.point, tt.eps)
		assert.Equal(t, got, p.OnPlane(tt.point, tt.eps), "classification must be stable")
	}
}

func TestPlaneFlipAndOffset(t *testing.T) {
	p, err := NewPlane(math.Vec3{Y: 1}, 5)
	require.NoError(t, err)

	f := p.Flip()
	assert.Equal(t, math.Vec3{Y: -1}, f.Normal)
	assert.Equal(t, -5.0, f.Distance)
	assert.Equal(t, 1, f.OnPlane(math.Vec3{}, DefaultEpsilon))

	o := p.Offset(-2)
	assert.Equal(t, 3.0, o.Distance)
	assert.Equal(t, 0, o.OnPlane(math.Vec3{Y: 3}, 1e-9))
}

func TestPlaneIntersectLine(t *testing.T) {
	p, err := NewPlane(math.Vec3{Z: 1}, 0)
	require.NoError(t, err)

	down := Line{Start: math.Vec3{1, 2, 5}, End: math.Vec3{1, 2, -5}}
	point, ok := p.IntersectLine(down, false, false)
	require.True(t, ok)
	assert.Equal(t, math.Vec3{1, 2, 0}, point)

	up := Line{Start: down.End, End: down.Start}
	_, ok = p.IntersectLine(up, false, false)
	assert.False(t, ok, "back-to-front line must be rejected unless direction is ignored")
	_, ok = p.IntersectLine(up, true, false)
	assert.True(t, ok)

	short := Line{Start: math.Vec3{0, 0, 5}, End: math.Vec3{0, 0, 2}}
	_, ok = p.IntersectLine(short, false, false)
	assert.False(t, ok, "segment does not reach the plane")
	point, ok = p.IntersectLine(short, false, true)
	require.True(t, ok)
	assert.InDelta(t, 0, point.Z, 1e-12)

	parallel := Line{Start: math.Vec3{0, 0, 1}, End: math.Vec3{5, 0, 1}}
	_, ok = p.IntersectLine(parallel, true, true)
	assert.False(t, ok)
}

func TestIntersectThreePlanes(t *testing.T) {
	px, _ := NewPlane(math.Vec3{X: 1}, 1)
	py, _ := NewPlane(math.Vec3{Y: 1}, 2)
	pz, _ := NewPlane(math.Vec3{Z: -1}, -3)

	point, ok := Intersect(px, py, pz)
	require.True(t, ok)
	assert.InDelta(t, 1, point.X, 1e-12)
	assert.InDelta(t, 2, point.Y, 1e-12)
	assert.InDelta(t, 3, point.Z, 1e-12)

	// Orientation of the triple must not matter.
	point, ok = Intersect(px, pz, py)
	require.True(t, ok)
	assert.True(t, point.ApproxEqual(math.Vec3{1, 2, 3}, 1e-9))

	px2, _ := NewPlane(math.Vec3{X: 1}, 4)
	_, ok = Intersect(px, px2, py)
	assert.False(t, ok)
}

func TestClosestAxisBasis(t *testing.T) {
	p, _ := NewPlane(math.Vec3{0.2, 0.1, 0.9}, 0)
	u, v := p.ClosestAxisBasis()
	assert.Equal(t, math.Vec3{X: 1}, u)
	assert.Equal(t, math.Vec3{Y: -1}, v)

	p, _ = NewPlane(math.Vec3{-1, 0, 0}, 0)
	u, v = p.ClosestAxisBasis()
	assert.Equal(t, math.Vec3{Y: 1}, u)
	assert.Equal(t, math.Vec3{Z: -1}, v)
}
