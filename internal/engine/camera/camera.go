// Package camera provides the editor viewport camera.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/midgard-editor/internal/engine/picking"
	"github.com/Faultbox/midgard-editor/pkg/geom"
	"github.com/Faultbox/midgard-editor/pkg/math"
)

var up = math.Vec3{Z: 1}

// OrbitCamera orbits around a center point. The world is Z-up.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float64 // Distance from center
	Pitch    float64 // elevation above the horizon, radians
	Yaw      float64 // rotation around Z, radians; 0 looks along -Y

	// Constraints
	MinDistance float64
	MaxDistance float64
	MinPitch    float64
	MaxPitch    float64

	// Sensitivity
	DragSensitivity float64
	ZoomSensitivity float64

	// Projection
	FOV  float64 // vertical field of view, radians
	Near float64
	Far  float64
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        200.0,
		Pitch:           0.5,
		MinDistance:     16.0,
		MaxDistance:     8192.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOV:             mgl64.DegToRad(60),
		Near:            1,
		Far:             16384,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(c.Pitch)
	offset := math.Vec3{
		X: cp * gomath.Sin(c.Yaw),
		Y: cp * gomath.Cos(c.Yaw),
		Z: gomath.Sin(c.Pitch),
	}
	return c.Center.Add(offset.Scale(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(vec(c.Position()), vec(c.Center), vec(up))
}

// ProjectionMatrix returns the perspective projection for a viewport
// aspect ratio (width / height).
func (c *OrbitCamera) ProjectionMatrix(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float64) mgl64.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// Ray returns the pick ray through a viewport pixel.
func (c *OrbitCamera) Ray(screenX, screenY, viewportW, viewportH float64) picking.Ray {
	inv := c.ViewProjection(viewportW / viewportH).Inv()
	return picking.ScreenToRay(screenX, screenY, viewportW, viewportH, inv)
}

// Frustum returns the view volume for a viewport aspect ratio.
func (c *OrbitCamera) Frustum(aspect float64) (geom.Frustum, error) {
	return geom.FrustumFromMatrix(c.ViewProjection(aspect))
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float64) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float64) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point. forward and right move on the
// ground plane relative to the view, up moves along Z.
func (c *OrbitCamera) HandleMovement(forward, right, upward float64) {
	// Speed scales with distance for consistent feel
	speed := c.Distance * 0.01

	sin, cos := gomath.Sincos(c.Yaw)
	fwd := math.Vec3{X: -sin, Y: -cos}
	rgt := math.Vec3{X: -cos, Y: sin}

	move := fwd.Scale(forward).Add(rgt.Scale(right)).Add(up.Scale(upward))
	c.Center = c.Center.Add(move.Scale(speed))
}

// FitToBounds centers the camera on box and backs off until the whole box
// fits the vertical field of view.
func (c *OrbitCamera) FitToBounds(box math.Box) {
	c.Center = box.Center()
	c.Distance = clamp(box.Radius()/gomath.Sin(c.FOV/2), c.MinDistance, c.MaxDistance)
	c.Pitch = clamp(0.6, c.MinPitch, c.MaxPitch) // Look down at ~35 degrees
	c.Yaw = 0
}

func vec(v math.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
