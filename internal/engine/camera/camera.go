// Package camera provides the orbit camera used to inspect sculpted meshes.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-sculpt/internal/engine/picking"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians, positive looks down
	Yaw      float32 // radians around +Y

	// Projection
	FOV  float32 // vertical, radians
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera framing a unit-sized object at the origin.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        3,
		Pitch:           0.3,
		FOV:             math32.Pi / 4,
		Near:            0.01,
		Far:             100,
		MinDistance:     0.05,
		MaxDistance:     50,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := math32.Cos(c.Pitch)
	offset := math.Vec3{
		X: c.Distance * cp * math32.Sin(c.Yaw),
		Y: c.Distance * math32.Sin(c.Pitch),
		Z: c.Distance * cp * math32.Cos(c.Yaw),
	}
	return c.Center.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// HandleDrag orbits by a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = math32.Max(c.MinPitch, math32.Min(c.MaxPitch, c.Pitch))
}

// HandleZoom moves toward or away from the center by a scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = math32.Max(c.MinDistance, math32.Min(c.MaxDistance, c.Distance))
}

// FitToBounds centers the camera on a box and backs off until its bounding
// sphere fits the vertical field of view.
func (c *OrbitCamera) FitToBounds(min, max math.Vec3) {
	c.Center = min.Add(max).Scale(0.5)
	radius := max.Sub(min).Length() / 2
	if radius <= 0 {
		radius = 1
	}
	c.Distance = radius / math32.Sin(c.FOV/2) * 1.1
	c.MaxDistance = math32.Max(c.MaxDistance, c.Distance*4)
	c.MinDistance = math32.Min(c.MinDistance, radius*0.05)
	c.Far = math32.Max(c.Far, c.Distance+radius*4)
}

// Ray returns the world-space ray under a window pixel.
func (c *OrbitCamera) Ray(screenX, screenY, width, height float32) picking.Ray {
	viewProj := c.ProjectionMatrix(width / height).Mul(c.ViewMatrix())
	return picking.ScreenToRay(screenX, screenY, width, height, viewProj.Inverse())
}
