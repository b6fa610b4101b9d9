package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

func TestPositionOnAxis(t *testing.T) {
	c := NewOrbitCamera()
	c.Pitch = 0
	c.Yaw = 0
	c.Distance = 4
	c.Center = math.Vec3{X: 1}

	p := c.Position()
	assert.InDelta(t, 1, p.X, 1e-6)
	assert.InDelta(t, 0, p.Y, 1e-6)
	assert.InDelta(t, 4, p.Z, 1e-6)
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	assert.Equal(t, c.MaxPitch, c.Pitch)
	c.HandleDrag(0, -1e6)
	assert.Equal(t, c.MinPitch, c.Pitch)

	yaw := c.Yaw
	c.HandleDrag(100, 0)
	assert.Less(t, c.Yaw, yaw)
}

func TestHandleZoomClampsDistance(t *testing.T) {
	c := NewOrbitCamera()
	d := c.Distance
	c.HandleZoom(1)
	assert.Less(t, c.Distance, d)

	for i := 0; i < 200; i++ {
		c.HandleZoom(5)
	}
	assert.Equal(t, c.MinDistance, c.Distance)
	for i := 0; i < 200; i++ {
		c.HandleZoom(-5)
	}
	assert.Equal(t, c.MaxDistance, c.Distance)
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(math.Vec3{X: 9, Y: -1, Z: -1}, math.Vec3{X: 11, Y: 1, Z: 1})
	assert.Equal(t, math.Vec3{X: 10}, c.Center)
	assert.Greater(t, c.Distance, float32(1.7320508), "sphere of the box must be in front of the camera")
}

func TestRayThroughScreenCenterHitsCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{Y: 0.5}
	c.Yaw = 0.7
	c.Pitch = 0.4

	r := c.Ray(400, 300, 800, 600)
	toCenter := c.Center.Sub(r.Origin).Normalize()
	assert.InDelta(t, 1, r.Direction.Dot(toCenter), 1e-4)
}
