package collider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

func TestRaycastHitsNearestSurface(t *testing.T) {
	c := New()
	assert.True(t, c.Dirty())

	c.Rebuild(mesh.Icosphere(2), xform.Identity())
	assert.False(t, c.Dirty())
	assert.Equal(t, 1, c.Rebuilds())
	assert.Equal(t, 320, c.TriangleCount())

	hit, ok := c.Raycast(math.Vec3{Z: 5}, math.Vec3{Z: -1})
	require.True(t, ok)
	assert.InDelta(t, 1, hit.Point.Z, 0.05, "should hit the near side")
	assert.InDelta(t, 4, hit.Distance, 0.05)
	assert.Greater(t, hit.Normal.Z, float32(0.9))
}

func TestRaycastUsesWorldTransform(t *testing.T) {
	c := New()
	xf := xform.New(math.Vec3{X: 10}, math.QuatIdentity(), math.Vec3{X: 2, Y: 2, Z: 2})
	c.Rebuild(mesh.Icosphere(2), xf)

	_, ok := c.Raycast(math.Vec3{Z: 5}, math.Vec3{Z: -1})
	assert.False(t, ok, "mesh moved away from the origin")

	hit, ok := c.Raycast(math.Vec3{X: 10, Z: 5}, math.Vec3{Z: -1})
	require.True(t, ok)
	assert.InDelta(t, 2, hit.Point.Z, 0.1)
}

func TestRaycastMisses(t *testing.T) {
	c := New()
	_, ok := c.Raycast(math.Vec3{Z: 5}, math.Vec3{Z: -1})
	assert.False(t, ok, "empty collider")

	c.Rebuild(mesh.Grid(2, 2), xform.Identity())
	_, ok = c.Raycast(math.Vec3{X: 5, Y: 1}, math.Vec3{Y: -1})
	assert.False(t, ok, "outside the grid")

	_, ok = c.Raycast(math.Vec3{Y: 1}, math.Vec3{})
	assert.False(t, ok, "zero direction")

	hit, ok := c.Raycast(math.Vec3{X: 0.3, Y: 1, Z: 0.2}, math.Vec3{Y: -1})
	require.True(t, ok)
	assert.InDelta(t, 0, hit.Point.Y, 1e-5)
	assert.InDelta(t, 1, hit.Normal.Y, 1e-5)
}

func TestMarkDirty(t *testing.T) {
	c := New()
	c.Rebuild(mesh.Grid(1, 1), xform.Identity())
	c.MarkDirty()
	assert.True(t, c.Dirty())
	c.Rebuild(mesh.Grid(1, 1), xform.Identity())
	assert.False(t, c.Dirty())
	assert.Equal(t, 2, c.Rebuilds())
}
