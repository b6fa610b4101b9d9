// Package collider keeps a world-space triangle copy of a sculpted mesh for
// brush ray picking. It is derived state and never a source of truth.
package collider

import (
	"github.com/Faultbox/midgard-sculpt/internal/engine/picking"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// Hit describes the nearest ray intersection with the collider.
type Hit struct {
	Point    math.Vec3
	Normal   math.Vec3 // Geometric face normal, facing the ray origin
	Distance float32
	Triangle int
}

// Collider is a world-space snapshot of mesh triangles.
type Collider struct {
	positions []math.Vec3
	indices   []uint32
	bounds    picking.AABB
	dirty     bool
	rebuilds  int
}

// New creates an empty, dirty collider.
func New() *Collider {
	return &Collider{dirty: true}
}

// Rebuild copies the mesh into world space and clears the dirty flag.
func (c *Collider) Rebuild(m *mesh.Mesh, xf xform.Transform) {
	c.positions = c.positions[:0]
	c.indices = append(c.indices[:0], m.Indices...)
	for i, p := range m.Positions {
		w := xf.TransformPoint(p)
		c.positions = append(c.positions, w)
		if i == 0 {
			c.bounds = picking.AABB{Min: w, Max: w}
			continue
		}
		c.bounds.Min = c.bounds.Min.Min(w)
		c.bounds.Max = c.bounds.Max.Max(w)
	}
	if len(m.Positions) == 0 {
		c.bounds = picking.AABB{}
	}
	c.dirty = false
	c.rebuilds++
}

// Dirty reports whether the mesh changed since the last rebuild.
func (c *Collider) Dirty() bool {
	return c.dirty
}

// MarkDirty flags the collider as stale.
func (c *Collider) MarkDirty() {
	c.dirty = true
}

// Rebuilds returns how many times the collider has been rebuilt.
func (c *Collider) Rebuilds() int {
	return c.rebuilds
}

// Bounds returns the world-space bounding box of the last rebuild.
func (c *Collider) Bounds() picking.AABB {
	return c.bounds
}

// TriangleCount returns the number of triangles in the snapshot.
func (c *Collider) TriangleCount() int {
	return len(c.indices) / 3
}

// Raycast returns the nearest triangle hit along the ray. Stale colliders are
// still queried; callers decide whether to rebuild first.
func (c *Collider) Raycast(origin, dir math.Vec3) (Hit, bool) {
	if len(c.indices) == 0 {
		return Hit{}, false
	}
	ray := picking.Ray{Origin: origin, Direction: dir.Normalize()}
	if ray.Direction.IsZero() {
		return Hit{}, false
	}
	if _, ok := ray.IntersectAABB(c.bounds); !ok {
		return Hit{}, false
	}

	best := Hit{Triangle: -1}
	for tri := 0; tri < len(c.indices)/3; tri++ {
		a := c.positions[c.indices[tri*3]]
		b := c.positions[c.indices[tri*3+1]]
		cc := c.positions[c.indices[tri*3+2]]
		t, _, _, ok := ray.IntersectTriangle(a, b, cc)
		if !ok || (best.Triangle >= 0 && t >= best.Distance) {
			continue
		}
		n := b.Sub(a).Cross(cc.Sub(a)).Normalize()
		if n.Dot(ray.Direction) > 0 {
			n = n.Neg()
		}
		best = Hit{Point: ray.At(t), Normal: n, Distance: t, Triangle: tri}
	}
	if best.Triangle < 0 {
		return Hit{}, false
	}
	return best, true
}
