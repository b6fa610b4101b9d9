// Package xform provides the local/world transform used by the sculpt engine.
package xform

import (
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// Transform converts between an object's local space and world space.
// Direction conversions never apply translation: displacements are vectors,
// not points.
type Transform interface {
	TransformPoint(local math.Vec3) math.Vec3
	TransformDirection(local math.Vec3) math.Vec3
	InverseTransformPoint(world math.Vec3) math.Vec3
	InverseTransformDirection(world math.Vec3) math.Vec3
}

// TRS is a translation, rotation and scale transform with cached matrices.
type TRS struct {
	position math.Vec3
	rotation math.Quat
	scale    math.Vec3

	localToWorld math.Mat4
	worldToLocal math.Mat4
}

// Identity returns a transform that leaves points and directions unchanged.
func Identity() *TRS {
	return New(math.Vec3{}, math.QuatIdentity(), math.Vec3{X: 1, Y: 1, Z: 1})
}

// New creates a transform from position, rotation and scale.
func New(position math.Vec3, rotation math.Quat, scale math.Vec3) *TRS {
	t := &TRS{}
	t.Set(position, rotation, scale)
	return t
}

// Set replaces all components and rebuilds the cached matrices.
func (t *TRS) Set(position math.Vec3, rotation math.Quat, scale math.Vec3) {
	t.position = position
	t.rotation = rotation.Normalize()
	t.scale = scale
	t.localToWorld = math.TRS(t.position, t.rotation, t.scale)
	t.worldToLocal = t.localToWorld.Inverse()
}

// Position returns the translation component.
func (t *TRS) Position() math.Vec3 { return t.position }

// Rotation returns the rotation component.
func (t *TRS) Rotation() math.Quat { return t.rotation }

// Scale returns the scale component.
func (t *TRS) Scale() math.Vec3 { return t.scale }

// LocalToWorld returns the model matrix.
func (t *TRS) LocalToWorld() math.Mat4 { return t.localToWorld }

// TransformPoint maps a local point to world space.
func (t *TRS) TransformPoint(local math.Vec3) math.Vec3 {
	return t.localToWorld.TransformPoint(local)
}

// TransformDirection maps a local vector to world space (rotation and scale only).
func (t *TRS) TransformDirection(local math.Vec3) math.Vec3 {
	return t.localToWorld.TransformDirection(local)
}

// InverseTransformPoint maps a world point to local space.
func (t *TRS) InverseTransformPoint(world math.Vec3) math.Vec3 {
	return t.worldToLocal.TransformPoint(world)
}

// InverseTransformDirection maps a world vector to local space.
func (t *TRS) InverseTransformDirection(world math.Vec3) math.Vec3 {
	return t.worldToLocal.TransformDirection(world)
}

// MaxScale returns the largest absolute scale axis. Callers deriving a world
// brush radius from a local measurement multiply by it.
func (t *TRS) MaxScale() float32 {
	return max(abs(t.scale.X), abs(t.scale.Y), abs(t.scale.Z))
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
