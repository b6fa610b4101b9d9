// Package editable owns a live sculpt mesh: brush deformation with seam
// welding, reset to the load-time snapshot, and structural commits from the
// remesher.
package editable

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sculpt/internal/config"
	"github.com/Faultbox/midgard-sculpt/internal/logger"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/collider"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/falloff"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/weld"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// ErrNoMesh is returned when an editable mesh is created without geometry.
var ErrNoMesh = errors.New("no mesh")

// minRadius keeps the normalized distance finite for degenerate stamps.
const minRadius = 1e-6

// Settings controls deformation side effects.
type Settings struct {
	WeldDuplicateVertices  bool
	WeldEpsilon            float32
	RecalcNormals          bool
	RecalcTangents         bool
	RecalcBounds           bool
	ColliderUpdateInterval int // 0 disables automatic collider refresh
}

// SettingsFromConfig extracts deformation settings from the tool config.
func SettingsFromConfig(cfg config.DeformConfig) Settings {
	return Settings{
		WeldDuplicateVertices:  cfg.WeldDuplicateVertices,
		WeldEpsilon:            cfg.WeldEpsilon,
		RecalcNormals:          cfg.RecalcNormals,
		RecalcTangents:         cfg.RecalcTangents,
		RecalcBounds:           cfg.RecalcBounds,
		ColliderUpdateInterval: cfg.ColliderUpdateInterval,
	}
}

// Counts reports mesh sizes for diagnostics.
type Counts struct {
	Vertices  int
	Triangles int
	Normals   int
}

// snapshot is the load-time state restored by ResetMesh.
type snapshot struct {
	positions []math.Vec3
	uvs       []math.Vec2
	indices   []uint32
}

// Mesh is a mesh under edit. It is not safe for concurrent use; callers
// serialize access (see the session package).
type Mesh struct {
	mesh     *mesh.Mesh
	xf       xform.Transform
	curve    falloff.Curve
	settings Settings

	weld     *weld.Groups // nil when stale or welding is off
	singles  *weld.Groups
	base     *snapshot
	collider *collider.Collider

	topologyChanged bool
	deformCount     int
	revision        uint64
	log             *zap.Logger
}

// New wraps m for editing, capturing its positions and topology as the reset
// snapshot. A nil transform means identity and a nil curve means
// falloff.Smooth.
func New(m *mesh.Mesh, xf xform.Transform, curve falloff.Curve, settings Settings) (*Mesh, error) {
	if m == nil || m.VertexCount() == 0 {
		return nil, ErrNoMesh
	}
	if len(m.Normals) != len(m.Positions) {
		m.RecalculateNormals()
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("editable mesh %q: %w", m.Name, err)
	}
	if xf == nil {
		xf = xform.Identity()
	}
	if curve == nil {
		curve = falloff.Smooth
	}

	e := &Mesh{
		mesh:     m,
		xf:       xf,
		curve:    curve,
		settings: settings,
		collider: collider.New(),
		base: &snapshot{
			positions: append([]math.Vec3(nil), m.Positions...),
			uvs:       append([]math.Vec2(nil), m.UVs...),
			indices:   append([]uint32(nil), m.Indices...),
		},
		log: logger.Named("editable"),
	}
	if settings.WeldDuplicateVertices {
		e.weldGroups()
	}
	e.collider.Rebuild(m, xf)

	e.log.Debug("editable mesh ready",
		zap.String("name", m.Name),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Bool("weld", settings.WeldDuplicateVertices))
	return e, nil
}

// Mesh returns the live mesh. Callers must not keep references to its slices
// across edits.
func (e *Mesh) Mesh() *mesh.Mesh { return e.mesh }

// Transform returns the local-to-world transform.
func (e *Mesh) Transform() xform.Transform { return e.xf }

// Collider returns the derived collision snapshot.
func (e *Mesh) Collider() *collider.Collider { return e.collider }

// Settings returns the current deformation settings.
func (e *Mesh) Settings() Settings { return e.settings }

// Revision increases on every change to positions or topology. Renderers
// compare it to decide when to re-upload buffers.
func (e *Mesh) Revision() uint64 { return e.revision }

// Counts returns the current vertex, triangle and normal counts.
func (e *Mesh) Counts() Counts {
	return Counts{
		Vertices:  e.mesh.VertexCount(),
		Triangles: e.mesh.TriangleCount(),
		Normals:   len(e.mesh.Normals),
	}
}

// SetTransform replaces the local-to-world transform and marks the collider stale.
func (e *Mesh) SetTransform(xf xform.Transform) {
	if xf == nil {
		xf = xform.Identity()
	}
	e.xf = xf
	e.collider.MarkDirty()
}

// SetFalloff replaces the brush falloff curve. nil selects falloff.Smooth.
func (e *Mesh) SetFalloff(curve falloff.Curve) {
	if curve == nil {
		curve = falloff.Smooth
	}
	e.curve = curve
}

// UpdateSettings applies new settings. Changing the weld mode or tolerance
// drops the weld partition so the next stamp rebuilds it.
func (e *Mesh) UpdateSettings(s Settings) {
	if s.WeldDuplicateVertices != e.settings.WeldDuplicateVertices || s.WeldEpsilon != e.settings.WeldEpsilon {
		e.weld = nil
	}
	e.settings = s
}

// WeldGroups returns the weld partition, rebuilding it if the vertex count
// changed since it was built. Returns nil when welding is off.
func (e *Mesh) WeldGroups() *weld.Groups {
	if !e.settings.WeldDuplicateVertices {
		return nil
	}
	return e.weldGroups()
}

func (e *Mesh) weldGroups() *weld.Groups {
	if !e.weld.Valid(e.mesh.VertexCount()) {
		e.weld = weld.Build(e.mesh.Positions, e.settings.WeldEpsilon)
		e.log.Debug("weld groups built",
			zap.Int("groups", e.weld.Len()),
			zap.Int("duplicates", e.weld.Duplicates()))
	}
	return e.weld
}

// deformGroups returns the units a stamp moves: weld groups when welding is
// on, otherwise one group per vertex.
func (e *Mesh) deformGroups() *weld.Groups {
	if groups := e.WeldGroups(); groups != nil {
		return groups
	}
	if n := e.mesh.VertexCount(); !e.singles.Valid(n) {
		e.singles = weld.Singletons(n)
	}
	return e.singles
}

// Raycast intersects a world-space ray with the collider. The collider may
// lag behind the mesh by up to ColliderUpdateInterval stamps.
func (e *Mesh) Raycast(origin, dir math.Vec3) (collider.Hit, bool) {
	return e.collider.Raycast(origin, dir)
}

// RebuildCollider refreshes the collider from the live mesh.
func (e *Mesh) RebuildCollider() {
	e.collider.Rebuild(e.mesh, e.xf)
	e.deformCount = 0
}

// ApplyStamp applies s with ApplyBrushWorld.
func (e *Mesh) ApplyStamp(s Stamp) bool {
	return e.ApplyBrushWorld(s.Center, s.Radius, s.Strength, s.Mode)
}

// ApplyBrushWorld displaces every vertex, or every weld group when welding is
// on, that lies within radius of center along its world normal, scaled by
// strength and the falloff at its normalized distance. Vertices exactly on
// the radius are included. Weld group members all receive the same local
// offset. Returns whether any vertex moved.
func (e *Mesh) ApplyBrushWorld(center math.Vec3, radius, strength float32, mode BrushMode) bool {
	m := e.mesh
	if m.VertexCount() == 0 {
		return false
	}
	radius = math32.Max(radius, minRadius)
	r2 := radius * radius

	changed := false
	for _, members := range e.deformGroups().All() {
		if e.displace(members, center, radius, r2, strength, mode) {
			changed = true
		}
	}
	if !changed {
		return false
	}

	if e.settings.RecalcNormals {
		m.RecalculateNormals()
	}
	if e.settings.RecalcTangents {
		m.RecalculateTangents()
	}
	if e.settings.RecalcBounds {
		m.RecalculateBounds()
	}
	e.revision++

	e.deformCount++
	if e.settings.ColliderUpdateInterval > 0 && e.deformCount >= e.settings.ColliderUpdateInterval {
		e.RebuildCollider()
	} else {
		e.collider.MarkDirty()
	}
	return true
}

// displace moves one group of coincident vertices. The first member stands
// in for the group's position.
func (e *Mesh) displace(members []int, center math.Vec3, radius, r2, strength float32, mode BrushMode) bool {
	m := e.mesh
	rep := e.xf.TransformPoint(m.Positions[members[0]])
	d2 := rep.DistanceSq(center)
	if d2 > r2 {
		return false
	}
	u := math32.Min(math32.Sqrt(d2)/radius, 1)
	w := e.curve.Evaluate(u)

	var normal math.Vec3
	for _, idx := range members {
		normal = normal.Add(e.xf.TransformDirection(m.Normals[idx]))
	}
	normal = normal.Normalize()

	offset := mode.displacement(normal, strength*w)
	if offset.IsZero() {
		return false
	}
	local := e.xf.InverseTransformDirection(offset)
	for _, idx := range members {
		m.Positions[idx] = m.Positions[idx].Add(local)
	}
	return true
}

// ResetMesh restores the load-time positions, and the load-time topology if
// a commit replaced it, then recomputes normals and bounds and rebuilds the
// collider.
func (e *Mesh) ResetMesh() {
	if e.base == nil {
		return
	}
	m := e.mesh
	if e.topologyChanged || len(m.Positions) != len(e.base.positions) {
		m.Indices = append(m.Indices[:0], e.base.indices...)
		m.UVs = append([]math.Vec2(nil), e.base.uvs...)
		e.topologyChanged = false
		e.weld = nil
	}
	m.Positions = append(m.Positions[:0], e.base.positions...)

	m.RecalculateNormals()
	if e.settings.RecalcTangents || len(m.Tangents) > 0 {
		m.RecalculateTangents()
	}
	m.RecalculateBounds()
	e.revision++
	e.RebuildCollider()

	e.log.Debug("mesh reset", zap.Int("vertices", m.VertexCount()))
}

// CommitTopology replaces the mesh geometry with a restructured version, as
// produced by the remesher. Indices are checked before anything changes.
// Normals and bounds are recomputed, tangents when enabled, the weld
// partition is dropped and the collider is marked stale.
func (e *Mesh) CommitTopology(positions []math.Vec3, uvs []math.Vec2, indices []uint32) error {
	if len(positions) == 0 {
		return ErrNoMesh
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("commit: %w: %d indices", mesh.ErrIndexCount, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("commit: %w: index %d at %d, %d vertices", mesh.ErrIndexOutOfRange, idx, i, len(positions))
		}
	}
	if len(uvs) != 0 && len(uvs) != len(positions) {
		return fmt.Errorf("commit: %w: %d uvs, %d vertices", mesh.ErrUVCount, len(uvs), len(positions))
	}

	m := e.mesh
	m.Positions = positions
	m.UVs = uvs
	m.Indices = indices
	m.RecalculateNormals()
	if e.settings.RecalcTangents || len(m.Tangents) > 0 {
		m.RecalculateTangents()
	}
	m.RecalculateBounds()

	e.topologyChanged = true
	e.weld = nil
	e.revision++
	e.collider.MarkDirty()
	return nil
}
