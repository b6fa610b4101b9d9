// Package mesh holds the authoritative triangle mesh state edited by the
// sculpt tools, plus normal, tangent and bounds recomputation.
package mesh

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// Mesh validation errors.
var (
	ErrIndexCount      = errors.New("index count is not a multiple of 3")
	ErrIndexOutOfRange = errors.New("triangle index out of range")
	ErrNormalCount     = errors.New("normal count does not match vertex count")
	ErrUVCount         = errors.New("uv count does not match vertex count")
)

// Bounds is an axis-aligned bounding box in local space.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh is an indexed triangle mesh. Positions, Normals and (when present) UVs
// and Tangents are index-aligned.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Tangents  []math.Vec4
	Indices   []uint32
	Bounds    Bounds

	// Readable mirrors an import-time CPU access flag. The remesher refuses
	// to touch meshes that are not readable.
	Readable bool
}

// New creates a readable mesh from positions and triangle indices and
// computes its normals and bounds.
func New(name string, positions []math.Vec3, indices []uint32) *Mesh {
	m := &Mesh{
		Name:      name,
		Positions: positions,
		Indices:   indices,
		Readable:  true,
	}
	m.RecalculateNormals()
	m.RecalculateBounds()
	return m
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the vertex indices of triangle t.
func (m *Mesh) Triangle(t int) (a, b, c uint32) {
	return m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
}

// HasUVs reports whether texture coordinates are present.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) > 0
}

// Validate checks the structural invariants of the mesh.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, len(m.Indices))
	}
	n := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexOutOfRange, idx, i, n)
		}
	}
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals, %d vertices", ErrNormalCount, len(m.Normals), n)
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("%w: %d uvs, %d vertices", ErrUVCount, len(m.UVs), n)
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{}
	if err := copier.CopyWithOption(out, m, copier.Option{DeepCopy: true}); err != nil {
		// Fall back to a manual copy; Mesh only holds slices of plain values.
		*out = *m
		out.Positions = append([]math.Vec3(nil), m.Positions...)
		out.Normals = append([]math.Vec3(nil), m.Normals...)
		out.UVs = append([]math.Vec2(nil), m.UVs...)
		out.Tangents = append([]math.Vec4(nil), m.Tangents...)
		out.Indices = append([]uint32(nil), m.Indices...)
	}
	return out
}

// Stats summarizes the mesh for diagnostics.
type Stats struct {
	Vertices  int
	Triangles int
	Normals   int
	MinEdge   float32
	MaxEdge   float32
	MeanEdge  float32
}

// ComputeStats returns vertex/triangle counts and local-space edge length statistics.
func (m *Mesh) ComputeStats() Stats {
	s := Stats{
		Vertices:  len(m.Positions),
		Triangles: m.TriangleCount(),
		Normals:   len(m.Normals),
	}
	var sum float32
	var count int
	for t := 0; t < s.Triangles; t++ {
		a, b, c := m.Triangle(t)
		for _, e := range [3][2]uint32{{a, b}, {b, c}, {c, a}} {
			l := m.Positions[e[0]].Distance(m.Positions[e[1]])
			if count == 0 || l < s.MinEdge {
				s.MinEdge = l
			}
			if l > s.MaxEdge {
				s.MaxEdge = l
			}
			sum += l
			count++
		}
	}
	if count > 0 {
		s.MeanEdge = sum / float32(count)
	}
	return s
}
