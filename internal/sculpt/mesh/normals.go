package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// RecalculateNormals rebuilds per-vertex normals by accumulating area-weighted
// face normals. Vertices duplicated along a seam each keep their own normal;
// welding is the deformation engine's job.
func (m *Mesh) RecalculateNormals() {
	if cap(m.Normals) >= len(m.Positions) {
		m.Normals = m.Normals[:len(m.Positions)]
		clear(m.Normals)
	} else {
		m.Normals = make([]math.Vec3, len(m.Positions))
	}

	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]
		// Unnormalized cross product: length is twice the triangle area.
		fn := p1.Sub(p0).Cross(p2.Sub(p0))
		m.Normals[a] = m.Normals[a].Add(fn)
		m.Normals[b] = m.Normals[b].Add(fn)
		m.Normals[c] = m.Normals[c].Add(fn)
	}

	for i, n := range m.Normals {
		if n.IsZero() {
			// Unreferenced or fully degenerate vertex
			m.Normals[i] = math.Vec3{X: 0, Y: 1, Z: 0}
			continue
		}
		m.Normals[i] = n.Normalize()
	}
}

// RecalculateTangents rebuilds per-vertex tangents from UV gradients. W holds
// the bitangent sign. Without UVs an arbitrary vector perpendicular to the
// normal is used. Normals must be current.
func (m *Mesh) RecalculateTangents() {
	n := len(m.Positions)
	tan := make([]math.Vec3, n)
	bitan := make([]math.Vec3, n)

	if m.HasUVs() {
		for t := 0; t < m.TriangleCount(); t++ {
			a, b, c := m.Triangle(t)
			e1 := m.Positions[b].Sub(m.Positions[a])
			e2 := m.Positions[c].Sub(m.Positions[a])
			d1 := m.UVs[b].Sub(m.UVs[a])
			d2 := m.UVs[c].Sub(m.UVs[a])

			det := d1.X*d2.Y - d2.X*d1.Y
			if math32.Abs(det) < 1e-12 {
				continue
			}
			r := 1 / det
			sdir := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
			tdir := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)
			for _, v := range [3]uint32{a, b, c} {
				tan[v] = tan[v].Add(sdir)
				bitan[v] = bitan[v].Add(tdir)
			}
		}
	}

	m.Tangents = make([]math.Vec4, n)
	for i := 0; i < n; i++ {
		normal := m.Normals[i]
		// Gram-Schmidt orthogonalize
		t := tan[i].Sub(normal.Scale(normal.Dot(tan[i]))).Normalize()
		if t.IsZero() {
			t = perpendicular(normal)
		}
		w := float32(1)
		if normal.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		m.Tangents[i] = math.Vec4{t.X, t.Y, t.Z, w}
	}
}

// perpendicular returns a unit vector orthogonal to n.
func perpendicular(n math.Vec3) math.Vec3 {
	axis := math.Vec3{X: 1}
	if math32.Abs(n.X) > 0.9 {
		axis = math.Vec3{Y: 1}
	}
	return axis.Sub(n.Scale(n.Dot(axis))).Normalize()
}

// RecalculateBounds recomputes the local-space bounding box.
func (m *Mesh) RecalculateBounds() {
	if len(m.Positions) == 0 {
		m.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	m.Bounds = b
}
