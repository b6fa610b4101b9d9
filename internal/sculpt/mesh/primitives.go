package mesh

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// Icosphere builds a unit icosphere with shared vertices. Each subdivision
// level splits every triangle into four, reusing edge midpoints, so level 0
// has 12 vertices, level 1 has 42 and level 2 has 162.
func Icosphere(subdivisions int) *Mesh {
	t := (1 + math32.Sqrt(5)) / 2

	positions := []math.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range positions {
		positions[i] = positions[i].Normalize()
	}

	indices := []uint32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for level := 0; level < subdivisions; level++ {
		midpoints := make(map[[2]uint32]uint32)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{min(a, b), max(a, b)}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			idx := uint32(len(positions))
			positions = append(positions, positions[a].Add(positions[b]).Normalize())
			midpoints[key] = idx
			return idx
		}

		next := make([]uint32, 0, len(indices)*4)
		for i := 0; i < len(indices); i += 3 {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				a, ab, ca,
				b, bc, ab,
				c, ca, bc,
				ab, bc, ca,
			)
		}
		indices = next
	}

	return New("Icosphere", positions, indices)
}

// UVSphere builds a unit latitude/longitude sphere with texture coordinates.
// The seam column and the pole rows are duplicated per segment, the way
// imported meshes split vertices along UV seams.
func UVSphere(rings, segments int) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)

	var positions []math.Vec3
	var uvs []math.Vec2
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		theta := v * gomath.Pi
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			phi := u * 2 * gomath.Pi
			p := math.Vec3{
				X: math32.Sin(theta) * math32.Cos(phi),
				Y: math32.Cos(theta),
				Z: -math32.Sin(theta) * math32.Sin(phi),
			}
			if r == 0 || r == rings {
				// Exact poles so every pole duplicate welds together
				p = math.Vec3{Y: math32.Cos(theta)}
			}
			if s == segments {
				// Seam column repeats column zero exactly
				p = positions[len(positions)-segments]
			}
			positions = append(positions, p)
			uvs = append(uvs, math.Vec2{X: u, Y: v})
		}
	}

	stride := uint32(segments + 1)
	var indices []uint32
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			i0 := uint32(r)*stride + uint32(s)
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			if r != 0 {
				indices = append(indices, i0, i2, i1)
			}
			if r != rings-1 {
				indices = append(indices, i1, i2, i3)
			}
		}
	}

	m := New("UVSphere", positions, indices)
	m.UVs = uvs
	return m
}

// Grid builds a flat square patch of n x n quads on the XZ plane, centered on
// the origin, with upward normals and UVs.
func Grid(n int, size float32) *Mesh {
	n = max(n, 1)
	step := size / float32(n)
	half := size / 2

	var positions []math.Vec3
	var uvs []math.Vec2
	for z := 0; z <= n; z++ {
		for x := 0; x <= n; x++ {
			positions = append(positions, math.Vec3{
				X: float32(x)*step - half,
				Z: float32(z)*step - half,
			})
			uvs = append(uvs, math.Vec2{X: float32(x) / float32(n), Y: float32(z) / float32(n)})
		}
	}

	stride := uint32(n + 1)
	var indices []uint32
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			i0 := uint32(z)*stride + uint32(x)
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			indices = append(indices, i0, i2, i1, i1, i2, i3)
		}
	}

	m := New("Grid", positions, indices)
	m.UVs = uvs
	return m
}

// Triangle builds a single-triangle mesh.
func Triangle(a, b, c math.Vec3) *Mesh {
	return New("Triangle", []math.Vec3{a, b, c}, []uint32{0, 1, 2})
}
