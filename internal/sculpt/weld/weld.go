// Package weld groups positionally coincident vertices, the duplicates that
// UV and normal seams introduce, so they can be moved as one point.
package weld

import (
	gomath "math"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// DefaultEpsilon is the quantization cell size used when none is given.
const DefaultEpsilon float32 = 1e-5

// Groups is a partition of a mesh's vertex indices into weld groups.
type Groups struct {
	groups      [][]int
	vertexCount int
}

// Build partitions vertex indices by the cell round(pos/eps) they fall in,
// computed in float64 so large coordinates keep distinct cells.
// Vertices straddling a cell boundary can land in different groups; that is
// an accepted approximation. Groups are ordered by their first member and
// members by vertex index. Runs in O(V).
func Build(positions []math.Vec3, eps float32) *Groups {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	step := float64(eps)

	cells := make(map[cell]int, len(positions))
	var groups [][]int
	for i, p := range positions {
		key := cellOf(p, step)
		g, ok := cells[key]
		if !ok {
			g = len(groups)
			cells[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}

	return &Groups{groups: groups, vertexCount: len(positions)}
}

// maxCell bounds quantized coordinates so they convert to int64 exactly.
const maxCell = 1 << 62

// cell is a quantization key. Axes whose quantized value does not fit in
// int64 (or is not finite) are keyed on their exact float bits instead and
// flagged in exact, so such vertices only weld with identical coordinates.
type cell struct {
	x, y, z int64
	exact   uint8
}

func cellOf(p math.Vec3, step float64) cell {
	var c cell
	for axis, v := range [3]float32{p.X, p.Y, p.Z} {
		q := gomath.Round(float64(v) / step)
		var k int64
		if gomath.IsNaN(q) || gomath.Abs(q) >= maxCell {
			k = int64(gomath.Float32bits(v))
			c.exact |= 1 << axis
		} else {
			k = int64(q)
		}
		switch axis {
		case 0:
			c.x = k
		case 1:
			c.y = k
		default:
			c.z = k
		}
	}
	return c
}

// Singletons returns one group per vertex, the layout used when welding is off.
func Singletons(vertexCount int) *Groups {
	groups := make([][]int, vertexCount)
	for i := range groups {
		groups[i] = []int{i}
	}
	return &Groups{groups: groups, vertexCount: vertexCount}
}

// Len returns the number of groups.
func (g *Groups) Len() int {
	return len(g.groups)
}

// Group returns the member indices of group i. The slice must not be modified.
func (g *Groups) Group(i int) []int {
	return g.groups[i]
}

// All returns every group. The slices must not be modified.
func (g *Groups) All() [][]int {
	return g.groups
}

// VertexCount returns the vertex count the partition was built for.
func (g *Groups) VertexCount() int {
	return g.vertexCount
}

// Valid reports whether the partition still covers exactly n vertices.
// A nil partition is never valid.
func (g *Groups) Valid(n int) bool {
	return g != nil && g.vertexCount == n
}

// Duplicates returns how many vertices share a group with an earlier vertex.
func (g *Groups) Duplicates() int {
	return g.vertexCount - len(g.groups)
}
