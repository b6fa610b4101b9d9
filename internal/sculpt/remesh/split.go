// Package remesh keeps triangle size bounded under deformation by splitting
// long edges and relaxing the result with Laplacian smoothing.
package remesh

import (
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// Buffers are mutable working copies of mesh geometry. UVs are either empty
// or index-aligned with Positions.
type Buffers struct {
	Positions []math.Vec3
	UVs       []math.Vec2
	Indices   []uint32
}

// NewBuffers copies the geometry of m.
func NewBuffers(m *mesh.Mesh) *Buffers {
	b := &Buffers{
		Positions: append([]math.Vec3(nil), m.Positions...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	if len(m.UVs) == len(m.Positions) {
		b.UVs = append([]math.Vec2(nil), m.UVs...)
	}
	return b
}

// TriangleCount returns the number of triangles in the buffers.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// edgeKey is an unordered vertex pair, stored low index first.
type edgeKey struct {
	lo, hi uint32
}

func makeEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// SplitLongEdges bisects the longest edge of every triangle whose longest
// world-space edge exceeds maxEdge. The split triangle keeps its slot and its
// sibling is appended; both are queued for the next pass, so at most
// maxPasses rounds of splitting happen. Triangles sharing an edge reuse the
// same midpoint vertex within one call. Stops after budget splits and
// returns the number of splits performed.
func SplitLongEdges(buf *Buffers, xf xform.Transform, maxEdge float32, budget, maxPasses int) int {
	if maxEdge <= 0 || budget <= 0 || len(buf.Indices) < 3 {
		return 0
	}
	if xf == nil {
		xf = xform.Identity()
	}
	maxPasses = max(maxPasses, 1)
	limitSq := maxEdge * maxEdge
	withUVs := len(buf.UVs) == len(buf.Positions)

	world := make([]math.Vec3, len(buf.Positions), len(buf.Positions)+budget)
	for i, p := range buf.Positions {
		world[i] = xf.TransformPoint(p)
	}

	midpoints := make(map[edgeKey]uint32)
	midpoint := func(a, b uint32) uint32 {
		key := makeEdgeKey(a, b)
		if idx, ok := midpoints[key]; ok {
			return idx
		}
		// (a+b)/2 is symmetric in a and b, so seam duplicates of one edge
		// get bit-identical midpoints whichever way round they are visited.
		idx := uint32(len(buf.Positions))
		buf.Positions = append(buf.Positions, buf.Positions[a].Add(buf.Positions[b]).Scale(0.5))
		world = append(world, world[a].Add(world[b]).Scale(0.5))
		if withUVs {
			buf.UVs = append(buf.UVs, buf.UVs[a].Add(buf.UVs[b]).Scale(0.5))
		}
		midpoints[key] = idx
		return idx
	}

	pending := make([]int, buf.TriangleCount())
	for i := range pending {
		pending[i] = i
	}

	splits := 0
	for pass := 0; pass < maxPasses && len(pending) > 0; pass++ {
		var next []int
		for _, tri := range pending {
			if splits >= budget {
				return splits
			}
			corners := [3]uint32{buf.Indices[tri*3], buf.Indices[tri*3+1], buf.Indices[tri*3+2]}

			longest := -1
			var longestSq float32
			for k := 0; k < 3; k++ {
				l := world[corners[k]].DistanceSq(world[corners[(k+1)%3]])
				if l > longestSq {
					longestSq = l
					longest = k
				}
			}
			if longest < 0 || longestSq <= limitSq {
				continue
			}

			// Rotating the corners keeps the winding.
			a := corners[longest]
			b := corners[(longest+1)%3]
			c := corners[(longest+2)%3]
			mid := midpoint(a, b)

			buf.Indices[tri*3] = a
			buf.Indices[tri*3+1] = mid
			buf.Indices[tri*3+2] = c
			sibling := buf.TriangleCount()
			buf.Indices = append(buf.Indices, mid, b, c)

			splits++
			next = append(next, tri, sibling)
		}
		pending = next
	}
	return splits
}
