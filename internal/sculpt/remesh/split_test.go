package remesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/xform"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

func singleTriangle() *mesh.Mesh {
	return mesh.Triangle(math.Vec3{}, math.Vec3{X: 0.2}, math.Vec3{X: 0.1, Y: 0.05})
}

func TestSplitSingleTriangleOnce(t *testing.T) {
	buf := NewBuffers(singleTriangle())
	splits := SplitLongEdges(buf, xform.Identity(), 0.15, 10, 4)

	assert.Equal(t, 1, splits)
	assert.Equal(t, 2, buf.TriangleCount())
	require.Len(t, buf.Positions, 4)
	assert.InDelta(t, 0, buf.Positions[3].Distance(math.Vec3{X: 0.1}), 1e-7)
}

// With a 0.05 limit the 0.2 edge needs more than the single bisection one
// might expect: each pass bisects the longest edge of every pending triangle,
// so pass k has up to 2^(k-1) candidates and the passes run 1, 2, 4 and then
// 3 splits before the budget of 10 is spent. One midpoint is shared between
// siblings, hence 9 new vertices for 10 splits.
func TestSplitSingleTriangleFineThreshold(t *testing.T) {
	tests := []struct {
		passes    int
		splits    int
		triangles int
		vertices  int
	}{
		{1, 1, 2, 4},
		{2, 3, 4, 6},
		{3, 7, 8, 10},
		{4, 10, 11, 12},
		{8, 10, 11, 12},
	}
	for _, tt := range tests {
		buf := NewBuffers(singleTriangle())
		splits := SplitLongEdges(buf, xform.Identity(), 0.05, 10, tt.passes)

		assert.Equal(t, tt.splits, splits, "passes %d splits", tt.passes)
		assert.Equal(t, tt.triangles, buf.TriangleCount(), "passes %d triangles", tt.passes)
		assert.Len(t, buf.Positions, tt.vertices, "passes %d vertices", tt.passes)
		for i, idx := range buf.Indices {
			assert.Less(t, int(idx), len(buf.Positions), "passes %d index %d", tt.passes, i)
		}
	}
}

func TestSplitSharedEdgeReusesMidpoint(t *testing.T) {
	positions := []math.Vec3{{}, {X: 1}, {X: 1, Z: 1}, {Z: 1}}
	buf := &Buffers{Positions: positions, Indices: []uint32{0, 1, 2, 0, 2, 3}}

	splits := SplitLongEdges(buf, nil, 1.2, 10, 1)

	require.Equal(t, 2, splits)
	require.Len(t, buf.Positions, 5, "both triangles share one midpoint")
	assert.Equal(t, math.Vec3{X: 0.5, Z: 0.5}, buf.Positions[4])
	for tri := 0; tri < buf.TriangleCount(); tri++ {
		corners := buf.Indices[tri*3 : tri*3+3]
		assert.Contains(t, corners, uint32(4), "triangle %d", tri)
	}
}

func TestSplitNeverDuplicatesMidpoints(t *testing.T) {
	m := mesh.Icosphere(1)
	buf := NewBuffers(m)
	splits := SplitLongEdges(buf, nil, 0.3, 1000, 3)
	require.Positive(t, splits)

	seen := make(map[math.Vec3]int)
	for i, p := range buf.Positions {
		if prev, ok := seen[p]; ok {
			t.Fatalf("vertices %d and %d coincide at %v", prev, i, p)
		}
		seen[p] = i
	}
}

func TestSplitRespectsBudget(t *testing.T) {
	buf := NewBuffers(mesh.Icosphere(2))
	splits := SplitLongEdges(buf, nil, 0.01, 17, 10)

	assert.Equal(t, 17, splits)
	assert.Equal(t, 320+17, buf.TriangleCount())
}

func TestSplitKeepsWinding(t *testing.T) {
	buf := NewBuffers(mesh.Icosphere(1))
	require.Positive(t, SplitLongEdges(buf, nil, 0.2, 500, 4))

	for tri := 0; tri < buf.TriangleCount(); tri++ {
		a := buf.Positions[buf.Indices[tri*3]]
		b := buf.Positions[buf.Indices[tri*3+1]]
		c := buf.Positions[buf.Indices[tri*3+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c)
		assert.Greater(t, n.Dot(centroid), float32(0), "triangle %d flipped", tri)
	}
}

func TestSplitInterpolatesUVs(t *testing.T) {
	buf := NewBuffers(mesh.Grid(1, 1))
	require.Len(t, buf.UVs, 4)

	splits := SplitLongEdges(buf, nil, 1.2, 10, 1)
	require.Equal(t, 2, splits)
	require.Len(t, buf.UVs, len(buf.Positions))
	assert.Equal(t, math.Vec2{X: 0.5, Y: 0.5}, buf.UVs[4])
}

func TestSplitMeasuresWorldSpace(t *testing.T) {
	small := mesh.Triangle(math.Vec3{}, math.Vec3{X: 0.02}, math.Vec3{X: 0.01, Y: 0.005})

	buf := NewBuffers(small)
	assert.Zero(t, SplitLongEdges(buf, nil, 0.15, 10, 1))

	scaled := xform.New(math.Vec3{}, math.QuatIdentity(), math.Vec3{X: 10, Y: 10, Z: 10})
	buf = NewBuffers(small)
	assert.Equal(t, 1, SplitLongEdges(buf, scaled, 0.15, 10, 1))
}

func TestSplitDisabled(t *testing.T) {
	buf := NewBuffers(singleTriangle())
	assert.Zero(t, SplitLongEdges(buf, nil, 0, 10, 1))
	assert.Zero(t, SplitLongEdges(buf, nil, 0.05, 0, 1))
	assert.Equal(t, 1, buf.TriangleCount())
}
