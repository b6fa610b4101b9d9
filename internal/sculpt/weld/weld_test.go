package weld

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

func TestBuildPartitionsAllVertices(t *testing.T) {
	m := mesh.UVSphere(6, 10)
	g := Build(m.Positions, 1e-4)

	seen := make(map[int]bool)
	for _, group := range g.All() {
		require.NotEmpty(t, group)
		for j, idx := range group {
			assert.False(t, seen[idx], "vertex %d in two groups", idx)
			seen[idx] = true
			if j > 0 {
				assert.Less(t, group[j-1], idx, "members not in index order")
			}
		}
	}
	assert.Len(t, seen, m.VertexCount())
	assert.True(t, g.Valid(m.VertexCount()))
}

func TestBuildMergesSeamAndPoles(t *testing.T) {
	rings, segments := 6, 10
	m := mesh.UVSphere(rings, segments)
	g := Build(m.Positions, 1e-4)

	// One group per interior ring column plus the two poles.
	assert.Equal(t, (rings-1)*segments+2, g.Len())
	assert.Equal(t, m.VertexCount()-g.Len(), g.Duplicates())
}

func TestBuildKeepsDistinctPointsApart(t *testing.T) {
	positions := []math.Vec3{
		{X: 0}, {X: 0.5}, {X: 0}, {X: 0.5000001}, {X: 1},
	}
	g := Build(positions, 1e-3)
	require.Equal(t, 3, g.Len())
	assert.Equal(t, []int{0, 2}, g.Group(0))
	assert.Equal(t, []int{1, 3}, g.Group(1))
	assert.Equal(t, []int{4}, g.Group(2))
}

func TestBuildDefaultEpsilon(t *testing.T) {
	positions := []math.Vec3{{X: 1}, {X: 1 + DefaultEpsilon*0.1}, {X: 1 + DefaultEpsilon*5}}
	g := Build(positions, 0)
	assert.Equal(t, 2, g.Len())
}

func TestSingletons(t *testing.T) {
	g := Singletons(4)
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 0, g.Duplicates())
	assert.Equal(t, []int{3}, g.Group(3))
}

func TestValid(t *testing.T) {
	var nilGroups *Groups
	assert.False(t, nilGroups.Valid(0))

	g := Build([]math.Vec3{{}, {X: 1}}, 0.1)
	assert.True(t, g.Valid(2))
	assert.False(t, g.Valid(3))
}

func TestBuildLargeCoordinatesStayApart(t *testing.T) {
	positions := []math.Vec3{
		{X: 30000, Y: 1, Z: 2},
		{X: 40000, Y: 1, Z: 2},
		{X: -50000, Y: 1, Z: 2},
		{X: 30000, Y: 1, Z: 2},
	}
	g := Build(positions, DefaultEpsilon)

	require.Equal(t, 3, g.Len())
	assert.Equal(t, []int{0, 3}, g.Group(0))
	assert.Equal(t, []int{1}, g.Group(1))
	assert.Equal(t, []int{2}, g.Group(2))
}

func TestBuildHugeAndNonFiniteCoordinates(t *testing.T) {
	inf := float32(gomath.Inf(1))
	positions := []math.Vec3{
		{X: 3e38},
		{X: 2e38},
		{X: 3e38},
		{Y: inf},
		{Y: -inf},
	}
	g := Build(positions, 1e-6)

	require.Equal(t, 4, g.Len())
	assert.Equal(t, []int{0, 2}, g.Group(0))
	assert.Equal(t, []int{1}, g.Group(1))
	assert.Equal(t, []int{3}, g.Group(2))
	assert.Equal(t, []int{4}, g.Group(3))
}
