package remesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-sculpt/internal/sculpt/editable"
	"github.com/Faultbox/midgard-sculpt/internal/sculpt/mesh"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

func newTarget(t *testing.T, m *mesh.Mesh) *editable.Mesh {
	t.Helper()
	e, err := editable.New(m, nil, nil, editable.Settings{
		WeldDuplicateVertices:  true,
		WeldEpsilon:            1e-5,
		RecalcNormals:          true,
		RecalcBounds:           true,
		ColliderUpdateInterval: 5,
	})
	require.NoError(t, err)
	return e
}

func testSettings() Settings {
	return Settings{
		MaxEdgeLength:   0.15,
		SplitsPerStep:   10,
		MaxPasses:       4,
		AutoRun:         true,
		IntervalSeconds: 0.5,
		RebuildCollider: true,
	}
}

func TestStepSplitsSingleTriangle(t *testing.T) {
	target := newTarget(t, singleTriangle())
	r := New(target, testSettings())

	var transitions []State
	r.Observe(func(from, to State) { transitions = append(transitions, to) })

	res, err := r.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Splits)
	assert.True(t, res.Committed)
	assert.Equal(t, editable.Counts{Vertices: 4, Triangles: 2, Normals: 4}, target.Counts())
	assert.Equal(t, []State{Scanning, Splitting, Smoothing, Committed, Idle}, transitions)
	assert.Equal(t, Idle, r.State())
	assert.False(t, target.Collider().Dirty())
	assert.Equal(t, 2, target.Collider().TriangleCount())

	stats := r.Stats()
	assert.Equal(t, 1, stats.Steps)
	assert.Equal(t, 1, stats.TotalSplits)
}

func TestStepSplitsSingleTriangleToBudget(t *testing.T) {
	target := newTarget(t, singleTriangle())
	s := testSettings()
	s.MaxEdgeLength = 0.05
	r := New(target, s)

	res, err := r.Step()
	require.NoError(t, err)
	assert.Equal(t, 10, res.Splits)
	assert.False(t, res.Smoothed)
	assert.True(t, res.Committed)
	assert.Equal(t, 12, res.Vertices)
	assert.Equal(t, 11, res.Triangles)
	assert.Equal(t, editable.Counts{Vertices: 12, Triangles: 11, Normals: 12}, target.Counts())
}

func TestStepSmoothsWithoutLongEdges(t *testing.T) {
	m := mesh.Grid(4, 1)
	m.Positions[6].Y = 0.3
	target := newTarget(t, m)
	s := testSettings()
	s.MaxEdgeLength = 10
	s.SmoothIterations = 1
	s.SmoothLambda = 1
	r := New(target, s)
	rev := target.Revision()

	var transitions []State
	r.Observe(func(from, to State) { transitions = append(transitions, to) })

	res, err := r.Step()
	require.NoError(t, err)
	assert.Zero(t, res.Splits)
	assert.True(t, res.Smoothed)
	assert.True(t, res.Committed)
	assert.Greater(t, target.Revision(), rev)
	assert.Equal(t, []State{Scanning, Splitting, Smoothing, Committed, Idle}, transitions)

	// Every neighbor of vertex 6 lies flat, so lambda 1 puts it on the plane.
	assert.InDelta(t, 0, target.Mesh().Positions[6].Y, 1e-6)
	assert.InDelta(t, -0.25, target.Mesh().Positions[6].X, 1e-6)
	assert.Equal(t, 25, target.Counts().Vertices)
}

func TestStepWithNothingToDoCommitsNothing(t *testing.T) {
	target := newTarget(t, mesh.Icosphere(1))
	s := testSettings()
	s.MaxEdgeLength = 5
	s.SmoothIterations = 0
	r := New(target, s)
	rev := target.Revision()

	res, err := r.Step()
	require.NoError(t, err)
	assert.Zero(t, res.Splits)
	assert.False(t, res.Smoothed)
	assert.False(t, res.Committed)
	assert.Equal(t, rev, target.Revision())
}

func TestStepKeepsWeldedSeamsTogether(t *testing.T) {
	const stride = 11 // UVSphere(6, 10) row length
	s := testSettings()
	s.MaxEdgeLength = 0.3
	s.SplitsPerStep = 50
	s.SmoothIterations = 2
	s.SmoothLambda = 0.5

	welded := newTarget(t, mesh.UVSphere(6, 10))
	_, err := New(welded, s).Step()
	require.NoError(t, err)
	for r := 1; r < 6; r++ {
		p := welded.Mesh().Positions
		assert.Equal(t, p[r*stride], p[r*stride+10], "ring %d seam", r)
	}

	loose, err := editable.New(mesh.UVSphere(6, 10), nil, nil, editable.Settings{RecalcNormals: true, RecalcBounds: true})
	require.NoError(t, err)
	_, err = New(loose, s).Step()
	require.NoError(t, err)
	p := loose.Mesh().Positions
	assert.NotEqual(t, p[3*stride], p[3*stride+10], "unwelded seam copies smooth independently")
}

func TestStepSmoothsAfterSplitting(t *testing.T) {
	target := newTarget(t, mesh.Icosphere(1))
	s := testSettings()
	s.MaxEdgeLength = 0.3
	s.SplitsPerStep = 1000
	s.SmoothIterations = 1
	s.SmoothLambda = 0.3
	r := New(target, s)

	res, err := r.Step()
	require.NoError(t, err)
	assert.True(t, res.Smoothed)
	require.NoError(t, target.Mesh().Validate())
	assert.Equal(t, res.Vertices, target.WeldGroups().VertexCount())
}

func TestStepSkipsUnreadableMesh(t *testing.T) {
	m := singleTriangle()
	target := newTarget(t, m)
	m.Readable = false
	r := New(target, testSettings())

	before := m.Clone()
	_, err := r.Step()
	assert.ErrorIs(t, err, ErrMeshUnreadable)
	assert.Equal(t, before.Positions, m.Positions)
	assert.Equal(t, before.Indices, m.Indices)
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, 1, r.Stats().Skipped)

	_, err = New(nil, testSettings()).Step()
	assert.ErrorIs(t, err, ErrMeshUnreadable)
}

func TestTickHonorsInterval(t *testing.T) {
	target := newTarget(t, singleTriangle())
	r := New(target, testSettings())

	_, ran, err := r.Tick(0.2)
	require.NoError(t, err)
	assert.False(t, ran)

	res, ran, err := r.Tick(0.3)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, res.Splits)

	_, ran, _ = r.Tick(0.1)
	assert.False(t, ran, "timer restarts after a step")
}

func TestTickWithoutAutoRun(t *testing.T) {
	s := testSettings()
	s.AutoRun = false
	r := New(newTarget(t, singleTriangle()), s)
	for i := 0; i < 10; i++ {
		_, ran, err := r.Tick(1)
		require.NoError(t, err)
		assert.False(t, ran)
	}
	assert.Zero(t, r.Stats().Steps)
}

func TestStepMarksColliderDirtyWhenNotRebuilding(t *testing.T) {
	target := newTarget(t, singleTriangle())
	s := testSettings()
	s.RebuildCollider = false
	r := New(target, s)

	_, err := r.Step()
	require.NoError(t, err)
	assert.True(t, target.Collider().Dirty())
}

func TestResetAfterRemesh(t *testing.T) {
	m := mesh.UVSphere(6, 10)
	target := newTarget(t, m)
	base := append([]math.Vec3(nil), m.Positions...)
	baseIndices := append([]uint32(nil), m.Indices...)

	s := testSettings()
	s.MaxEdgeLength = 0.3
	s.SplitsPerStep = 50
	r := New(target, s)
	res, err := r.Step()
	require.NoError(t, err)
	require.Positive(t, res.Splits)

	target.ApplyBrushWorld(m.Positions[0], 0.5, 0.02, editable.Push)
	target.ResetMesh()

	assert.Equal(t, base, m.Positions)
	assert.Equal(t, baseIndices, m.Indices)
	assert.Len(t, m.UVs, len(base))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "splitting", Splitting.String())
	assert.Equal(t, "State(9)", State(9).String())
}
