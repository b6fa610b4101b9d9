package remesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-sculpt/internal/sculpt/weld"
	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

// Adjacency lists the distinct neighbors of every vertex.
type Adjacency [][]uint32

// BuildAdjacency derives vertex neighbors from a triangle list. Repeated
// links are stored once. Indices outside [0, vertexCount) are ignored.
func BuildAdjacency(vertexCount int, indices []uint32) Adjacency {
	adj := make(Adjacency, vertexCount)
	link := func(a, b uint32) {
		if int(a) >= vertexCount || int(b) >= vertexCount || a == b {
			return
		}
		for _, n := range adj[a] {
			if n == b {
				return
			}
		}
		adj[a] = append(adj[a], b)
	}
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		link(a, b)
		link(a, c)
		link(b, a)
		link(b, c)
		link(c, a)
		link(c, b)
	}
	return adj
}

// LaplacianSmooth moves every vertex toward the mean of its neighbors by
// lambda, clamped to [0,1], for the given number of iterations. Each
// iteration computes all new positions before writing any of them. Vertices
// without neighbors stay put. Repeated smoothing shrinks the mesh.
func LaplacianSmooth(positions []math.Vec3, indices []uint32, iterations int, lambda float32) {
	lambda = math32.Max(0, math32.Min(1, lambda))
	if iterations <= 0 || lambda == 0 || len(positions) == 0 {
		return
	}

	adj := BuildAdjacency(len(positions), indices)
	next := make([]math.Vec3, len(positions))
	for it := 0; it < iterations; it++ {
		for v, p := range positions {
			neighbors := adj[v]
			if len(neighbors) == 0 {
				next[v] = p
				continue
			}
			var sum math.Vec3
			for _, n := range neighbors {
				sum = sum.Add(positions[n])
			}
			mean := sum.Scale(1 / float32(len(neighbors)))
			next[v] = p.Lerp(mean, lambda)
		}
		copy(positions, next)
	}
}

// LaplacianSmoothWelded smooths the mesh as if every weld group were a
// single vertex: a group moves toward the mean of the distinct groups
// adjacent to any of its members, and all members receive the same
// position. Seam duplicates therefore stay coincident. Without a partition
// valid for positions it falls back to LaplacianSmooth.
func LaplacianSmoothWelded(positions []math.Vec3, indices []uint32, groups *weld.Groups, iterations int, lambda float32) {
	if !groups.Valid(len(positions)) {
		LaplacianSmooth(positions, indices, iterations, lambda)
		return
	}
	lambda = math32.Max(0, math32.Min(1, lambda))
	if iterations <= 0 || lambda == 0 || len(positions) == 0 {
		return
	}

	owner := make([]int, len(positions))
	for g, members := range groups.All() {
		for _, v := range members {
			owner[v] = g
		}
	}

	// Neighbor groups per group, deduplicated.
	adj := BuildAdjacency(len(positions), indices)
	links := make([][]int, groups.Len())
	for g, members := range groups.All() {
		seen := map[int]bool{g: true}
		for _, v := range members {
			for _, n := range adj[v] {
				if ng := owner[n]; !seen[ng] {
					seen[ng] = true
					links[g] = append(links[g], ng)
				}
			}
		}
	}

	current := make([]math.Vec3, groups.Len())
	for g, members := range groups.All() {
		current[g] = positions[members[0]]
	}
	next := make([]math.Vec3, len(current))
	for it := 0; it < iterations; it++ {
		for g, p := range current {
			if len(links[g]) == 0 {
				next[g] = p
				continue
			}
			var sum math.Vec3
			for _, n := range links[g] {
				sum = sum.Add(current[n])
			}
			next[g] = p.Lerp(sum.Scale(1/float32(len(links[g]))), lambda)
		}
		current, next = next, current
	}

	for g, members := range groups.All() {
		for _, v := range members {
			positions[v] = current[g]
		}
	}
}
