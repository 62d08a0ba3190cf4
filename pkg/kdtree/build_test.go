package kdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/material"
	"github.com/felsrender/pathtracer/pkg/scene"
)

// gridScene builds n unit-ish triangles laid out along the X axis, far enough apart to force
// several SAH splits under a small leaf cap.
func gridScene(t *testing.T, n int) *scene.Scene {
	t.Helper()

	mat := material.NewAssimpMaterial(core.Vec3{X: 0.8, Y: 0.8, Z: 0.8}, 1)
	var verts []scene.Vertex
	var indices []uint32
	for i := 0; i < n; i++ {
		x := float64(i) * 10
		base := uint32(len(verts))
		verts = append(verts,
			scene.Vertex{Position: core.Vec3{X: x, Y: 0, Z: 0}},
			scene.Vertex{Position: core.Vec3{X: x + 1, Y: 0, Z: 0}},
			scene.Vertex{Position: core.Vec3{X: x, Y: 1, Z: 0}},
		)
		indices = append(indices, base, base+1, base+2)
	}

	sc := &scene.Scene{
		Submeshes: []scene.Submesh{{Vertices: verts, Indices: indices, MaterialID: 0}},
		Materials: []material.Material{mat},
		Sky:       scene.NewConstantSky(core.Vec3{}),
	}
	return sc
}

func TestBuild_CoversEveryTriangleInSomeLeaf(t *testing.T) {
	sc := gridScene(t, 40)
	tree, err := Build(sc, Config{MaxDepth: 16, MaxTrianglesInLeaf: 2, SAHResolution: 8}, nil)
	require.NoError(t, err)

	seen := make(map[scene.TriangleID]int)
	for _, n := range tree.nodes {
		if !n.isLeaf() {
			continue
		}
		for i := int32(0); i < n.count; i++ {
			seen[tree.triIndex[n.firstIndex+i]]++
		}
	}

	for _, id := range sc.Triangles() {
		assert.GreaterOrEqual(t, seen[id], 1, "triangle %+v missing from every leaf", id)
	}
}

func TestBuild_RespectsMaxDepth(t *testing.T) {
	sc := gridScene(t, 200)
	tree, err := Build(sc, Config{MaxDepth: 4, MaxTrianglesInLeaf: 1, SAHResolution: 8}, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, tree.Stats.MaxLeafDepth, 4)
}

func TestBuild_SingleLeafWhenUnderCap(t *testing.T) {
	sc := gridScene(t, 3)
	tree, err := Build(sc, Config{MaxDepth: 16, MaxTrianglesInLeaf: 8, SAHResolution: 8}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Stats.LeafCount)
}

func TestBuild_RejectsInconsistentScene(t *testing.T) {
	mat := material.NewAssimpMaterial(core.Vec3{X: 1, Y: 1, Z: 1}, 1)
	sc := &scene.Scene{
		Submeshes: []scene.Submesh{{Vertices: nil, Indices: []uint32{0, 1}, MaterialID: 0}},
		Materials: []material.Material{mat},
	}
	_, err := Build(sc, DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestChooseSplit_FallsBackToMidSplitWhenResolutionDisabled(t *testing.T) {
	sc := gridScene(t, 10)
	tree := &KDTree{sc: sc, cfg: Config{}}
	tris := sc.Triangles()

	pivot, _ := tree.chooseSplit(tris, 0, 0)
	assert.Greater(t, pivot, 0)
	assert.Less(t, pivot, len(tris))
}

func TestChooseSplit_DegenerateExtentFallsBackToMidSplit(t *testing.T) {
	// All triangles share the same X extent: chooseSplit must not divide by zero.
	mat := material.NewAssimpMaterial(core.Vec3{X: 1, Y: 1, Z: 1}, 1)
	var verts []scene.Vertex
	var indices []uint32
	for i := 0; i < 6; i++ {
		base := uint32(len(verts))
		y := float64(i)
		verts = append(verts,
			scene.Vertex{Position: core.Vec3{X: 0, Y: y, Z: 0}},
			scene.Vertex{Position: core.Vec3{X: 0, Y: y, Z: 1}},
			scene.Vertex{Position: core.Vec3{X: 0, Y: y + 1, Z: 0}},
		)
		indices = append(indices, base, base+1, base+2)
	}
	sc := &scene.Scene{
		Submeshes: []scene.Submesh{{Vertices: verts, Indices: indices, MaterialID: 0}},
		Materials: []material.Material{mat},
	}

	tree := &KDTree{sc: sc}
	tris := sc.Triangles()
	pivot, _ := tree.chooseSplit(tris, 0, 8)
	assert.Greater(t, pivot, 0)
	assert.Less(t, pivot, len(tris))
}
