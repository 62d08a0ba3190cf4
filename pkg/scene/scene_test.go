package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/material"
)

func cube() []core.Vec3 {
	return []core.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
}

func cubeScene() *Scene {
	mat := material.NewAssimpMaterial(core.Vec3{X: 1, Y: 1, Z: 1}, 1)
	var verts []Vertex
	for _, p := range cube() {
		verts = append(verts, Vertex{Position: p})
	}
	indices := []uint32{
		0, 1, 2, 0, 2, 3, // front
		4, 6, 5, 4, 7, 6, // back
	}
	return &Scene{
		Submeshes: []Submesh{{Vertices: verts, Indices: indices, MaterialID: 0}},
		Materials: []material.Material{mat},
		Sky:       NewConstantSky(core.Vec3{}),
	}
}

func TestValidate_AcceptsWellFormedScene(t *testing.T) {
	assert.NoError(t, cubeScene().Validate())
}

func TestValidate_RejectsNonTripleIndexCount(t *testing.T) {
	sc := cubeScene()
	sc.Submeshes[0].Indices = sc.Submeshes[0].Indices[:5]
	err := sc.Validate()
	require.Error(t, err)
	var consistency *ConsistencyError
	assert.ErrorAs(t, err, &consistency)
}

func TestValidate_RejectsOutOfRangeIndex(t *testing.T) {
	sc := cubeScene()
	sc.Submeshes[0].Indices[0] = uint32(len(sc.Submeshes[0].Vertices) + 1)
	assert.Error(t, sc.Validate())
}

func TestValidate_RejectsOutOfRangeMaterialID(t *testing.T) {
	sc := cubeScene()
	sc.Submeshes[0].MaterialID = 7
	assert.Error(t, sc.Validate())
}

func TestValidate_RejectsEmptyScene(t *testing.T) {
	sc := &Scene{Materials: []material.Material{material.NewAssimpMaterial(core.Vec3{}, 1)}}
	assert.Error(t, sc.Validate())
}

func TestComputeAABB_TightlyBoundsAllVertices(t *testing.T) {
	sc := cubeScene()
	sc.ComputeAABB()
	assert.Equal(t, core.Vec3{X: -1, Y: -1, Z: -1}, sc.AABB.Lower)
	assert.Equal(t, core.Vec3{X: 1, Y: 1, Z: 1}, sc.AABB.Upper)
}

func TestTriangles_EnumeratesEveryTriangleOnce(t *testing.T) {
	sc := cubeScene()
	tris := sc.Triangles()
	assert.Len(t, tris, sc.Submeshes[0].TriangleCount())
	assert.Equal(t, TriangleID{Submesh: 0, I0: 0, I1: 1, I2: 2}, tris[0])
}

func TestVerticesAndPositions_MatchSubmeshBuffers(t *testing.T) {
	sc := cubeScene()
	tri := TriangleID{Submesh: 0, I0: 0, I1: 1, I2: 2}
	v0, v1, v2 := sc.Vertices(tri)
	assert.Equal(t, sc.Submeshes[0].Vertices[0], v0)
	assert.Equal(t, sc.Submeshes[0].Vertices[1], v1)
	assert.Equal(t, sc.Submeshes[0].Vertices[2], v2)

	p0, p1, p2 := sc.Positions(tri)
	assert.Equal(t, v0.Position, p0)
	assert.Equal(t, v1.Position, p1)
	assert.Equal(t, v2.Position, p2)
}

func TestMaterial_ResolvesThroughSubmeshMaterialID(t *testing.T) {
	sc := cubeScene()
	tri := TriangleID{Submesh: 0, I0: 0, I1: 1, I2: 2}
	assert.Equal(t, sc.Materials[0], sc.Material(tri))
}

func TestBoundingBox_IsTightAroundOneTriangle(t *testing.T) {
	sc := cubeScene()
	tri := TriangleID{Submesh: 0, I0: 0, I1: 1, I2: 2}
	box := sc.BoundingBox(tri)
	v0, v1, v2 := sc.Positions(tri)
	for _, p := range []core.Vec3{v0, v1, v2} {
		assert.True(t, p.X >= box.Lower.X-1e-12 && p.X <= box.Upper.X+1e-12)
		assert.True(t, p.Y >= box.Lower.Y-1e-12 && p.Y <= box.Upper.Y+1e-12)
		assert.True(t, p.Z >= box.Lower.Z-1e-12 && p.Z <= box.Upper.Z+1e-12)
	}
}

func TestConstantSky_SampleIsDirectionIndependent(t *testing.T) {
	sky := NewConstantSky(core.Vec3{X: 0.1, Y: 0.2, Z: 0.3})
	a := sky.Sample(core.Vec3{X: 1, Y: 0, Z: 0})
	b := sky.Sample(core.Vec3{X: 0, Y: -1, Z: 0})
	assert.Equal(t, a, b)
}
