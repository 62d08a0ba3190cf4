// Package scene holds the immutable triangle-mesh scene description consumed by the
// kd-tree builder and the path tracer: vertices, submeshes, materials, area lights and the
// sky function. Nothing in this package performs ray intersection.
package scene

import (
	"fmt"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/lights"
	"github.com/felsrender/pathtracer/pkg/material"
)

// Vertex is immutable after scene load.
type Vertex struct {
	Position core.Vec3
	UV       core.Vec2
	Normal   core.Vec3
}

// Submesh is an ordered vertex buffer plus an index buffer naming triangles, all sharing one
// material.
type Submesh struct {
	Vertices   []Vertex
	Indices    []uint32 // len % 3 == 0; triangle k uses Indices[3k:3k+3]
	MaterialID uint32
}

func (s Submesh) TriangleCount() int { return len(s.Indices) / 3 }

// TriangleID names a triangle stably over the Scene's lifetime.
type TriangleID struct {
	Submesh        uint16
	I0, I1, I2     uint32
}

// Sky is a constant background radiance function, sampled by rays that miss all geometry.
type Sky interface {
	Sample(direction core.Vec3) core.Vec3
}

// ConstantSky is the only Sky implementation the core ships: directional/textured skies are a
// Non-goal (spec §4.5).
type ConstantSky struct {
	Radiance core.Vec3
}

func NewConstantSky(radiance core.Vec3) ConstantSky { return ConstantSky{Radiance: radiance} }

func (s ConstantSky) Sample(core.Vec3) core.Vec3 { return s.Radiance }

// Scene is the complete, immutable input to the accelerator and the integrator.
type Scene struct {
	Submeshes  []Submesh
	Materials  []material.Material
	AreaLights []*lights.AreaLight
	Sky        Sky
	AABB       core.AABB
}

// ConsistencyError reports a malformed scene, fatal at build time per spec §7.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string { return "scene: " + e.Reason }

// Validate checks the invariants spec §3/§7 require before a kd-tree can be built: every
// index buffer is a whole number of triangles, every index is in range, and the scene is not
// empty.
func (s *Scene) Validate() error {
	triangleCount := 0
	for i, sm := range s.Submeshes {
		if len(sm.Indices)%3 != 0 {
			return &ConsistencyError{Reason: fmt.Sprintf("submesh %d: index count %d is not a multiple of 3", i, len(sm.Indices))}
		}
		for _, idx := range sm.Indices {
			if int(idx) >= len(sm.Vertices) {
				return &ConsistencyError{Reason: fmt.Sprintf("submesh %d: index %d out of range (have %d vertices)", i, idx, len(sm.Vertices))}
			}
		}
		if int(sm.MaterialID) >= len(s.Materials) {
			return &ConsistencyError{Reason: fmt.Sprintf("submesh %d: material id %d out of range (have %d materials)", i, sm.MaterialID, len(s.Materials))}
		}
		triangleCount += sm.TriangleCount()
	}
	if triangleCount == 0 {
		return &ConsistencyError{Reason: "scene contains no triangles"}
	}
	return nil
}

// ComputeAABB recomputes the tight bounding box over every vertex position and stores it in
// s.AABB. Called once at scene build.
func (s *Scene) ComputeAABB() {
	var pts []core.Vec3
	for _, sm := range s.Submeshes {
		for _, v := range sm.Vertices {
			pts = append(pts, v.Position)
		}
	}
	s.AABB = core.NewAABBFromPoints(pts...)
}

// Triangles enumerates every triangle in the scene, in submesh order. This is the index
// table the kd-tree builder consumes as its initial triangle set.
func (s *Scene) Triangles() []TriangleID {
	var out []TriangleID
	for smIdx, sm := range s.Submeshes {
		for k := 0; k < sm.TriangleCount(); k++ {
			out = append(out, TriangleID{
				Submesh: uint16(smIdx),
				I0:      sm.Indices[3*k+0],
				I1:      sm.Indices[3*k+1],
				I2:      sm.Indices[3*k+2],
			})
		}
	}
	return out
}

// Vertices returns the three vertices of a triangle.
func (s *Scene) Vertices(t TriangleID) (v0, v1, v2 Vertex) {
	sm := &s.Submeshes[t.Submesh]
	return sm.Vertices[t.I0], sm.Vertices[t.I1], sm.Vertices[t.I2]
}

// Material returns the material bound to a triangle's submesh.
func (s *Scene) Material(t TriangleID) material.Material {
	return s.Materials[s.Submeshes[t.Submesh].MaterialID]
}

// Positions returns the three vertex positions of a triangle, the form the kd-tree and the
// Möller–Trumbore test operate on.
func (s *Scene) Positions(t TriangleID) (v0, v1, v2 core.Vec3) {
	a, b, c := s.Vertices(t)
	return a.Position, b.Position, c.Position
}

// BoundingBox returns the tight AABB of one triangle.
func (s *Scene) BoundingBox(t TriangleID) core.AABB {
	v0, v1, v2 := s.Positions(t)
	return core.NewAABBFromPoints(v0, v1, v2)
}
