// Package loaders builds a scene.Scene from an on-disk asset, the file-backed counterpart to
// building one in memory for tests.
package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/lights"
	"github.com/felsrender/pathtracer/pkg/material"
	"github.com/felsrender/pathtracer/pkg/scene"
	"github.com/felsrender/pathtracer/pkg/texture"
)

// LoadGLTF opens a .gltf/.glb document and builds a Scene from every mesh primitive it
// contains, applying each node's world transform to its vertex positions/normals. Materials
// map onto the single AssimpMaterial variant (spec §4.3/§9); any primitive whose material has
// a non-zero emissive factor also gets an AreaLight entry per triangle.
func LoadGLTF(path string, parameterFactor float64) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	textures := make([]*texture.Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]
		if img.URI != "" && !img.IsEmbeddedResource() {
			textures[i] = texture.Load(filepath.Join(dir, img.URI))
		} else if img.BufferView != nil {
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err == nil {
				if t, err := texture.DecodeBytes(raw); err == nil {
					textures[i] = t
				}
			}
		}
	}

	materials := make([]material.Material, len(doc.Materials))
	emissiveFlags := make([]bool, len(doc.Materials))
	for i, gm := range doc.Materials {
		diffuse := core.Vec3{X: 1, Y: 1, Z: 1}
		var tex *texture.Texture
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			diffuse = core.Vec3{X: float64(cf[0]), Y: float64(cf[1]), Z: float64(cf[2])}
			if pbr.BaseColorTexture != nil {
				idx := pbr.BaseColorTexture.Index
				if idx < len(textures) {
					tex = textures[idx]
				}
			}
		}

		m := material.NewAssimpMaterial(diffuse, parameterFactor)
		if tex != nil {
			m.WithTexture(tex)
		}

		ef := gm.EmissiveFactorOrDefault()
		emission := core.Vec3{X: float64(ef[0]), Y: float64(ef[1]), Z: float64(ef[2])}
		if emission.MaxComponent() > 0 {
			m.WithEmission(emission)
			emissiveFlags[i] = true
		}

		materials[i] = m
	}
	if len(materials) == 0 {
		materials = append(materials, material.NewAssimpMaterial(core.Vec3{X: 0.8, Y: 0.8, Z: 0.8}, parameterFactor))
	}

	sc := &scene.Scene{
		Materials: materials,
		Sky:       scene.NewConstantSky(core.Vec3{}),
	}

	nodeTransforms := computeWorldTransforms(doc)

	for meshIdx, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			sm, err := loadPrimitive(doc, prim)
			if err != nil {
				continue
			}
			if prim.Material != nil && *prim.Material < uint32(len(materials)) {
				sm.MaterialID = *prim.Material
			}

			for nodeIdx, gn := range doc.Nodes {
				if gn.Mesh == nil || int(*gn.Mesh) != meshIdx {
					continue
				}
				transformed := applyTransform(sm, nodeTransforms[nodeIdx])
				submeshIdx := len(sc.Submeshes)
				sc.Submeshes = append(sc.Submeshes, transformed)

				if prim.Material != nil && emissiveFlags[*prim.Material] {
					addAreaLights(sc, submeshIdx)
				}
			}
		}
	}

	return sc, nil
}

func loadPrimitive(doc *gltf.Document, prim *gltf.Primitive) (scene.Submesh, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return scene.Submesh{}, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return scene.Submesh{}, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]scene.Vertex, len(positions))
	for i, p := range positions {
		v := scene.Vertex{Position: core.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}}
		if i < len(normals) {
			n := normals[i]
			v.Normal = core.Vec3{X: float64(n[0]), Y: float64(n[1]), Z: float64(n[2])}
		}
		if i < len(uvs) {
			v.UV = core.Vec2{X: float64(uvs[i][0]), Y: float64(uvs[i][1])}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return scene.Submesh{}, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	return scene.Submesh{Vertices: verts, Indices: indices}, nil
}

// addAreaLights registers one AreaLight per triangle of an emissive submesh.
func addAreaLights(sc *scene.Scene, submeshIdx int) {
	sm := sc.Submeshes[submeshIdx]
	mat := sc.Materials[sm.MaterialID]
	for k := 0; k < sm.TriangleCount(); k++ {
		v0 := sm.Vertices[sm.Indices[3*k+0]].Position
		v1 := sm.Vertices[sm.Indices[3*k+1]].Position
		v2 := sm.Vertices[sm.Indices[3*k+2]].Position
		sc.AreaLights = append(sc.AreaLights, lights.NewAreaLight(v0, v1, v2, mat))
	}
}
