package loaders

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/scene"
)

// computeWorldTransforms walks the glTF scene graph and returns one world matrix per node,
// composing each node's local TRS with its ancestors' the way mrigankad-gorenderengine's
// loader walks Node.Children, generalized from its quaternion/vec3 math package to mgl64.
func computeWorldTransforms(doc *gltf.Document) []mgl64.Mat4 {
	world := make([]mgl64.Mat4, len(doc.Nodes))
	visited := make([]bool, len(doc.Nodes))

	var visit func(idx int, parent mgl64.Mat4)
	visit = func(idx int, parent mgl64.Mat4) {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return
		}
		visited[idx] = true
		w := parent.Mul4(localTransform(doc.Nodes[idx]))
		world[idx] = w
		for _, c := range doc.Nodes[idx].Children {
			visit(int(c), w)
		}
	}

	for _, r := range rootIndices(doc) {
		visit(r, mgl64.Ident4())
	}
	for i := range world {
		if !visited[i] {
			world[i] = localTransform(doc.Nodes[i])
		}
	}
	return world
}

func rootIndices(doc *gltf.Document) []int {
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		out := make([]int, 0, len(doc.Scenes[*doc.Scene].Nodes))
		for _, idx := range doc.Scenes[*doc.Scene].Nodes {
			out = append(out, int(idx))
		}
		return out
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			hasParent[c] = true
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			out = append(out, i)
		}
	}
	return out
}

func localTransform(gn *gltf.Node) mgl64.Mat4 {
	t := gn.TranslationOrDefault()
	s := gn.ScaleOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]

	q := mgl64.Quat{W: float64(r[3]), V: mgl64.Vec3{float64(r[0]), float64(r[1]), float64(r[2])}}

	translate := mgl64.Translate3D(float64(t[0]), float64(t[1]), float64(t[2]))
	rotate := q.Mat4()
	scale := mgl64.Scale3D(float64(s[0]), float64(s[1]), float64(s[2]))

	return translate.Mul4(rotate).Mul4(scale)
}

// applyTransform bakes a node's world matrix into a fresh copy of sm's vertex positions and
// normals; normals use the matrix's linear part only, which is exact for rigid/uniform-scale
// transforms (the common case for authored glTF assets) and an acceptable approximation
// otherwise since normals here only seed Vertex.Normal, not the geometric normal the kd-tree
// and path tracer actually intersect against.
func applyTransform(sm scene.Submesh, m mgl64.Mat4) scene.Submesh {
	out := scene.Submesh{
		Vertices:   make([]scene.Vertex, len(sm.Vertices)),
		Indices:    sm.Indices,
		MaterialID: sm.MaterialID,
	}
	for i, v := range sm.Vertices {
		p := m.Mul4x1(mgl64.Vec4{v.Position.X, v.Position.Y, v.Position.Z, 1})
		n := m.Mul4x1(mgl64.Vec4{v.Normal.X, v.Normal.Y, v.Normal.Z, 0})
		out.Vertices[i] = scene.Vertex{
			Position: core.Vec3{X: p.X(), Y: p.Y(), Z: p.Z()},
			Normal:   core.Vec3{X: n.X(), Y: n.Y(), Z: n.Z()}.Normalize(),
			UV:       v.UV,
		}
	}
	return out
}
