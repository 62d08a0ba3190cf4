package kdtree

import (
	"math"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/scene"
)

// hitEpsilon is 32*FLT_EPSILON per spec §4.7's t-rejection threshold, kept at its original
// float32 magnitude even though this port computes in float64.
const hitEpsilon = 32 * 1.1920929e-7

// boxEpsilon is the per-axis slack (ε₃ = (ε,ε,ε), ε=1e-3) a leaf hit's position is allowed to
// fall outside its node's box by.
const boxEpsilon = 1e-3

// detEpsilon rejects near-degenerate (collinear) triangles in the Möller–Trumbore test.
const detEpsilon = 1e-10

// HitRecord is the result of a successful closest-hit query (spec §3).
type HitRecord struct {
	T               float64
	Position        core.Vec3
	Barycentric     core.Barycentric
	GeometricNormal core.Vec3
	Triangle        scene.TriangleID
}

// Trace answers the closest-hit query of spec §4.7: the nearest intersection along the ray,
// or ok=false on a miss.
func (t *KDTree) Trace(origin, direction core.Vec3) (HitRecord, bool) {
	ray := core.NewRay(origin, direction)
	return t.traverse(t.sceneAABB, 0, 0, ray)
}

func (t *KDTree) traverse(box core.AABB, nodeIdx int, depth int, ray core.Ray) (HitRecord, bool) {
	if !box.Hit(ray) {
		return HitRecord{}, false
	}

	n := t.nodes[nodeIdx]
	if n.isLeaf() {
		return t.traceLeaf(box, n, ray)
	}

	axis := depth % 3
	boxLeft := box.WithAxisUpper(axis, n.split)
	boxRight := box.WithAxisLower(axis, n.split)

	firstIdx, secondIdx := int(n.firstChild), int(n.firstChild)+1
	firstBox, secondBox := boxLeft, boxRight
	if component(ray.Direction, axis) < 0 {
		firstIdx, secondIdx = secondIdx, firstIdx
		firstBox, secondBox = secondBox, firstBox
	}

	if hit, ok := t.traverse(firstBox, firstIdx, depth+1, ray); ok {
		return hit, true
	}
	return t.traverse(secondBox, secondIdx, depth+1, ray)
}

func component(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (t *KDTree) traceLeaf(box core.AABB, n node, ray core.Ray) (HitRecord, bool) {
	expanded := box.Expand(boxEpsilon)

	best := HitRecord{T: math.Inf(1)}
	found := false

	for i := int32(0); i < n.count; i++ {
		id := t.triIndex[n.firstIndex+i]
		v0, v1, v2 := t.sc.Positions(id)

		hit, ok := intersectTriangle(ray, v0, v1, v2)
		if !ok || hit.T <= hitEpsilon || hit.T >= best.T {
			continue
		}
		if !expanded.Contains(hit.Position) {
			continue
		}

		hit.Triangle = id
		best = hit
		found = true
	}

	return best, found
}

// intersectTriangle implements the Möller–Trumbore test of spec §4.7.
func intersectTriangle(ray core.Ray, v0, v1, v2 core.Vec3) (HitRecord, bool) {
	e1 := v1.Subtract(v0)
	e2 := v2.Subtract(v0)

	p := ray.Direction.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < detEpsilon {
		return HitRecord{}, false
	}
	inv := 1.0 / det

	tv := ray.Origin.Subtract(v0)
	u := tv.Dot(p) * inv
	if u < 0 || u > 1 {
		return HitRecord{}, false
	}

	q := tv.Cross(e1)
	v := ray.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return HitRecord{}, false
	}

	tt := e2.Dot(q) * inv
	if tt < hitEpsilon {
		return HitRecord{}, false
	}

	return HitRecord{
		T:               tt,
		Position:        ray.At(tt),
		Barycentric:     core.Barycentric{W0: 1 - u - v, W1: u, W2: v},
		GeometricNormal: e1.Cross(e2).Normalize(),
	}, true
}
