package kdtree

import (
	"math"
	"sort"

	"github.com/felsrender/pathtracer/pkg/core"
	"github.com/felsrender/pathtracer/pkg/scene"
)

// Config carries the three build/traversal knobs of spec §6's configuration table that bear
// on the accelerator.
type Config struct {
	MaxDepth           int // kdtree_max_depth
	MaxTrianglesInLeaf int // kdtree_max_triangles_in_leaf
	SAHResolution      int // sah_resolution; 0 disables SAH in favor of a mid-split
}

// DefaultConfig mirrors the values the teacher's own render configs default to for its BVH:
// a shallow cap with a handful of triangles per leaf, generous enough for interactive scenes.
func DefaultConfig() Config {
	return Config{
		MaxDepth:           24,
		MaxTrianglesInLeaf: 4,
		SAHResolution:      8,
	}
}

// BuildStats records coverage information gathered during the build, logged once per build
// (spec §4.6, "Record depth in stats").
type BuildStats struct {
	NodeCount    int
	LeafCount    int
	MaxLeafDepth int
	TriangleRefs int // total triangle references across all leaves (>= triangle count, since a triangle may appear in multiple leaves)
}

// KDTree is the packed node array plus its triangle index table (spec §3's "single packed
// array of 8-byte nodes" — realized here as a slice of explicit-tag node structs, see node.go).
type KDTree struct {
	nodes      []node
	triIndex   []scene.TriangleID
	sc         *scene.Scene
	sceneAABB  core.AABB
	cfg        Config
	Stats      BuildStats
}

// Build validates the scene (spec §7: scene-consistency errors are fatal at build) and
// constructs the kd-tree over every triangle it contains. logger may be nil, in which case
// build statistics are not reported.
func Build(sc *scene.Scene, cfg Config, logger core.Logger) (*KDTree, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sc.ComputeAABB()

	triangles := sc.Triangles()

	t := &KDTree{
		sc:        sc,
		sceneAABB: sc.AABB,
		cfg:       cfg,
	}
	t.nodes = make([]node, 0, len(triangles))
	t.triIndex = make([]scene.TriangleID, 0, len(triangles))

	// Reserve the root slot, then build into it.
	t.nodes = append(t.nodes, node{})
	t.build(0, triangles, nil, 0)

	t.Stats.NodeCount = len(t.nodes)

	if logger != nil {
		logger.Infow("kdtree: build complete",
			"nodes", t.Stats.NodeCount,
			"leaves", t.Stats.LeafCount,
			"maxDepth", t.Stats.MaxLeafDepth,
			"triangleRefs", t.Stats.TriangleRefs,
		)
	}

	return t, nil
}

// triBBox returns the tight bounding box of one triangle, used throughout the builder.
func (t *KDTree) triBBox(id scene.TriangleID) core.AABB {
	return t.sc.BoundingBox(id)
}

// build recursively builds the subtree rooted at nodes[position], following spec §4.6.
func (t *KDTree) build(position int, rang, carry []scene.TriangleID, depth int) {
	if t.isLeafCase(rang, carry, depth) {
		t.emitLeaf(position, rang, carry, depth)
		return
	}

	axis := depth % 3
	sort.Slice(rang, func(i, j int) bool {
		_, ui := t.triBBox(rang[i]).Axis(axis)
		_, uj := t.triBBox(rang[j]).Axis(axis)
		return ui < uj
	})

	pivot, split := t.chooseSplit(rang, axis, t.cfg.SAHResolution)

	leftRange := rang[:pivot]
	rightRange := rang[pivot:]

	var leftCarry, rightCarry []scene.TriangleID
	for _, id := range carry {
		lower, _ := t.triBBox(id).Axis(axis)
		_, upper := t.triBBox(id).Axis(axis)
		if lower < split {
			leftCarry = append(leftCarry, id)
		}
		if upper >= split {
			rightCarry = append(rightCarry, id)
		}
	}
	// Triangles of the right slice that reach below split also overlap the left box.
	for _, id := range rightRange {
		if lower, _ := t.triBBox(id).Axis(axis); lower < split {
			leftCarry = append(leftCarry, id)
		}
	}

	firstChild := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{}, node{})
	t.nodes[position] = internalNode(firstChild, split)

	t.build(int(firstChild), leftRange, leftCarry, depth+1)
	// The right subtree's exclusive range is empty; rightRange becomes carry, so the
	// no-forward-progress rule (len(range) <= len(carry)) always makes the right child a leaf
	// (spec §4.6 step 5 / §9's "possibly-buggy source behavior" note — reproduced as written).
	t.build(int(firstChild)+1, nil, append(append([]scene.TriangleID{}, rightRange...), rightCarry...), depth+1)
}

func (t *KDTree) isLeafCase(rang, carry []scene.TriangleID, depth int) bool {
	total := len(rang) + len(carry)
	if total <= t.cfg.MaxTrianglesInLeaf {
		return true
	}
	if depth >= t.cfg.MaxDepth {
		return true
	}
	if len(rang) <= len(carry) {
		return true
	}
	return false
}

func (t *KDTree) emitLeaf(position int, rang, carry []scene.TriangleID, depth int) {
	first := int32(len(t.triIndex))
	t.triIndex = append(t.triIndex, rang...)
	t.triIndex = append(t.triIndex, carry...)
	t.nodes[position] = leafNode(first, int32(len(rang)+len(carry)))

	t.Stats.LeafCount++
	t.Stats.TriangleRefs += len(rang) + len(carry)
	if depth > t.Stats.MaxLeafDepth {
		t.Stats.MaxLeafDepth = depth
	}
}

// triArea returns the surface area of a triangle, the weight the SAH split accumulates.
func (t *KDTree) triArea(id scene.TriangleID) float64 {
	v0, v1, v2 := t.sc.Positions(id)
	return v1.Subtract(v0).Cross(v2.Subtract(v0)).Length() / 2.0
}

// chooseSplit implements spec §4.6's SAH split selection (or a mid-split when resolution is
// 0). rang must already be sorted ascending by max-coordinate on axis. Returns the pivot
// index into rang (first triangle belonging to the right side) and the split value.
func (t *KDTree) chooseSplit(rang []scene.TriangleID, axis int, resolution int) (pivot int, split float64) {
	globalMin := math.Inf(1)
	globalMax := math.Inf(-1)
	for _, id := range rang {
		lower, upper := t.triBBox(id).Axis(axis)
		globalMin = math.Min(globalMin, lower)
		globalMax = math.Max(globalMax, upper)
	}

	mid := func() (int, float64) {
		s := len(rang) / 2
		if s == 0 {
			s = 1
		}
		if s >= len(rang) {
			s = len(rang) - 1
		}
		_, upper := t.triBBox(rang[s]).Axis(axis)
		return s, upper
	}

	if resolution <= 0 || globalMax-globalMin < 1e-3 {
		return mid()
	}

	n := len(rang)
	segCount := resolution
	if segCount > n {
		segCount = n
	}
	if segCount < 1 {
		return mid()
	}

	segSize := (n + segCount - 1) / segCount // ceil
	segmentAreas := make([]float64, 0, segCount)
	boundaries := make([]int, 0, segCount) // cumulative triangle count after each segment

	total := 0.0
	idx := 0
	for idx < n {
		end := idx + segSize
		if end > n {
			end = n
		}
		area := 0.0
		for _, id := range rang[idx:end] {
			area += t.triArea(id)
		}
		segmentAreas = append(segmentAreas, area)
		total += area
		boundaries = append(boundaries, end)
		idx = end
	}

	bestScore := math.Inf(1)
	bestBoundary := -1
	areaLeft := 0.0
	for i := 0; i < len(boundaries)-1; i++ {
		areaLeft += segmentAreas[i]
		areaRight := total - areaLeft
		s := boundaries[i]
		if s <= 0 || s >= n {
			continue
		}
		_, pivotUpper := t.triBBox(rang[s]).Axis(axis)
		sizeLeft := (pivotUpper - globalMin) / (globalMax - globalMin)
		sizeLeft = clamp01(sizeLeft)
		score := sizeLeft*areaLeft + (1-sizeLeft)*areaRight
		if score > 0 && score < bestScore {
			bestScore = score
			bestBoundary = s
		}
	}

	if bestBoundary < 0 {
		return mid()
	}

	_, splitValue := t.triBBox(rang[bestBoundary]).Axis(axis)
	return bestBoundary, splitValue
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
