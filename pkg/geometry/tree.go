package geometry

import (
	"time"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/log"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// Accelerator answers the two ray queries the integrator needs
type Accelerator interface {
	// ClosestIntersection returns the nearest hit along ray and the object that owns it
	ClosestIntersection(ray core.Ray) (material.HitData, *Object, bool)

	// TraceShadow returns the per-channel fraction of light that survives the
	// occluders between ray.Origin and maxDist
	TraceShadow(ray core.Ray, maxDist float64) core.Vec3
}

// nilNode marks a missing child
const nilNode = -1

// treeNode is an arena entry. Interior nodes have both children; leaves have
// neither and point into the leaf registry.
type treeNode struct {
	bounds      core.AABB
	left, right int
	leaf        int
}

func (n *treeNode) isLeaf() bool {
	return n.left == nilNode && n.right == nilNode
}

// TreeStats describes the shape of a built tree
type TreeStats struct {
	Primitives     int
	Nodes          int
	Leaves         int
	MaxDepth       int
	MaxLeafSize    int
	LeafPrimitives int // Sum of leaf sizes
	BuildTime      time.Duration
}

// Tree is an axis-split spatial index over a fixed primitive set. Nodes live in
// a contiguous arena and are addressed by index; the whole tree is rebuilt
// whenever the primitive set changes.
type Tree struct {
	nodes      []treeNode
	leaves     [][]int // Primitive indices per leaf
	root       int
	primitives []Primitive
	objects    []*Object
	tol        Tolerance
	cfg        core.TracerConfig
	stats      TreeStats
}

type treeBuilder struct {
	tree          *Tree
	midpoints     []core.Vec3
	bounds        []core.AABB
	stopFraction  float64
	sharedScratch map[int]struct{}
}

// NewTree builds the spatial index. Each primitive's ObjectIndex must address objects.
func NewTree(objects []*Object, primitives []Primitive, cfg core.TracerConfig) *Tree {
	logger := log.New("tree")
	start := time.Now()

	t := &Tree{
		nodes:      make([]treeNode, 0, 2*len(primitives)),
		root:       nilNode,
		primitives: primitives,
		objects:    objects,
		tol:        NewTolerance(cfg),
		cfg:        cfg,
	}

	b := &treeBuilder{
		tree:          t,
		midpoints:     make([]core.Vec3, len(primitives)),
		bounds:        make([]core.AABB, len(primitives)),
		stopFraction:  cfg.TreeStopFraction,
		sharedScratch: make(map[int]struct{}),
	}
	work := make([]int, len(primitives))
	for i, p := range primitives {
		b.midpoints[i] = p.Midpoint()
		b.bounds[i] = p.Bounds()
		work[i] = i
	}

	t.root = b.makeNode(work, 0)

	t.stats.Primitives = len(primitives)
	t.stats.Nodes = len(t.nodes)
	t.stats.Leaves = len(t.leaves)
	t.stats.BuildTime = time.Since(start)

	logger.Debugf(
		"tree build time: %d ms, primitives: %d, maxDepth: %d, nodes: %d, leafs: %d, max leaf size: %d",
		t.stats.BuildTime.Nanoseconds()/1e6,
		t.stats.Primitives, t.stats.MaxDepth, t.stats.Nodes, t.stats.Leaves, t.stats.MaxLeafSize,
	)
	return t
}

// makeNode partitions work around the mean midpoint on axis depth%3 and returns
// the node index, or nilNode for an empty set.
func (b *treeBuilder) makeNode(work []int, depth int) int {
	if len(work) == 0 {
		return nilNode
	}

	t := b.tree
	if depth > t.stats.MaxDepth {
		t.stats.MaxDepth = depth
	}

	index := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{left: nilNode, right: nilNode, leaf: nilNode})

	if len(work) == 1 {
		return b.makeLeaf(index, work)
	}

	axis := depth % 3
	mid := 0.0
	for _, i := range work {
		mid += b.midpoints[i].Get(axis)
	}
	mid /= float64(len(work))

	var left, right []int
	for _, i := range work {
		if b.midpoints[i].Get(axis) >= mid {
			right = append(right, i)
		} else {
			left = append(left, i)
		}
	}

	// A trivial split reuses the other side so the shared check below stops it
	if len(left) == 0 {
		left = right
	}
	if len(right) == 0 {
		right = left
	}

	shared := b.countShared(left, right)
	if float64(shared) < b.stopFraction*float64(len(left)) && float64(shared) < b.stopFraction*float64(len(right)) {
		l := b.makeNode(left, depth+1)
		r := b.makeNode(right, depth+1)
		t.nodes[index].left = l
		t.nodes[index].right = r
		t.nodes[index].bounds = t.nodes[l].bounds.Expand(t.nodes[r].bounds)
		return index
	}

	return b.makeLeaf(index, work)
}

func (b *treeBuilder) makeLeaf(index int, work []int) int {
	t := b.tree

	bounds := b.bounds[work[0]]
	for _, i := range work[1:] {
		bounds = bounds.Expand(b.bounds[i])
	}

	t.nodes[index].bounds = bounds
	t.nodes[index].leaf = len(t.leaves)
	t.leaves = append(t.leaves, work)

	t.stats.LeafPrimitives += len(work)
	if len(work) > t.stats.MaxLeafSize {
		t.stats.MaxLeafSize = len(work)
	}
	return index
}

// countShared returns how many primitives appear on both sides
func (b *treeBuilder) countShared(left, right []int) int {
	clear(b.sharedScratch)
	for _, i := range right {
		b.sharedScratch[i] = struct{}{}
	}
	shared := 0
	for _, i := range left {
		if _, ok := b.sharedScratch[i]; ok {
			shared++
		}
	}
	return shared
}

// Stats returns the build statistics
func (t *Tree) Stats() TreeStats {
	return t.stats
}

// Bounds returns the bounds of the whole scene, or an empty box for an empty tree
func (t *Tree) Bounds() core.AABB {
	if t.root == nilNode {
		return core.AABB{}
	}
	return t.nodes[t.root].bounds
}

// ClosestIntersection descends every child whose box the ray touches and keeps
// the nearest accepted hit.
func (t *Tree) ClosestIntersection(ray core.Ray) (material.HitData, *Object, bool) {
	var (
		hit    material.HitData
		object *Object
	)
	if t.root == nilNode {
		return hit, nil, false
	}

	tMax := maxDistance
	found := t.intersectNode(t.root, ray, ray.InverseDirection(), &hit, &object, &tMax)
	return hit, object, found
}

func (t *Tree) intersectNode(index int, ray core.Ray, invDir core.Vec3, hit *material.HitData, object **Object, tMax *float64) bool {
	node := &t.nodes[index]
	if !node.bounds.Hit(ray.Origin, invDir) {
		return false
	}

	if node.isLeaf() {
		found := false
		for _, i := range t.leaves[node.leaf] {
			p := t.primitives[i]
			obj := t.objects[p.ObjectIndex()]
			candidate, ok := p.Intersect(ray, t.tol, obj.IntersectionShader)
			if ok && candidate.T < *tMax {
				*tMax = candidate.T
				*hit = candidate
				*object = obj
				found = true
			}
		}
		return found
	}

	hitLeft := t.intersectNode(node.left, ray, invDir, hit, object, tMax)
	hitRight := t.intersectNode(node.right, ray, invDir, hit, object, tMax)
	return hitLeft || hitRight
}

// TraceShadow visits every primitive along the ray in [MinShadowDistance, maxDist).
// A nearly opaque hit blocks the light completely; translucent hits scale it by
// their transparency and their diffuse color normalized to a max channel of 1.
func (t *Tree) TraceShadow(ray core.Ray, maxDist float64) core.Vec3 {
	factor := core.Splat(1)
	if t.root == nilNode {
		return factor
	}
	t.shadowNode(t.root, ray, ray.InverseDirection(), maxDist, &factor)
	return factor
}

// shadowNode returns false once the ray is fully blocked
func (t *Tree) shadowNode(index int, ray core.Ray, invDir core.Vec3, maxDist float64, factor *core.Vec3) bool {
	node := &t.nodes[index]
	if !node.bounds.Hit(ray.Origin, invDir) {
		return true
	}

	if node.isLeaf() {
		for _, i := range t.leaves[node.leaf] {
			p := t.primitives[i]
			hit, ok := p.Intersect(ray, t.tol, t.objects[p.ObjectIndex()].IntersectionShader)
			if !ok || hit.T >= maxDist || hit.T < t.cfg.MinShadowDistance {
				continue
			}
			if !attenuate(factor, &hit.Material, t.cfg.OpaqueThreshold) {
				return false
			}
		}
		return true
	}

	return t.shadowNode(node.left, ray, invDir, maxDist, factor) &&
		t.shadowNode(node.right, ray, invDir, maxDist, factor)
}

// attenuate applies one occluder to factor. It returns false and zeroes factor
// when the occluder is opaque.
func attenuate(factor *core.Vec3, m *material.Material, opaqueThreshold float64) bool {
	if m.Transparency < opaqueThreshold {
		*factor = core.Vec3{}
		return false
	}

	tint := core.Splat(1)
	if norm := m.Diffuse.MaxComponent(); norm > diffuseEpsilon {
		tint = m.Diffuse.Divide(norm)
	}
	*factor = factor.Multiply(m.Transparency).MultiplyVec(tint)
	return true
}
