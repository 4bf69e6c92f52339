package geometry

import (
	"math/rand"
	"testing"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatten assigns back references and returns the primitive list
func flatten(objects []*Object) []Primitive {
	var primitives []Primitive
	for i, obj := range objects {
		for _, p := range obj.Primitives {
			p.SetObjectIndex(i)
			primitives = append(primitives, p)
		}
	}
	return primitives
}

func randomVec(random *rand.Rand, scale float64) core.Vec3 {
	return core.NewVec3(
		(random.Float64()*2-1)*scale,
		(random.Float64()*2-1)*scale,
		(random.Float64()*2-1)*scale,
	)
}

func randomScene(random *rand.Rand, spheres, meshes int) []*Object {
	var objects []*Object
	for i := 0; i < spheres; i++ {
		obj := NewObject("sphere")
		obj.Add(NewSphere(randomVec(random, 10), 0.2+random.Float64(), material.NewDiffuse(core.Splat(1))))
		objects = append(objects, obj)
	}
	for i := 0; i < meshes; i++ {
		obj := NewObject("mesh")
		mat := material.NewDiffuse(core.Splat(0.5))
		center := randomVec(random, 10)
		for j := 0; j < 8; j++ {
			obj.Add(NewFlatTriangle(
				center.Add(randomVec(random, 1.5)),
				center.Add(randomVec(random, 1.5)),
				center.Add(randomVec(random, 1.5)),
				mat,
			))
		}
		objects = append(objects, obj)
	}
	return objects
}

func TestTree_MatchesLinearScan(t *testing.T) {
	cfg := core.DefaultTracerConfig()

	for seed := int64(1); seed <= 5; seed++ {
		random := rand.New(rand.NewSource(seed))
		objects := randomScene(random, 40, 15)
		primitives := flatten(objects)

		tree := NewTree(objects, primitives, cfg)
		linear := NewLinearScan(objects, primitives, cfg)

		for i := 0; i < 500; i++ {
			ray := core.NewRay(randomVec(random, 15), randomVec(random, 1).Normalize())

			treeHit, treeObj, treeOK := tree.ClosestIntersection(ray)
			linearHit, linearObj, linearOK := linear.ClosestIntersection(ray)

			require.Equal(t, linearOK, treeOK, "seed %d ray %d", seed, i)
			if linearOK {
				assert.InDelta(t, linearHit.T, treeHit.T, 1e-9, "seed %d ray %d", seed, i)
				assert.Same(t, linearObj, treeObj, "seed %d ray %d", seed, i)
			}
		}
	}
}

func TestTree_Structure(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	objects := randomScene(random, 200, 0)
	tree := NewTree(objects, flatten(objects), core.DefaultTracerConfig())

	stats := tree.Stats()
	assert.Equal(t, 200, stats.Primitives)
	assert.Greater(t, stats.Leaves, 1)
	assert.Greater(t, stats.MaxDepth, 0)
	assert.Equal(t, 200, stats.LeafPrimitives, "non-degenerate splits store every primitive exactly once")

	// The root box encloses everything
	bounds := tree.Bounds()
	for _, obj := range objects {
		b := obj.Bounds()
		assert.Equal(t, bounds, bounds.Expand(b))
	}
}

func TestTree_CoincidentMidpointsBecomeOneLeaf(t *testing.T) {
	obj := NewObject("stack")
	for i := 0; i < 5; i++ {
		obj.Add(NewSphere(core.Vec3{}, float64(i+1), material.NewDiffuse(core.Splat(1))))
	}
	objects := []*Object{obj}
	tree := NewTree(objects, flatten(objects), core.DefaultTracerConfig())

	stats := tree.Stats()
	assert.Equal(t, 1, stats.Nodes)
	assert.Equal(t, 1, stats.Leaves)
	assert.Equal(t, 5, stats.MaxLeafSize)

	hit, _, ok := tree.ClosestIntersection(core.NewRay(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	assert.InDelta(t, 5.0, hit.T, 1e-12)
}

func TestTree_Empty(t *testing.T) {
	tree := NewTree(nil, nil, core.DefaultTracerConfig())
	_, obj, ok := tree.ClosestIntersection(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)))
	assert.False(t, ok)
	assert.Nil(t, obj)
	assert.Equal(t, core.Splat(1), tree.TraceShadow(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), 100))
}

// pane builds a square occluder in the plane z=depth made of two triangles
func pane(name string, depth, transparency float64, diffuse core.Vec3) *Object {
	mat := &material.Material{Diffuse: diffuse, Transparency: transparency}
	obj := NewObject(name)
	a := core.NewVec3(-1, -1, depth)
	b := core.NewVec3(1, -1, depth)
	c := core.NewVec3(1, 1, depth)
	d := core.NewVec3(-1, 1, depth)
	obj.Add(NewFlatTriangle(a, b, c, mat), NewFlatTriangle(a, c, d, mat))
	return obj
}

func TestTraceShadow_Composition(t *testing.T) {
	cfg := core.DefaultTracerConfig()
	ray := core.NewRay(core.NewVec3(0.1, 0.2, 0), core.NewVec3(0, 0, 1))

	tests := []struct {
		name     string
		objects  []*Object
		maxDist  float64
		expected core.Vec3
	}{
		{
			name:     "two translucent panes multiply",
			objects:  []*Object{pane("a", 1, 0.5, core.Splat(1)), pane("b", 2, 0.4, core.Splat(1))},
			maxDist:  10,
			expected: core.Splat(0.2),
		},
		{
			name:     "opaque pane blocks",
			objects:  []*Object{pane("a", 1, 0.5, core.Splat(1)), pane("b", 2, 0.005, core.Splat(1))},
			maxDist:  10,
			expected: core.Splat(0),
		},
		{
			name:     "occluder beyond light is ignored",
			objects:  []*Object{pane("a", 1, 0.5, core.Splat(1)), pane("b", 5, 0, core.Splat(1))},
			maxDist:  3,
			expected: core.Splat(0.5),
		},
		{
			name:     "diffuse tint normalized by max channel",
			objects:  []*Object{pane("a", 1, 0.5, core.NewVec3(0.4, 0.2, 0))},
			maxDist:  10,
			expected: core.NewVec3(0.5, 0.25, 0),
		},
		{
			name:     "black diffuse does not divide by zero",
			objects:  []*Object{pane("a", 1, 0.5, core.Splat(0))},
			maxDist:  10,
			expected: core.Splat(0.5),
		},
		{
			name:     "hits closer than the shadow bias are ignored",
			objects:  []*Object{pane("a", 0.00001, 0, core.Splat(1))},
			maxDist:  10,
			expected: core.Splat(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primitives := flatten(tt.objects)
			for _, accel := range []Accelerator{
				NewTree(tt.objects, primitives, cfg),
				NewLinearScan(tt.objects, primitives, cfg),
			} {
				factor := accel.TraceShadow(ray, tt.maxDist)
				assert.InDelta(t, tt.expected.X, factor.X, 1e-12)
				assert.InDelta(t, tt.expected.Y, factor.Y, 1e-12)
				assert.InDelta(t, tt.expected.Z, factor.Z, 1e-12)
			}
		})
	}
}

func TestTree_IntersectionShaderCutout(t *testing.T) {
	obj := NewObject("holey")
	obj.Add(NewSphere(core.Vec3{}, 1, material.NewDiffuse(core.Splat(1))))
	obj.IntersectionShader = rejectNearer{5}
	objects := []*Object{obj}
	tree := NewTree(objects, flatten(objects), core.DefaultTracerConfig())

	hit, hitObj, ok := tree.ClosestIntersection(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	assert.Same(t, obj, hitObj)
	assert.InDelta(t, 6.0, hit.T, 1e-12, "ray passes through the cut front face")
}
