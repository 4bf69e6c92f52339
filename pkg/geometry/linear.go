package geometry

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

const (
	// maxDistance bounds closest-hit searches
	maxDistance = math.MaxFloat64

	// diffuseEpsilon guards the normalization of an occluder's diffuse color
	diffuseEpsilon = 1.1920929e-07
)

// LinearScan is a brute force Accelerator that tests every primitive. It is the
// reference the tree is checked against and backs the no-acceleration debug mode.
type LinearScan struct {
	primitives []Primitive
	objects    []*Object
	tol        Tolerance
	cfg        core.TracerConfig
}

// NewLinearScan creates a brute force accelerator
func NewLinearScan(objects []*Object, primitives []Primitive, cfg core.TracerConfig) *LinearScan {
	return &LinearScan{
		primitives: primitives,
		objects:    objects,
		tol:        NewTolerance(cfg),
		cfg:        cfg,
	}
}

// ClosestIntersection tests every primitive and keeps the nearest hit
func (l *LinearScan) ClosestIntersection(ray core.Ray) (material.HitData, *Object, bool) {
	var (
		best   material.HitData
		object *Object
		found  bool
	)
	tMax := maxDistance
	for _, p := range l.primitives {
		obj := l.objects[p.ObjectIndex()]
		hit, ok := p.Intersect(ray, l.tol, obj.IntersectionShader)
		if ok && hit.T < tMax {
			tMax = hit.T
			best = hit
			object = obj
			found = true
		}
	}
	return best, object, found
}

// TraceShadow applies every occluder in [MinShadowDistance, maxDist)
func (l *LinearScan) TraceShadow(ray core.Ray, maxDist float64) core.Vec3 {
	factor := core.Splat(1)
	for _, p := range l.primitives {
		hit, ok := p.Intersect(ray, l.tol, l.objects[p.ObjectIndex()].IntersectionShader)
		if !ok || hit.T >= maxDist || hit.T < l.cfg.MinShadowDistance {
			continue
		}
		if !attenuate(&factor, &hit.Material, l.cfg.OpaqueThreshold) {
			break
		}
	}
	return factor
}
