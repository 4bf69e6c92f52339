package geometry

import (
	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// DefaultIndexOfRefraction is used for objects that do not specify one
const DefaultIndexOfRefraction = 1.5

// Object groups primitives into one solid for refraction purposes. A ray that
// entered the object uses its index of refraction until it leaves through any
// of its primitives.
type Object struct {
	Name              string
	Primitives        []Primitive
	IndexOfRefraction float64

	// Optional shading hooks, both may be nil
	ColorShader        material.ColorShader
	IntersectionShader material.IntersectionShader
}

// NewObject creates an empty object with the default index of refraction
func NewObject(name string) *Object {
	return &Object{
		Name:              name,
		IndexOfRefraction: DefaultIndexOfRefraction,
	}
}

// Add appends primitives to the object
func (o *Object) Add(primitives ...Primitive) {
	o.Primitives = append(o.Primitives, primitives...)
}

// Center returns the mean of the primitives' vertices. Spheres count as their center.
func (o *Object) Center() core.Vec3 {
	var sum core.Vec3
	count := 0
	for _, p := range o.Primitives {
		switch prim := p.(type) {
		case *Triangle:
			for _, v := range prim.V {
				sum = sum.Add(v)
				count++
			}
		default:
			sum = sum.Add(p.Midpoint())
			count++
		}
	}
	if count == 0 {
		return sum
	}
	return sum.Divide(float64(count))
}

// Bounds returns the union of the primitives' bounds
func (o *Object) Bounds() core.AABB {
	if len(o.Primitives) == 0 {
		return core.AABB{}
	}
	bounds := o.Primitives[0].Bounds()
	for _, p := range o.Primitives[1:] {
		bounds = bounds.Expand(p.Bounds())
	}
	return bounds
}

// SphericalTextureMap replaces the triangles' texture coordinates with a
// spherical projection around the object's center
func (o *Object) SphericalTextureMap() {
	center := o.Center()
	for _, p := range o.Primitives {
		if tri, ok := p.(*Triangle); ok {
			tri.MapSphericalUV(center)
		}
	}
}

// QuadTextureMap gives triangle pairs the two halves of the unit square,
// alternating (0,0),(1,0),(1,1) and (0,0),(1,1),(0,1)
func (o *Object) QuadTextureMap() {
	n := 0
	for _, p := range o.Primitives {
		tri, ok := p.(*Triangle)
		if !ok {
			continue
		}
		if n%2 == 0 {
			tri.UV = [3]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
		} else {
			tri.UV = [3]core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
		}
		n++
	}
}

// SetSubsurface attaches profile to every material of every primitive. A nil
// profile turns subsurface scattering off.
func (o *Object) SetSubsurface(profile *bssrdf.Profile) {
	for _, p := range o.Primitives {
		p.SetSubsurface(profile)
	}
}
