package geometry

import (
	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// Triangle has per-vertex positions, normals, materials and texture coordinates.
// Vertex materials may all point at the same shared material.
type Triangle struct {
	V      [3]core.Vec3
	N      [3]core.Vec3
	M      [3]*material.Material
	UV     [3]core.Vec2
	object int
}

// NewTriangle creates a triangle with explicit vertex normals and materials
func NewTriangle(v, n [3]core.Vec3, m [3]*material.Material) *Triangle {
	return &Triangle{V: v, N: n, M: m}
}

// NewFlatTriangle creates a triangle using its face normal and one material for all vertices
func NewFlatTriangle(v0, v1, v2 core.Vec3, mat *material.Material) *Triangle {
	n := FaceNormal(v0, v1, v2)
	return &Triangle{
		V: [3]core.Vec3{v0, v1, v2},
		N: [3]core.Vec3{n, n, n},
		M: [3]*material.Material{mat, mat, mat},
	}
}

// Intersect implements the Möller-Trumbore algorithm. Normal, material and UV
// are interpolated with the barycentric weights (1-u-v, u, v).
func (tri *Triangle) Intersect(ray core.Ray, tol Tolerance, accept material.IntersectionShader) (material.HitData, bool) {
	edge1 := tri.V[1].Subtract(tri.V[0])
	edge2 := tri.V[2].Subtract(tri.V[0])

	p := ray.Direction.Cross(edge2)
	det := edge1.Dot(p)

	// Ray lies in or parallel to the triangle's plane
	if det > -tol.Parallel && det < tol.Parallel {
		return material.HitData{}, false
	}
	invDet := 1 / det

	toOrigin := ray.Origin.Subtract(tri.V[0])
	u := toOrigin.Dot(p) * invDet
	if u < 0 || u > 1 {
		return material.HitData{}, false
	}

	q := toOrigin.Cross(edge1)
	v := ray.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return material.HitData{}, false
	}

	t := edge2.Dot(q) * invDet
	if t <= tol.Parallel {
		return material.HitData{}, false
	}

	w := 1 - u - v
	hit := material.HitData{
		T:        t,
		Position: ray.At(t),
		Normal:   tri.N[0].Multiply(w).Add(tri.N[1].Multiply(u)).Add(tri.N[2].Multiply(v)).Normalize(),
		Material: material.Blend(tri.M[0], tri.M[1], tri.M[2], w, u, v),
		UV: core.NewVec2(
			tri.UV[0].X*w+tri.UV[1].X*u+tri.UV[2].X*v,
			tri.UV[0].Y*w+tri.UV[1].Y*u+tri.UV[2].Y*v,
		),
	}

	if accept != nil && !accept.Accept(&hit) {
		return material.HitData{}, false
	}
	return hit, true
}

// Bounds returns the per-axis extent of the three vertices
func (tri *Triangle) Bounds() core.AABB {
	return core.NewAABBFromPoints(tri.V[0], tri.V[1], tri.V[2])
}

// Midpoint returns the centroid
func (tri *Triangle) Midpoint() core.Vec3 {
	return tri.V[0].Add(tri.V[1]).Add(tri.V[2]).Multiply(1.0 / 3.0)
}

func (tri *Triangle) ObjectIndex() int         { return tri.object }
func (tri *Triangle) SetObjectIndex(index int) { tri.object = index }

// SetSubsurface attaches profile to all three vertex materials
func (tri *Triangle) SetSubsurface(profile *bssrdf.Profile) {
	for _, m := range tri.M {
		m.Subsurface = profile
	}
}

// MapSphericalUV assigns texture coordinates as if the vertices were projected
// onto a sphere around center
func (tri *Triangle) MapSphericalUV(center core.Vec3) {
	for i, v := range tri.V {
		tri.UV[i] = SphericalUV(v.Subtract(center).Normalize())
	}
}
