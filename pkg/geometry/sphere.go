package geometry

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// Sphere is a sphere with a single shared material
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material *material.Material
	object   int
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat *material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Intersect solves |O + tD - C|^2 = r^2. A discriminant inside the tangent band
// counts as a single grazing root. Otherwise the nearest positive root is used,
// falling back to the far root when the intersection shader rejects it.
func (s *Sphere) Intersect(ray core.Ray, tol Tolerance, accept material.IntersectionShader) (material.HitData, bool) {
	offset := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * ray.Direction.Dot(offset)
	c := offset.Dot(offset) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c

	if discriminant < tol.Tangent && discriminant > -tol.Tangent {
		t := -b / (2 * a)
		if t <= 0 {
			return material.HitData{}, false
		}
		hit := s.hitAt(ray, t)
		if accept != nil && !accept.Accept(&hit) {
			return material.HitData{}, false
		}
		return hit, true
	}

	if discriminant < 0 {
		return material.HitData{}, false
	}

	root := math.Sqrt(discriminant)
	far := (-b + root) / (2 * a)
	near := (-b - root) / (2 * a)

	// closest root that is not behind the origin
	t := near
	if far >= 0 && near < 0 {
		t = far
	}
	if t <= 0 {
		return material.HitData{}, false
	}

	hit := s.hitAt(ray, t)
	if accept != nil && !accept.Accept(&hit) {
		hit = s.hitAt(ray, far)
		if !accept.Accept(&hit) {
			return material.HitData{}, false
		}
	}
	return hit, true
}

func (s *Sphere) hitAt(ray core.Ray, t float64) material.HitData {
	position := ray.At(t)
	normal := position.Subtract(s.Center).Normalize()
	return material.HitData{
		T:        t,
		Position: position,
		Normal:   normal,
		Material: *s.Material,
		UV:       SphericalUV(normal),
	}
}

// Bounds returns the box from center-r to center+r
func (s *Sphere) Bounds() core.AABB {
	r := core.Splat(s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}

// Midpoint returns the center
func (s *Sphere) Midpoint() core.Vec3 {
	return s.Center
}

func (s *Sphere) ObjectIndex() int         { return s.object }
func (s *Sphere) SetObjectIndex(index int) { s.object = index }

// SetSubsurface attaches profile to the sphere's material
func (s *Sphere) SetSubsurface(profile *bssrdf.Profile) {
	s.Material.Subsurface = profile
}
