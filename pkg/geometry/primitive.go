package geometry

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// Primitive is a renderable shape. The set is closed: *Sphere and *Triangle.
type Primitive interface {
	// Intersect returns the hit along ray, consulting accept (which may be nil)
	// before reporting it
	Intersect(ray core.Ray, tol Tolerance, accept material.IntersectionShader) (material.HitData, bool)
	Bounds() core.AABB
	Midpoint() core.Vec3

	// ObjectIndex is the non-owning link to the parent object in the scene's object list
	ObjectIndex() int
	SetObjectIndex(index int)

	// SetSubsurface attaches profile to every material the primitive references
	SetSubsurface(profile *bssrdf.Profile)
}

// Tolerance holds the epsilons used by the intersection routines
type Tolerance struct {
	Tangent  float64 // Sphere discriminant band treated as a single root
	Parallel float64 // Triangle determinant and minimum t
}

// NewTolerance extracts the intersection epsilons from a tracer config
func NewTolerance(cfg core.TracerConfig) Tolerance {
	return Tolerance{Tangent: cfg.TangentEpsilon, Parallel: cfg.TriangleEpsilon}
}

// SphericalUV maps a unit direction to texture coordinates. U increases
// clockwise around +Y when seen from above and V runs from the north pole (0)
// to the south pole (1).
func SphericalUV(dir core.Vec3) core.Vec2 {
	return core.NewVec2(
		1-(0.5+math.Atan2(dir.Z, dir.X)/(2*math.Pi)),
		0.5-math.Asin(max(-1, min(1, dir.Y)))/math.Pi,
	)
}

// FaceNormal is the geometric normal of a clockwise wound triangle
func FaceNormal(v0, v1, v2 core.Vec3) core.Vec3 {
	return v2.Subtract(v0).Cross(v1.Subtract(v0)).Negate().Normalize()
}
