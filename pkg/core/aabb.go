package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	min := points[0]
	max := points[0]
	for _, point := range points[1:] {
		min = min.Min(point)
		max = max.Max(point)
	}

	return AABB{Min: min, Max: max}
}

// Expand returns the smallest AABB enclosing both this AABB and other
func (aabb AABB) Expand(other AABB) AABB {
	return AABB{
		Min: aabb.Min.Min(other.Min),
		Max: aabb.Max.Max(other.Max),
	}
}

// Hit tests if a ray intersects with this AABB using the slab method.
// invDirection is the per-component reciprocal of the ray direction, computed
// once per ray. Boxes entirely behind the origin are rejected.
func (aabb AABB) Hit(origin, invDirection Vec3) bool {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		lo, hi := slab(
			(aabb.Min.Get(axis)-origin.Get(axis))*invDirection.Get(axis),
			(aabb.Max.Get(axis)-origin.Get(axis))*invDirection.Get(axis),
		)
		if lo > tMin {
			tMin = lo
		}
		if hi < tMax {
			tMax = hi
		}
	}

	return tMax >= tMin && tMax >= 0
}

// slab orders the entry and exit distances of one axis. A NaN shows up as 0*Inf
// when the origin lies exactly on a slab plane of an axis the ray runs parallel
// to; that bound is left open.
func slab(t1, t2 float64) (lo, hi float64) {
	lo, hi = t1, t2
	if lo > hi {
		lo, hi = hi, lo
	}
	if math.IsNaN(lo) {
		lo = math.Inf(-1)
	}
	if math.IsNaN(hi) {
		hi = math.Inf(1)
	}
	return lo, hi
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent.
// Ties resolve to the lower axis.
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	axis := 0
	longest := size.X
	if size.Y > longest {
		longest = size.Y
		axis = 1
	}
	if size.Z > longest {
		axis = 2
	}
	return axis
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}
