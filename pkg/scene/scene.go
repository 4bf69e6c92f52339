package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/log"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

var logger = log.New("scene")

var (
	// ErrObjectIndex is returned when an object index is out of range
	ErrObjectIndex = errors.New("object index out of range")

	// ErrLightIndex is returned when a light index is out of range
	ErrLightIndex = errors.New("light index out of range")
)

// Scene contains all the elements needed for rendering. It is mutated while it
// is being assembled and must not change once Build has been called and
// rendering has started.
type Scene struct {
	Camera     geometry.Camera
	Objects    []*geometry.Object   // Solids, indexed by primitive back-references
	Primitives []geometry.Primitive // Flattened primitives of all objects
	Materials  []*material.Material // Every material referenced by a primitive
	Lights     []lights.Light       // Light sources
	Config     core.TracerConfig    // Tuning constants shared with the integrator

	LightSampler *lights.UniformLightSampler // Uniform pick over Lights

	accel      geometry.Accelerator
	tree       *geometry.Tree
	linearScan bool
}

// New creates an empty scene
func New(cfg core.TracerConfig) *Scene {
	return &Scene{
		Config: cfg.Merge(core.DefaultTracerConfig()),
	}
}

// AddObject appends an object and its primitives and returns the object index.
// The acceleration structure is stale until the next Build.
func (s *Scene) AddObject(object *geometry.Object) int {
	index := len(s.Objects)
	s.Objects = append(s.Objects, object)
	for _, p := range object.Primitives {
		p.SetObjectIndex(index)
		s.Primitives = append(s.Primitives, p)
	}
	s.accel = nil
	return index
}

// AddMaterial registers a material owned by the scene
func (s *Scene) AddMaterial(materials ...*material.Material) {
	s.Materials = append(s.Materials, materials...)
}

// AddLight appends a light source
func (s *Scene) AddLight(light lights.Light) {
	s.Lights = append(s.Lights, light)
	s.LightSampler = nil
}

// UseLinearScan switches between the spatial tree and a brute force scan over
// every primitive. Takes effect on the next Build.
func (s *Scene) UseLinearScan(enabled bool) {
	s.linearScan = enabled
	s.accel = nil
}

// Build creates the acceleration structure and the light sampler. It must be
// called after the last mutation and before rendering.
func (s *Scene) Build() {
	if s.linearScan {
		s.tree = nil
		s.accel = geometry.NewLinearScan(s.Objects, s.Primitives, s.Config)
		logger.Infof("using linear scan over %d primitives", len(s.Primitives))
	} else {
		s.tree = geometry.NewTree(s.Objects, s.Primitives, s.Config)
		s.accel = s.tree
		stats := s.tree.Stats()
		logger.Infof("built tree over %d primitives in %v", stats.Primitives, stats.BuildTime)
	}
	s.LightSampler = lights.NewUniformLightSampler(s.Lights)
}

// Built reports whether the acceleration structure is current
func (s *Scene) Built() bool {
	return s.accel != nil && s.LightSampler != nil
}

// TreeStats returns statistics for the spatial tree. ok is false when the
// scene uses a linear scan or has not been built.
func (s *Scene) TreeStats() (stats geometry.TreeStats, ok bool) {
	if s.tree == nil || s.accel == nil {
		return geometry.TreeStats{}, false
	}
	return s.tree.Stats(), true
}

// ClosestIntersection returns the nearest hit along ray and its object
func (s *Scene) ClosestIntersection(ray core.Ray) (material.HitData, *geometry.Object, bool) {
	if s.accel == nil {
		return material.HitData{}, nil, false
	}
	return s.accel.ClosestIntersection(ray)
}

// TraceShadow returns the fraction of light per channel that reaches ray.Origin
// from maxDist along the ray
func (s *Scene) TraceShadow(ray core.Ray, maxDist float64) core.Vec3 {
	if s.accel == nil {
		return core.Splat(1)
	}
	return s.accel.TraceShadow(ray, maxDist)
}

// LinearClosestIntersection tests every primitive without the spatial tree
func (s *Scene) LinearClosestIntersection(ray core.Ray) (material.HitData, *geometry.Object, bool) {
	return geometry.NewLinearScan(s.Objects, s.Primitives, s.Config).ClosestIntersection(ray)
}

func (s *Scene) object(index int) (*geometry.Object, error) {
	if index < 0 || index >= len(s.Objects) {
		return nil, fmt.Errorf("%w: %d of %d", ErrObjectIndex, index, len(s.Objects))
	}
	return s.Objects[index], nil
}

// SetObjectShaders attaches optional color and intersection shaders to an object.
// Either may be nil.
func (s *Scene) SetObjectShaders(index int, color material.ColorShader, intersect material.IntersectionShader) error {
	object, err := s.object(index)
	if err != nil {
		return err
	}
	object.ColorShader = color
	object.IntersectionShader = intersect
	return nil
}

// SetObjectSubsurface attaches a subsurface profile to every material of an object
func (s *Scene) SetObjectSubsurface(index int, profile *bssrdf.Profile) error {
	object, err := s.object(index)
	if err != nil {
		return err
	}
	object.SetSubsurface(profile)
	return nil
}

// RemoveObject drops an object and its primitives, re-indexes the remaining
// objects and rebuilds the acceleration structure
func (s *Scene) RemoveObject(index int) error {
	removed, err := s.object(index)
	if err != nil {
		return err
	}

	owned := make(map[geometry.Primitive]struct{}, len(removed.Primitives))
	for _, p := range removed.Primitives {
		owned[p] = struct{}{}
	}
	kept := s.Primitives[:0]
	for _, p := range s.Primitives {
		if _, ok := owned[p]; !ok {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(s.Primitives); i++ {
		s.Primitives[i] = nil
	}
	s.Primitives = kept

	s.Objects = append(s.Objects[:index], s.Objects[index+1:]...)
	for i, object := range s.Objects[index:] {
		for _, p := range object.Primitives {
			p.SetObjectIndex(index + i)
		}
	}

	logger.Debugf("removed object %d (%s), %d primitives remain", index, removed.Name, len(s.Primitives))
	s.Build()
	return nil
}

// RemoveLight drops a light source and rebuilds the light sampler
func (s *Scene) RemoveLight(index int) error {
	if index < 0 || index >= len(s.Lights) {
		return fmt.Errorf("%w: %d of %d", ErrLightIndex, index, len(s.Lights))
	}
	s.Lights = append(s.Lights[:index], s.Lights[index+1:]...)
	s.LightSampler = lights.NewUniformLightSampler(s.Lights)
	return nil
}

// PrimitiveCount returns the number of primitives in the scene
func (s *Scene) PrimitiveCount() int {
	return len(s.Primitives)
}

// Bounds returns the union of every object's bounds
func (s *Scene) Bounds() core.AABB {
	if len(s.Objects) == 0 {
		return core.AABB{}
	}
	bounds := s.Objects[0].Bounds()
	for _, object := range s.Objects[1:] {
		bounds = bounds.Expand(object.Bounds())
	}
	return bounds
}
