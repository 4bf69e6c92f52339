package renderer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/geometry"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
	"github.com/df07/go-subsurface-raytracer/pkg/scene"
)

// Recorder receives every ray segment traced for a pixel
type Recorder interface {
	RecordSegment(origin core.Vec3, hit material.HitData, bounces int)
}

// Integrator computes radiance along camera rays with recursive Whitted-style
// tracing plus dipole subsurface scattering. It is read-only after creation and
// shared by all workers; randomness comes from the caller's sampler.
type Integrator struct {
	scene    *scene.Scene
	config   core.TracerConfig
	patterns *SamplePatterns
	width    int
	spp      int
}

// NewIntegrator creates an integrator for an image width pixels wide. The scene
// is built if it has not been already.
func NewIntegrator(s *scene.Scene, width, samplesPerPixel int, seed int64) (*Integrator, error) {
	if s.Camera == nil {
		return nil, ErrNoCamera
	}
	patterns, err := NewSamplePatterns(samplesPerPixel, s.Config.SamplingPatterns, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	if !s.Built() {
		s.Build()
	}
	return &Integrator{
		scene:    s,
		config:   s.Config,
		patterns: patterns,
		width:    width,
		spp:      samplesPerPixel,
	}, nil
}

// SamplesPerPixel returns the number of camera rays traced per pixel
func (in *Integrator) SamplesPerPixel() int {
	return in.spp
}

// PixelColor traces every sample of pixel (i, j) and returns their average
func (in *Integrator) PixelColor(i, j int, sampler core.Sampler, rec Recorder) core.Vec3 {
	pattern := in.patterns.ForPixel(i, j, in.width)

	var sum core.Vec3
	for _, offset := range pattern {
		ray := in.scene.Camera.GetRay(float64(i)+offset.X, float64(j)+offset.Y, sampler.Get2D())
		sum = sum.Add(in.TraceRay(ray, 0, nil, sampler, rec))
	}
	return sum.Divide(float64(len(pattern)))
}

// TraceRay returns the radiance arriving along ray. inside lists the objects the
// ray is currently travelling through, innermost last; it is never modified.
func (in *Integrator) TraceRay(ray core.Ray, bounces int, inside []*geometry.Object, sampler core.Sampler, rec Recorder) core.Vec3 {
	if bounces > in.config.MaxBounces {
		return core.Vec3{}
	}

	hit, object, ok := in.scene.ClosestIntersection(ray)
	if !ok {
		return core.Vec3{}
	}

	// Back faces of a solid we are inside point away from us
	insideAt := indexOf(inside, object)
	if insideAt >= 0 {
		hit.Normal = hit.Normal.Negate()
	}
	// Cutout shaders can accept either face, so always face the ray
	if ray.Direction.Dot(hit.Normal) > 0 {
		hit.Normal = hit.Normal.Negate()
	}

	if rec != nil {
		rec.RecordSegment(ray.Origin, hit, bounces)
	}

	if object.ColorShader != nil {
		object.ColorShader.Shade(&hit)
	}

	if hit.Material.Subsurface != nil {
		return in.subsurfaceRadiance(ray.Direction, &hit, sampler)
	}

	m := &hit.Material
	radiance := m.Ambient.MultiplyVec(m.Diffuse).Multiply(1 - m.Transparency)
	for _, light := range in.scene.Lights {
		radiance = radiance.Add(in.lightRadiance(ray.Direction, light, &hit))
	}

	if m.Specular.MaxComponent() > in.config.MinSpecular {
		reflected := core.NewRay(
			hit.Position.Add(hit.Normal.Multiply(in.config.RayPush)),
			ray.Direction.Negate().Reflect(hit.Normal).Normalize(),
		)
		reflection := in.TraceRay(reflected, bounces+1, inside, sampler, rec)
		radiance = radiance.Add(reflection.MultiplyVec(m.Specular))
	}

	if m.Transparency > in.config.MinTransparency {
		if refracted, stack, ok := in.refract(ray, &hit, object, inside, insideAt); ok {
			refraction := in.TraceRay(refracted, bounces+1, stack, sampler, rec)
			radiance = radiance.Add(refraction.Multiply(m.Transparency))
		}
	}

	return radiance
}

// refract bends ray through the surface of object and returns the transmitted
// ray with the inside stack that applies beyond the surface. ok is false on
// total internal reflection.
func (in *Integrator) refract(ray core.Ray, hit *material.HitData, object *geometry.Object, inside []*geometry.Object, insideAt int) (core.Ray, []*geometry.Object, bool) {
	var n1, n2 float64
	var stack []*geometry.Object

	if insideAt < 0 {
		// Entering
		n1 = topIndex(inside)
		stack = make([]*geometry.Object, len(inside), len(inside)+1)
		copy(stack, inside)
		stack = append(stack, object)
		n2 = object.IndexOfRefraction
	} else {
		// Leaving
		n1 = object.IndexOfRefraction
		stack = make([]*geometry.Object, 0, len(inside)-1)
		stack = append(stack, inside[:insideAt]...)
		stack = append(stack, inside[insideAt+1:]...)
		n2 = topIndex(stack)
	}

	dir, ok := ray.Direction.Negate().Refract(hit.Normal, n1/n2)
	if !ok {
		return core.Ray{}, nil, false
	}
	origin := hit.Position.Subtract(hit.Normal.Multiply(in.config.RayPush))
	return core.NewRay(origin, dir.Negate()), stack, true
}

// lightRadiance computes shadowed Lambertian plus Phong lighting from one light
func (in *Integrator) lightRadiance(direction core.Vec3, light lights.Light, hit *material.HitData) core.Vec3 {
	lightDir := light.Direction(hit.Position)
	lightDist := light.Distance(hit.Position)

	shadowRay := core.NewRay(hit.Position.Add(hit.Normal.Multiply(in.config.RayPush)), lightDir)
	shadow := in.scene.TraceShadow(shadowRay, lightDist)
	if shadow.IsZero() {
		return core.Vec3{}
	}

	m := &hit.Material
	diffuse := m.Diffuse.Multiply(math.Max(lightDir.Dot(hit.Normal), 0) * (1 - m.Transparency))

	reflectDir := lightDir.Reflect(hit.Normal).Normalize()
	viewDir := direction.Negate().Normalize()
	specular := m.Specular.Multiply(math.Pow(math.Max(reflectDir.Dot(viewDir), 0), m.Shininess*128))

	return diffuse.Add(specular).
		MultiplyVec(shadow).
		MultiplyVec(light.Color()).
		Multiply(light.Attenuation(lightDist))
}

// indexOf returns the position of object in stack or -1
func indexOf(stack []*geometry.Object, object *geometry.Object) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == object {
			return i
		}
	}
	return -1
}

// topIndex returns the index of refraction of the innermost object, or vacuum
func topIndex(stack []*geometry.Object) float64 {
	if len(stack) == 0 {
		return 1
	}
	return stack[len(stack)-1].IndexOfRefraction
}

// String describes the integrator configuration
func (in *Integrator) String() string {
	return fmt.Sprintf("Integrator{spp: %d, patterns: %d, max bounces: %d}", in.spp, in.patterns.Count(), in.config.MaxBounces)
}
