package lights

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

type LightType string

const (
	LightTypePoint       LightType = "point"
	LightTypeDirectional LightType = "directional"
)

// Light is a source of direct illumination. Directions point FROM the shaded
// point TO the light.
type Light interface {
	Type() LightType
	Color() core.Vec3

	// Direction returns the unit vector from position toward the light
	Direction(position core.Vec3) core.Vec3

	// Distance returns how far the light is from position; infinite lights
	// report math.MaxFloat64
	Distance(position core.Vec3) float64

	// Attenuation returns the falloff factor at the given distance
	Attenuation(distance float64) float64
}

// PointLight emits from a single position with quadratic falloff
type PointLight struct {
	Position core.Vec3
	color    core.Vec3
}

// NewPointLight creates a point light
func NewPointLight(position, color core.Vec3) *PointLight {
	return &PointLight{Position: position, color: color}
}

func (p *PointLight) Type() LightType  { return LightTypePoint }
func (p *PointLight) Color() core.Vec3 { return p.color }

// Direction returns the unit vector toward the light position
func (p *PointLight) Direction(position core.Vec3) core.Vec3 {
	return p.Position.Subtract(position).Normalize()
}

// Distance returns the distance to the light position
func (p *PointLight) Distance(position core.Vec3) float64 {
	return p.Position.Subtract(position).Length()
}

// Attenuation is min(1, 1/(0.25 + 0.1d + 0.01d^2))
func (p *PointLight) Attenuation(distance float64) float64 {
	return math.Min(1, 1/(0.25+0.1*distance+0.01*distance*distance))
}

// DirectionalLight is infinitely far away and does not attenuate
type DirectionalLight struct {
	Heading core.Vec3 // Direction the light travels
	color   core.Vec3
}

// NewDirectionalLight creates a light travelling along heading
func NewDirectionalLight(heading, color core.Vec3) *DirectionalLight {
	return &DirectionalLight{Heading: heading.Normalize(), color: color}
}

func (d *DirectionalLight) Type() LightType  { return LightTypeDirectional }
func (d *DirectionalLight) Color() core.Vec3 { return d.color }

// Direction returns the reversed heading
func (d *DirectionalLight) Direction(core.Vec3) core.Vec3 {
	return d.Heading.Negate()
}

// Distance is unbounded
func (d *DirectionalLight) Distance(core.Vec3) float64 {
	return math.MaxFloat64
}

// Attenuation is always 1
func (d *DirectionalLight) Attenuation(float64) float64 {
	return 1
}
