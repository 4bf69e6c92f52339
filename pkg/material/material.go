package material

import (
	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

// Material holds the Phong surface description of a primitive or vertex.
// Several primitives may share one *Material; hits receive an interpolated copy.
type Material struct {
	Diffuse      core.Vec3
	Ambient      core.Vec3
	Specular     core.Vec3
	Emissive     core.Vec3
	Shininess    float64 // 0..1, scaled by 128 for the Phong exponent
	Transparency float64 // ktran, 0..1

	// Subsurface is shared by reference; nil disables subsurface scattering
	Subsurface *bssrdf.Profile
}

// NewDiffuse creates an opaque material with the given diffuse color and no specular highlight
func NewDiffuse(diffuse core.Vec3) *Material {
	return &Material{Diffuse: diffuse}
}

// Scale multiplies every numeric property by s. The subsurface profile is kept.
func (m Material) Scale(s float64) Material {
	return Material{
		Diffuse:      m.Diffuse.Multiply(s),
		Ambient:      m.Ambient.Multiply(s),
		Specular:     m.Specular.Multiply(s),
		Emissive:     m.Emissive.Multiply(s),
		Shininess:    m.Shininess * s,
		Transparency: m.Transparency * s,
		Subsurface:   m.Subsurface,
	}
}

// Add sums every numeric property. The receiver's subsurface profile wins.
func (m Material) Add(other Material) Material {
	return Material{
		Diffuse:      m.Diffuse.Add(other.Diffuse),
		Ambient:      m.Ambient.Add(other.Ambient),
		Specular:     m.Specular.Add(other.Specular),
		Emissive:     m.Emissive.Add(other.Emissive),
		Shininess:    m.Shininess + other.Shininess,
		Transparency: m.Transparency + other.Transparency,
		Subsurface:   m.Subsurface,
	}
}

// Blend returns w0*m0 + w1*m1 + w2*m2, the barycentric mix of three vertex materials.
// The result keeps m0's subsurface profile.
func Blend(m0, m1, m2 *Material, w0, w1, w2 float64) Material {
	if m0 == m1 && m1 == m2 {
		return *m0
	}
	return m0.Scale(w0).Add(m1.Scale(w1)).Add(m2.Scale(w2))
}

// HitData is the transient result of a ray-primitive intersection
type HitData struct {
	T        float64   // Distance along the ray direction
	Position core.Vec3 // World space point of intersection
	Normal   core.Vec3 // Unit surface normal
	Material Material  // Interpolated material copy
	UV       core.Vec2 // Texture coordinates
}
