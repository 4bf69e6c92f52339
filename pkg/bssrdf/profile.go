// Package bssrdf implements the dipole diffusion approximation with a single
// scattering correction, after Jensen et al. and Donner's thesis.
package bssrdf

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/core"
)

// Profile is an immutable subsurface scattering profile. One profile is shared
// by reference between every material that scatters with it.
type Profile struct {
	// Inputs
	sigmaA      core.Vec3 // Absorption coefficient
	sigmaSPrime core.Vec3 // Reduced scattering coefficient
	g           float64   // Anisotropy (0 is isotropic)
	eta         float64   // Relative index of refraction

	// Derived at construction
	sigmaS      core.Vec3 // Scattering coefficient
	sigmaT      core.Vec3 // Extinction coefficient
	sigmaTPrime core.Vec3 // Reduced extinction coefficient
	sigmaTr     core.Vec3 // Effective transport coefficient
	alphaPrime  core.Vec3 // Reduced albedo
	d           core.Vec3 // Diffusion constant
	a           float64   // Internal diffuse reflection coefficient
	zr          core.Vec3 // Depth of the positive dipole source
	zv          core.Vec3 // Height of the negative dipole source
	rMax        float64   // Radius holding 99% of the diffusion kernel
}

// NewProfile derives the dipole constants from the measured coefficients
func NewProfile(sigmaA, sigmaSPrime core.Vec3, g, eta float64) *Profile {
	p := &Profile{
		sigmaA:      sigmaA,
		sigmaSPrime: sigmaSPrime,
		g:           g,
		eta:         eta,
	}

	p.sigmaS = sigmaSPrime.Divide(1 - g)
	p.sigmaTPrime = sigmaA.Add(sigmaSPrime)
	p.sigmaTr = sigmaA.MultiplyVec(p.sigmaTPrime).Multiply(3).Sqrt()
	p.sigmaT = sigmaA.Add(p.sigmaS)
	p.alphaPrime = sigmaSPrime.DivideVec(p.sigmaTPrime)

	fdr := FresnelDiffuseReflectance(eta)
	p.a = (1 + fdr) / (1 - fdr)
	p.d = core.Splat(1).DivideVec(p.sigmaTPrime.Multiply(3))

	p.zr = core.Splat(1).DivideVec(p.sigmaTPrime)
	p.zv = p.zr.Multiply(1 + 4.0/3.0*p.a)

	p.rMax = math.Sqrt(math.Log(0.01) / -p.sigmaTr.Luminance())
	return p
}

// FresnelDiffuseReflectance is the rational fit to the hemispherically
// averaged Fresnel reflectance (Donner, eq. 5.27)
func FresnelDiffuseReflectance(eta float64) float64 {
	if eta > 1 {
		return -1.4399/(eta*eta) + 0.7099/eta + 0.6681 + 0.0636*eta
	}
	return -0.4399 + 0.7099/eta - 0.3319/(eta*eta) + 0.0636/(eta*eta*eta)
}

// Eta returns the relative index of refraction
func (p *Profile) Eta() float64 { return p.eta }

// G returns the anisotropy parameter
func (p *Profile) G() float64 { return p.g }

// SigmaA returns the absorption coefficient
func (p *Profile) SigmaA() core.Vec3 { return p.sigmaA }

// SigmaSPrime returns the reduced scattering coefficient
func (p *Profile) SigmaSPrime() core.Vec3 { return p.sigmaSPrime }

// SigmaS returns the scattering coefficient
func (p *Profile) SigmaS() core.Vec3 { return p.sigmaS }

// SigmaT returns the extinction coefficient
func (p *Profile) SigmaT() core.Vec3 { return p.sigmaT }

// SigmaTr returns the effective transport coefficient
func (p *Profile) SigmaTr() core.Vec3 { return p.sigmaTr }

// DiffusionConstant returns D = 1/(3 sigma_t')
func (p *Profile) DiffusionConstant() core.Vec3 { return p.d }

// InternalReflection returns the boundary constant A
func (p *Profile) InternalReflection() float64 { return p.a }

// DipoleDepths returns the depth of the real source and the height of the virtual one
func (p *Profile) DipoleDepths() (zr, zv core.Vec3) { return p.zr, p.zv }

// MaxRadius returns the disk radius used for diffusion sampling
func (p *Profile) MaxRadius() float64 { return p.rMax }

// DiffuseReflectance evaluates the dipole kernel Rd at distance r from the
// point of incidence (Donner, eq. 5.35). Each channel is clamped to [0,1].
func (p *Profile) DiffuseReflectance(r float64) core.Vec3 {
	r2 := r * r
	dr := p.zr.MultiplyVec(p.zr).AddScalar(r2).Sqrt()
	dv := p.zv.MultiplyVec(p.zv).AddScalar(r2).Sqrt()

	positive := dipoleTerm(p.zr, dr, p.sigmaTr)
	negative := dipoleTerm(p.zv, dv, p.sigmaTr)

	rd := p.alphaPrime.Multiply(1 / (4 * math.Pi)).MultiplyVec(positive.Add(negative))
	return rd.Clamp(0, 1)
}

// dipoleTerm is z (sigma_tr d + 1) e^(-sigma_tr d) / d^3
func dipoleTerm(z, dist, sigmaTr core.Vec3) core.Vec3 {
	sd := sigmaTr.MultiplyVec(dist)
	cube := dist.MultiplyVec(dist).MultiplyVec(dist)
	return z.MultiplyVec(sd.AddScalar(1)).MultiplyVec(sd.Negate().Exp()).DivideVec(cube)
}

// ImportanceSampleSingleScatter maps a uniform u in (0,1] to a depth along the
// refracted ray with exponential falloff
func (p *Profile) ImportanceSampleSingleScatter(u float64) float64 {
	return -math.Log(u) / p.sigmaT.Luminance()
}

// SampleSingleScatterPDF is the density of ImportanceSampleSingleScatter at depth x
func (p *Profile) SampleSingleScatterPDF(x float64) float64 {
	s := p.sigmaT.Luminance()
	return s * math.Exp(-s*x)
}

// ImportanceSampleDiffusion draws a point on the tangent plane disk of radius
// MaxRadius with exponential radial falloff. The returned Z is always 0.
func (p *Profile) ImportanceSampleDiffusion(u1, u2 float64) core.Vec3 {
	s := p.sigmaTr.Luminance()
	theta := 2 * math.Pi * u1
	r := math.Sqrt(math.Log(1-u2*(1-math.Exp(-s*p.rMax*p.rMax))) / -s)
	return core.NewVec3(r*math.Cos(theta), r*math.Sin(theta), 0)
}

// SampleDiffusionPDF is the area density of ImportanceSampleDiffusion at (x, y),
// renormalized for the truncation at MaxRadius
func (p *Profile) SampleDiffusionPDF(x, y float64) float64 {
	s := p.sigmaTr.Luminance()
	pdf := s / math.Pi * math.Exp(-s*(x*x+y*y))
	return pdf / (1 - math.Exp(-s*p.rMax*p.rMax))
}

// FresnelReflectance is Schlick's approximation for a dielectric boundary.
// Negative cosines count as grazing.
func (p *Profile) FresnelReflectance(cosi, eta float64) float64 {
	cosi = math.Max(cosi, 0)
	r0 := (eta - 1) * (eta - 1) / ((eta + 1) * (eta + 1))
	return r0 + math.Pow(1-cosi, 5)*(1-r0)
}

// TrueRefractedDistance corrects an observed distance si inside the medium to
// the length of the refracted path (Donner, eq. 5.37)
func (p *Profile) TrueRefractedDistance(si, cosIncident, cosExitant float64) float64 {
	return si * cosIncident / math.Sqrt(1-(1/(p.eta*p.eta))*(1-cosExitant))
}

// Phase is the Henyey-Greenstein phase function. It reduces to 1/(4 pi) when g is 0.
func (p *Profile) Phase(cosTheta float64) float64 {
	g := p.g
	return (1 / (4 * math.Pi)) * (1 - g*g) / math.Pow(1+2*g*cosTheta+g*g, 1.5)
}
