package renderer

import (
	"math"

	"github.com/df07/go-subsurface-raytracer/pkg/bssrdf"
	"github.com/df07/go-subsurface-raytracer/pkg/core"
	"github.com/df07/go-subsurface-raytracer/pkg/lights"
	"github.com/df07/go-subsurface-raytracer/pkg/material"
)

// cosineEpsilon guards divisions by grazing incident cosines
const cosineEpsilon = 1e-6

// subsurfaceRadiance returns the dipole multiple scattering term plus the single
// scattering term. Both assume light enters from air into the medium.
func (in *Integrator) subsurfaceRadiance(direction core.Vec3, hit *material.HitData, sampler core.Sampler) core.Vec3 {
	if in.scene.LightSampler == nil || in.scene.LightSampler.Count() == 0 {
		return core.Vec3{}
	}
	return in.subsurfaceDiffuse(direction, hit, sampler).
		Add(in.subsurfaceSingleScatter(direction, hit, sampler))
}

// diffuseOnly returns a white Lambertian material used to light sample points
func diffuseOnly() material.Material {
	return material.Material{Diffuse: core.Splat(1)}
}

// subsurfaceDiffuse integrates the dipole diffuse reflectance over a disk of
// points around the hit, each lit by one uniformly chosen light
func (in *Integrator) subsurfaceDiffuse(direction core.Vec3, hit *material.HitData, sampler core.Sampler) core.Vec3 {
	profile := hit.Material.Subsurface
	tangent, bitangent := hit.Normal.NormalSpace()
	oneOverEta := 1 / profile.Eta()
	ftExitant := 1 - profile.FresnelReflectance(math.Abs(direction.Negate().Dot(hit.Normal)), profile.Eta())

	var sum core.Vec3
	for i := 0; i < in.config.SubsurfaceSamples; i++ {
		u := sampler.Get2D()
		disk := profile.ImportanceSampleDiffusion(u.X, u.Y)

		// The sample is assumed to lie on the tangent plane
		sample := material.HitData{
			Position: hit.Position.Add(tangent.Multiply(disk.X)).Add(bitangent.Multiply(disk.Y)),
			Normal:   hit.Normal,
			Material: diffuseOnly(),
		}

		light, lightPdf, _ := in.scene.LightSampler.SampleLight(sampler.Get1D())
		lightDir := light.Direction(sample.Position)
		radiance := in.lightRadiance(lightDir, light, &sample)

		ftIncident := 1 - profile.FresnelReflectance(math.Abs(lightDir.Dot(sample.Normal)), oneOverEta)
		rd := profile.DiffuseReflectance(sample.Position.Subtract(hit.Position).Length())

		pdf := lightPdf * profile.SampleDiffusionPDF(disk.X, disk.Y)
		if pdf <= 0 {
			continue
		}
		f := ftExitant * ftIncident
		sum = sum.Add(radiance.MultiplyVec(rd).Multiply(f / (math.Pi * pdf)))
	}
	return sum.Divide(float64(in.config.SubsurfaceSamples))
}

// subsurfaceSingleScatter integrates single scattering events along the
// refracted view ray. Each sample finds where light from a chosen source
// entered the same medium.
func (in *Integrator) subsurfaceSingleScatter(direction core.Vec3, hit *material.HitData, sampler core.Sampler) core.Vec3 {
	profile := hit.Material.Subsurface
	oneOverEta := 1 / profile.Eta()

	refracted, ok := direction.Negate().Refract(hit.Normal, oneOverEta)
	if !ok {
		return core.Vec3{}
	}
	to := refracted.Negate().Normalize()

	ftExitant := 1 - profile.FresnelReflectance(math.Abs(direction.Negate().Dot(hit.Normal)), profile.Eta())
	cosExitant := math.Abs(direction.Dot(hit.Normal))
	sigmaT := profile.SigmaT()

	var sum core.Vec3
	for i := 0; i < in.config.SubsurfaceSamples; i++ {
		// Get1D is in [0,1) and the depth mapping needs (0,1]
		depth := profile.ImportanceSampleSingleScatter(1 - sampler.Get1D())
		samplePos := hit.Position.Add(to.Multiply(depth))

		light, lightPdf, _ := in.scene.LightSampler.SampleLight(sampler.Get1D())
		radiance, exit, ok := in.exitRadiance(samplePos, light, profile)
		if !ok {
			continue
		}
		lightDir := light.Direction(samplePos)

		si := samplePos.Subtract(exit.Position).Length()
		cosIncident := math.Abs(lightDir.Dot(exit.Normal))
		if cosIncident < cosineEpsilon {
			continue
		}
		siPrime := profile.TrueRefractedDistance(si, cosIncident, cosExitant)
		ftIncident := 1 - profile.FresnelReflectance(cosIncident, oneOverEta)

		phase := profile.Phase(lightDir.Dot(direction))

		// Combined extinction coefficient
		g := math.Abs(to.Dot(exit.Normal)) / cosIncident
		sigmaTC := sigmaT.Add(sigmaT.Multiply(g))

		f := ftExitant * ftIncident
		scatter := profile.SigmaS().Multiply(f * phase).DivideVec(sigmaTC)
		attenuation := sigmaT.Multiply(-siPrime).Exp().MultiplyVec(sigmaT.Multiply(-depth).Exp())

		pdf := lightPdf * profile.SampleSingleScatterPDF(depth)
		if pdf <= 0 {
			continue
		}
		sum = sum.Add(scatter.MultiplyVec(attenuation).MultiplyVec(radiance).Divide(pdf))
	}
	return sum.Divide(float64(in.config.SubsurfaceSamples))
}

// exitRadiance finds where the ray from samplePos toward light leaves the
// medium and returns the diffuse light arriving there. ok is false when the ray
// escapes or first reaches a surface with a different profile.
func (in *Integrator) exitRadiance(samplePos core.Vec3, light lights.Light, profile *bssrdf.Profile) (core.Vec3, material.HitData, bool) {
	lightDir := light.Direction(samplePos)
	exit, _, ok := in.scene.ClosestIntersection(core.NewRay(samplePos, lightDir))
	if !ok || exit.Material.Subsurface != profile {
		return core.Vec3{}, exit, false
	}

	exit.Material = diffuseOnly()
	return in.lightRadiance(lightDir, light, &exit), exit, true
}
